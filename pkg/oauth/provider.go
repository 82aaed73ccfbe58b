package oauth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/platform-mesh/golang-commons/logger"

	"github.com/platform-mesh/oauth-relation/pkg/relation"
	"github.com/platform-mesh/oauth-relation/pkg/secret"
)

// Provider answers client declarations of Requirers. It publishes identity provider
// metadata and, once the application registered a client, the client credentials.
type Provider struct {
	channel relation.Channel
	secrets secret.Store
	leader  relation.LeadershipOracle
	handler ProviderHandler
	decide  DecisionFunc
	log     *logger.Logger

	mu          sync.Mutex
	info        *ProviderInfo
	established map[string]struct{}
}

func NewProvider(channel relation.Channel, secrets secret.Store, leader relation.LeadershipOracle, opts ...ProviderOption) *Provider {
	p := &Provider{
		channel:     channel,
		secrets:     secrets,
		leader:      leader,
		handler:     nopHandler{},
		decide:      DecideByClientID,
		established: map[string]struct{}{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = defaultLogger("oauth_provider")
	}
	return p
}

// Established reports whether RelationEstablished ran for the relation.
func (p *Provider) Established(relationID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.established[relationID]
	return ok
}

// ProviderInfo returns the metadata last set, nil if none.
func (p *Provider) ProviderInfo() *ProviderInfo {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.info == nil {
		return nil
	}
	info := *p.info
	return &info
}

// RelationEstablished remembers the relation and publishes the provider metadata on it if
// it is known already.
func (p *Provider) RelationEstablished(ctx context.Context, relationID string) error {
	p.mu.Lock()
	p.established[relationID] = struct{}{}
	p.mu.Unlock()

	info := p.ProviderInfo()
	if info == nil || !p.leader.IsLeader() {
		return nil
	}

	data, err := Encode(info, ProviderSchema)
	if err != nil {
		return err
	}
	return p.publish(ctx, relationID, data)
}

// RelationChanged reads the Requirer's client declaration and raises ClientCreated or
// ClientConfigChanged depending on whether a client was issued for the relation before.
func (p *Provider) RelationChanged(ctx context.Context, relationID string) error {
	if !p.leader.IsLeader() {
		return nil
	}
	log := p.log.ChildLogger("relation", relationID)

	raw, err := p.channel.RemoteData(ctx, relationID)
	if err != nil {
		return fmt.Errorf("failed to read requirer data from relation %s: %w", relationID, err)
	}
	if len(raw) == 0 {
		log.Debug().Msg("Requirer has not declared a client yet")
		return nil
	}

	cfg, err := DecodeClientConfig(raw)
	if err != nil {
		log.Warn().Err(err).Msg("Requirer data does not match schema")
		return err
	}

	priorClientID, err := p.priorClientID(ctx, relationID)
	if err != nil {
		return err
	}

	decision := p.decide(priorClientID)
	log.Info().Str("decision", decision.String()).Str("redirectURI", cfg.RedirectURI).Msg("Client config received")

	switch decision {
	case DecisionUpdate:
		p.handler.HandleProviderEvent(ctx, ClientConfigChanged{
			ClientConfig: cfg,
			RelationID:   relationID,
			ClientID:     priorClientID,
		})
	default:
		p.handler.HandleProviderEvent(ctx, ClientCreated{
			ClientConfig: cfg,
			RelationID:   relationID,
		})
	}
	return nil
}

// SetProviderInfo validates info and publishes it on every relation. The metadata is
// remembered for relations established later, also on non-leader replicas.
func (p *Provider) SetProviderInfo(ctx context.Context, info ProviderInfo) error {
	data, err := Encode(info, ProviderSchema)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.info = &info
	p.mu.Unlock()

	if !p.leader.IsLeader() {
		return nil
	}

	ids, err := p.channel.Relations(ctx)
	if err != nil {
		return fmt.Errorf("failed to list relations: %w", err)
	}

	var errs []error
	for _, id := range ids {
		if err := p.publish(ctx, id, data); err != nil {
			errs = append(errs, err)
		}
	}
	p.log.Info().Str("issuer", info.IssuerURL).Int("relations", len(ids)).Msg("Provider info published")
	return errors.Join(errs...)
}

// SetClientCredentials stores clientSecret in the secret store, grants it to the relation
// and publishes the client id together with the secret reference. A previously published
// reference is removed from the store once the new one is written.
func (p *Provider) SetClientCredentials(ctx context.Context, relationID, clientID, clientSecret string) error {
	if !p.leader.IsLeader() {
		return nil
	}
	log := p.log.ChildLogger("relation", relationID)

	own, err := p.channel.LocalData(ctx, relationID)
	if err != nil {
		return fmt.Errorf("failed to read provider data from relation %s: %w", relationID, err)
	}
	previous := own[KeyClientSecretID]

	reference, err := p.secrets.Create(ctx, ClientSecretLabel, map[string]string{ClientSecretField: clientSecret})
	if err != nil {
		return fmt.Errorf("failed to store client secret: %w", err)
	}
	if err := p.secrets.Grant(ctx, reference, relationID); err != nil {
		p.discard(ctx, log, reference)
		return fmt.Errorf("failed to grant client secret to relation %s: %w", relationID, err)
	}

	err = p.channel.UpdateLocalData(ctx, relationID, relation.Databag{
		KeyClientID:       clientID,
		KeyClientSecretID: reference,
	})
	if err != nil {
		p.discard(ctx, log, reference)
		return fmt.Errorf("failed to write client credentials to relation %s: %w", relationID, err)
	}
	log.Info().Str("clientId", clientID).Str("secret", reference).Msg("Client credentials published")

	if previous != "" && previous != reference {
		p.discard(ctx, log, previous)
	}
	return nil
}

// discard removes a secret that is no longer published. Failures are logged only.
func (p *Provider) discard(ctx context.Context, log *logger.Logger, reference string) {
	if err := p.secrets.Remove(ctx, reference); err != nil && !errors.Is(err, secret.ErrNotFound) {
		log.Warn().Err(err).Str("secret", reference).Msg("Failed to remove client secret")
	}
}

// RelationRemoved forgets the relation.
func (p *Provider) RelationRemoved(relationID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.established, relationID)
}

// priorClientID returns the client id previously written to the relation. The own partition
// is read without schema checks since it may hold credentials but no metadata yet.
func (p *Provider) priorClientID(ctx context.Context, relationID string) (string, error) {
	own, err := p.channel.LocalData(ctx, relationID)
	if err != nil {
		return "", fmt.Errorf("failed to read provider data from relation %s: %w", relationID, err)
	}
	return own[KeyClientID], nil
}

func (p *Provider) publish(ctx context.Context, relationID string, data relation.Databag) error {
	if err := p.channel.UpdateLocalData(ctx, relationID, data); err != nil {
		return fmt.Errorf("failed to write provider info to relation %s: %w", relationID, err)
	}
	return nil
}
