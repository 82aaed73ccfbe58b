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

// State is the Requirer's view of the negotiation on one relation.
type State int

const (
	StateUninitialized State = iota
	StateDeclared
	StateAwaitingProvider
	StateConvergedNoCredentials
	StateConvergedWithCredentials
)

func (s State) String() string {
	switch s {
	case StateDeclared:
		return "Declared"
	case StateAwaitingProvider:
		return "AwaitingProvider"
	case StateConvergedNoCredentials:
		return "Converged(NoCredentials)"
	case StateConvergedWithCredentials:
		return "Converged(WithCredentials)"
	}
	return "Uninitialized"
}

var (
	ErrNoClientConfig   = errors.New("oauth: no client config set")
	ErrNoSecretStore    = errors.New("oauth: secret store is required for this operation")
	ErrSecretFieldUnset = errors.New("oauth: secret has no client secret field")
)

// Requirer declares the client configuration of an application and follows the Provider's
// answers.
type Requirer struct {
	channel relation.Channel
	leader  relation.LeadershipOracle
	secrets secret.Store
	handler RequirerHandler
	log     *logger.Logger

	mu           sync.Mutex
	clientConfig *ClientConfig
	states       map[string]State
}

func NewRequirer(channel relation.Channel, leader relation.LeadershipOracle, opts ...RequirerOption) *Requirer {
	r := &Requirer{
		channel: channel,
		leader:  leader,
		handler: nopHandler{},
		states:  map[string]State{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = defaultLogger("oauth_requirer")
	}
	return r
}

// UpdateClientConfig replaces the desired configuration. It does not write anything; the
// new configuration is declared on the next RelationEstablished or Declare call.
func (r *Requirer) UpdateClientConfig(cfg ClientConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clientConfig = &cfg
}

// ClientConfig returns the desired configuration, nil if none was set.
func (r *Requirer) ClientConfig() *ClientConfig {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.clientConfig == nil {
		return nil
	}
	cfg := *r.clientConfig
	return &cfg
}

func (r *Requirer) State(relationID string) State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.states[relationID]
}

// Established reports whether RelationEstablished ran for the relation.
func (r *Requirer) Established(relationID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.states[relationID]
	return ok
}

// RelationEstablished declares the desired configuration on a new relation. An invalid
// configuration is logged and nothing is written.
func (r *Requirer) RelationEstablished(ctx context.Context, relationID string) error {
	r.mu.Lock()
	if _, ok := r.states[relationID]; !ok {
		r.states[relationID] = StateUninitialized
	}
	r.mu.Unlock()

	err := r.Declare(ctx, relationID)
	if _, ok := IsConfigError(err); ok {
		r.log.Info().Err(err).Str("relation", relationID).Msg("Skipping declaration of invalid client config")
		return nil
	}
	if errors.Is(err, ErrNoClientConfig) {
		r.log.Debug().Str("relation", relationID).Msg("No client config set, nothing to declare")
		return nil
	}
	return err
}

// Declare validates the desired configuration and writes it to the relation. It is a no-op
// on non-leader replicas.
func (r *Requirer) Declare(ctx context.Context, relationID string) error {
	if !r.leader.IsLeader() {
		return nil
	}

	cfg := r.ClientConfig()
	if cfg == nil {
		return ErrNoClientConfig
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := encodeClientConfig(*cfg)
	if err != nil {
		return err
	}
	if err := r.channel.UpdateLocalData(ctx, relationID, data); err != nil {
		return fmt.Errorf("failed to write client config to relation %s: %w", relationID, err)
	}

	r.declared(relationID)
	r.log.Info().Str("relation", relationID).Str("redirectURI", cfg.RedirectURI).Msg("Client config declared")
	return nil
}

// DeclareAll declares the desired configuration on every relation.
func (r *Requirer) DeclareAll(ctx context.Context) error {
	ids, err := r.channel.Relations(ctx)
	if err != nil {
		return fmt.Errorf("failed to list relations: %w", err)
	}

	var errs []error
	for _, id := range ids {
		if err := r.Declare(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RelationChanged interprets the Provider partition of a relation. Malformed data is
// returned as a *DataValidationError and nothing is emitted.
func (r *Requirer) RelationChanged(ctx context.Context, relationID string) error {
	if !r.leader.IsLeader() {
		return nil
	}
	log := r.log.ChildLogger("relation", relationID)

	raw, err := r.channel.RemoteData(ctx, relationID)
	if err != nil {
		return fmt.Errorf("failed to read provider data from relation %s: %w", relationID, err)
	}
	if len(raw) == 0 {
		r.awaitProvider(relationID)
		log.Debug().Msg("Provider has not published any data yet")
		return nil
	}

	data, err := DecodeProviderData(raw)
	if err != nil {
		r.awaitProvider(relationID)
		log.Warn().Err(err).Msg("Provider data does not match schema")
		return err
	}

	if !data.Complete() {
		r.setState(relationID, StateConvergedNoCredentials)
		log.Info().Msg("Provider config changed")
		r.handler.HandleRequirerEvent(ctx, ProviderConfigChanged{RelationID: relationID})
		return nil
	}

	r.setState(relationID, StateConvergedWithCredentials)
	log.Info().Str("clientId", data.ClientID).Msg("Client credentials changed")
	r.handler.HandleRequirerEvent(ctx, ClientCredentialsChanged{
		RelationID:     relationID,
		ClientID:       data.ClientID,
		ClientSecretID: data.ClientSecretID,
	})
	return nil
}

// RelationRemoved forgets the relation.
func (r *Requirer) RelationRemoved(relationID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, relationID)
}

// ProviderInfo returns the Provider metadata of the first relation without credentials, or
// nil when no relation exists.
func (r *Requirer) ProviderInfo(ctx context.Context) (*ProviderInfo, error) {
	ids, err := r.channel.Relations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list relations: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	raw, err := r.channel.RemoteData(ctx, ids[0])
	if errors.Is(err, relation.ErrRelationNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read provider data from relation %s: %w", ids[0], err)
	}

	data, err := DecodeProviderData(raw)
	if err != nil {
		return nil, err
	}
	info := data.ProviderInfo
	return &info, nil
}

// GetClientSecret resolves a client secret reference.
func (r *Requirer) GetClientSecret(ctx context.Context, reference string) (*SecretHandle, error) {
	if r.secrets == nil {
		return nil, ErrNoSecretStore
	}
	content, err := r.secrets.Resolve(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve client secret %s: %w", reference, err)
	}
	return &SecretHandle{reference: reference, content: content}, nil
}

func (r *Requirer) setState(relationID string, state State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[relationID] = state
}

// declared moves a relation without a declaration to StateDeclared. A relation the Provider
// already answered keeps its state until the next answer arrives.
func (r *Requirer) declared(relationID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.states[relationID] == StateUninitialized {
		r.states[relationID] = StateDeclared
	}
}

// awaitProvider moves a relation that was declared but has no usable Provider data yet to
// StateAwaitingProvider. Converged relations keep their state.
func (r *Requirer) awaitProvider(relationID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.states[relationID] {
	case StateUninitialized, StateDeclared:
		r.states[relationID] = StateAwaitingProvider
	}
}

// SecretHandle is a resolved client secret.
type SecretHandle struct {
	reference string
	content   map[string]string
}

func (h *SecretHandle) Reference() string { return h.reference }

// Content returns a copy of the secret content.
func (h *SecretHandle) Content() map[string]string {
	content := make(map[string]string, len(h.content))
	for k, v := range h.content {
		content[k] = v
	}
	return content
}

// Value returns the client secret.
func (h *SecretHandle) Value() (string, error) {
	v, ok := h.content[ClientSecretField]
	if !ok {
		return "", ErrSecretFieldUnset
	}
	return v, nil
}

func (h *SecretHandle) String() string { return h.reference }
