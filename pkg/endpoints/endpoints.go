// Package endpoints shares the public and admin endpoints of an identity provider over a
// relation. The Provider writes both endpoints to every relation, the Requirer reads them
// back from the first relation.
package endpoints

import (
	"context"
	"errors"
	"fmt"

	"github.com/platform-mesh/golang-commons/logger"

	"github.com/platform-mesh/oauth-relation/pkg/relation"
)

const (
	DefaultRelationName = "endpoint-info"

	KeyAdminEndpoint  = "admin_endpoint"
	KeyPublicEndpoint = "public_endpoint"
)

var ErrRelationMissing = errors.New("endpoints: missing endpoint-info relation")

type DataMissingError struct {
	Key string
}

func (e *DataMissingError) Error() string {
	return fmt.Sprintf("endpoints: missing %s in relation data", e.Key)
}

func IsDataMissingError(err error) (*DataMissingError, bool) {
	var dme *DataMissingError
	if errors.As(err, &dme) {
		return dme, true
	}
	return nil, false
}

type Endpoints struct {
	AdminEndpoint  string `json:"admin_endpoint"`
	PublicEndpoint string `json:"public_endpoint"`
}

// Ready is raised whenever a relation was established or changed.
type Ready struct {
	RelationID string
}

type ReadyHandler func(ctx context.Context, event Ready)

type Provider struct {
	channel relation.Channel
	leader  relation.LeadershipOracle
	onReady ReadyHandler
	log     *logger.Logger
}

func NewProvider(channel relation.Channel, leader relation.LeadershipOracle, onReady ReadyHandler, log *logger.Logger) *Provider {
	if onReady == nil {
		onReady = func(context.Context, Ready) {}
	}
	return &Provider{
		channel: channel,
		leader:  leader,
		onReady: onReady,
		log:     log.ComponentLogger("endpoints_provider"),
	}
}

// RelationEvent raises Ready for a relation notification.
func (p *Provider) RelationEvent(ctx context.Context, relationID string) {
	p.log.Debug().Str("relation", relationID).Msg("Endpoint relation ready")
	p.onReady(ctx, Ready{RelationID: relationID})
}

// SendEndpoints writes both endpoints to every relation.
func (p *Provider) SendEndpoints(ctx context.Context, adminEndpoint, publicEndpoint string) error {
	if !p.leader.IsLeader() {
		return nil
	}

	ids, err := p.channel.Relations(ctx)
	if err != nil {
		return fmt.Errorf("failed to list relations: %w", err)
	}

	data := relation.Databag{
		KeyAdminEndpoint:  adminEndpoint,
		KeyPublicEndpoint: publicEndpoint,
	}
	var errs []error
	for _, id := range ids {
		if err := p.channel.UpdateLocalData(ctx, id, data); err != nil {
			errs = append(errs, fmt.Errorf("failed to write endpoints to relation %s: %w", id, err))
		}
	}
	p.log.Info().Str("admin", adminEndpoint).Str("public", publicEndpoint).Int("relations", len(ids)).Msg("Endpoints published")
	return errors.Join(errs...)
}

type Requirer struct {
	channel relation.Channel
	leader  relation.LeadershipOracle
}

func NewRequirer(channel relation.Channel, leader relation.LeadershipOracle) *Requirer {
	return &Requirer{channel: channel, leader: leader}
}

// Endpoints returns the endpoints published on the first relation. Non-leaders get nil.
func (r *Requirer) Endpoints(ctx context.Context) (*Endpoints, error) {
	if !r.leader.IsLeader() {
		return nil, nil
	}

	ids, err := r.channel.Relations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list relations: %w", err)
	}
	if len(ids) == 0 {
		return nil, ErrRelationMissing
	}

	data, err := r.channel.RemoteData(ctx, ids[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read endpoints from relation %s: %w", ids[0], err)
	}

	admin, ok := data[KeyAdminEndpoint]
	if !ok {
		return nil, &DataMissingError{Key: KeyAdminEndpoint}
	}
	return &Endpoints{AdminEndpoint: admin, PublicEndpoint: data[KeyPublicEndpoint]}, nil
}
