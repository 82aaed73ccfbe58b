package oauth

import (
	"context"
	"sync"
	"testing"

	"github.com/platform-mesh/golang-commons/logger/testlogger"

	"github.com/platform-mesh/oauth-relation/pkg/relation"
	"github.com/platform-mesh/oauth-relation/pkg/relation/memory"
	"github.com/platform-mesh/oauth-relation/pkg/secret"
)

const testRelationID = "oauth:1"

func validClientConfig() ClientConfig {
	return NewClientConfig(
		"https://app.example.com/callback",
		"openid email",
		[]string{GrantTypeAuthorizationCode, GrantTypeRefreshToken},
	)
}

type recorder[E any] struct {
	mu     sync.Mutex
	events []E
}

func (r *recorder[E]) record(_ context.Context, event E) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder[E]) all() []E {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]E(nil), r.events...)
}

type harness struct {
	hub            *memory.Hub
	secrets        *secret.MemoryStore
	requirer       *Requirer
	provider       *Provider
	requirerEvents *recorder[RequirerEvent]
	providerEvents *recorder[ProviderEvent]
}

func newHarness(t *testing.T, requirerLeader, providerLeader relation.LeadershipOracle, opts ...RequirerOption) *harness {
	t.Helper()
	log := testlogger.New().Logger

	h := &harness{
		hub:            memory.NewHub(),
		secrets:        secret.NewMemoryStore(),
		requirerEvents: &recorder[RequirerEvent]{},
		providerEvents: &recorder[ProviderEvent]{},
	}
	opts = append([]RequirerOption{
		WithSecretStore(h.secrets),
		WithRequirerHandler(RequirerHandlerFunc(h.requirerEvents.record)),
		WithRequirerLogger(log),
	}, opts...)
	h.requirer = NewRequirer(h.hub.Channel(relation.SideRequirer), requirerLeader, opts...)
	h.provider = NewProvider(h.hub.Channel(relation.SideProvider), h.secrets, providerLeader,
		WithProviderHandler(ProviderHandlerFunc(h.providerEvents.record)),
		WithProviderLogger(log),
	)
	return h
}
