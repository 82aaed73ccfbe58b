package controller

import (
	"context"
	"testing"

	"github.com/platform-mesh/golang-commons/logger/testlogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platform-mesh/oauth-relation/pkg/endpoints"
	"github.com/platform-mesh/oauth-relation/pkg/relation"
	"github.com/platform-mesh/oauth-relation/pkg/relation/memory"
)

func TestFuncNegotiatorTracksRelations(t *testing.T) {
	var changed []string
	n := NewFuncNegotiator(func(_ context.Context, relationID string) error {
		changed = append(changed, relationID)
		return nil
	})

	assert.False(t, n.Established("1"))
	require.NoError(t, n.RelationEstablished(t.Context(), "1"))
	assert.True(t, n.Established("1"))

	require.NoError(t, n.RelationChanged(t.Context(), "1"))
	assert.Equal(t, []string{"1"}, changed)

	n.RelationRemoved("1")
	assert.False(t, n.Established("1"))
}

func TestFuncNegotiatorDrivesEndpointsProvider(t *testing.T) {
	hub := memory.NewHub()
	hub.Establish("1")

	var provider *endpoints.Provider
	provider = endpoints.NewProvider(hub.Channel(relation.SideProvider), relation.AlwaysLeader,
		func(ctx context.Context, _ endpoints.Ready) {
			assert.NoError(t, provider.SendEndpoints(ctx, "https://admin.example.com", "https://public.example.com"))
		},
		testlogger.New().Logger,
	)
	n := NewFuncNegotiator(func(ctx context.Context, relationID string) error {
		provider.RelationEvent(ctx, relationID)
		return nil
	})

	require.NoError(t, n.RelationEstablished(t.Context(), "1"))
	require.NoError(t, n.RelationChanged(t.Context(), "1"))

	got, err := endpoints.NewRequirer(hub.Channel(relation.SideRequirer), relation.AlwaysLeader).Endpoints(t.Context())
	require.NoError(t, err)
	assert.Equal(t, &endpoints.Endpoints{
		AdminEndpoint:  "https://admin.example.com",
		PublicEndpoint: "https://public.example.com",
	}, got)
}
