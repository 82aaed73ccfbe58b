package cmd

import (
	"context"
	"crypto/rand"

	"github.com/google/uuid"
	platformeshcontext "github.com/platform-mesh/golang-commons/context"
	"github.com/spf13/cobra"

	"github.com/platform-mesh/oauth-relation/internal/controller"
	"github.com/platform-mesh/oauth-relation/internal/discovery"
	"github.com/platform-mesh/oauth-relation/internal/leader"
	"github.com/platform-mesh/oauth-relation/internal/metrics"
	"github.com/platform-mesh/oauth-relation/internal/relationdata"
	"github.com/platform-mesh/oauth-relation/internal/secretstore"
	"github.com/platform-mesh/oauth-relation/pkg/endpoints"
	"github.com/platform-mesh/oauth-relation/pkg/oauth"
	"github.com/platform-mesh/oauth-relation/pkg/relation"
)

var providerCmd = &cobra.Command{
	Use:   "provider",
	Short: "Publish provider metadata and issue client credentials to requirers",
	RunE: func(cmd *cobra.Command, args []string) error { // coverage-ignore
		ctx, shutdown := startContext()
		defer shutdown()
		if defaultCfg.Sentry.Dsn != "" {
			defer platformeshcontext.Recover(log)
		}

		info, err := discovery.Resolve(ctx, providerCfg)
		if err != nil {
			log.Error().Err(err).Str("issuer", providerCfg.IssuerURL).Msg("unable to resolve provider info")
			return err
		}

		ns := providerCfg.Relation.Namespace
		mgr, err := newManager(ctx, ns, "oauth-relation-provider.platform-mesh.io")
		if err != nil {
			return err
		}
		oracle := leader.New(mgr.Elected())

		channel := relationdata.NewConfigMapChannel(mgr.GetClient(), ns, providerCfg.Relation.Name, relation.SideProvider)
		var provider *oauth.Provider
		provider = oauth.NewProvider(channel, secretstore.NewKubernetesStore(mgr.GetClient(), ns), oracle,
			oauth.WithProviderInfo(info),
			oauth.WithProviderLogger(log),
			oauth.WithProviderHandler(oauth.ProviderHandlerFunc(func(ctx context.Context, event oauth.ProviderEvent) {
				handleProviderEvent(ctx, provider, event)
			})),
		)

		if err := controller.NewRelationReconciler(log, channel, provider).SetupWithManager(mgr, defaultCfg); err != nil {
			log.Error().Err(err).Str("controller", "oauth-provider").Msg("unable to create controller")
			return err
		}
		publish := func(ctx context.Context) error {
			return provider.SetProviderInfo(ctx, info)
		}
		if err := mgr.Add(controller.NewElectedRunnable(log, mgr.Elected(), publish)); err != nil {
			log.Error().Err(err).Msg("unable to add publish runnable")
			return err
		}

		if !providerCfg.Relation.EndpointsDisabled {
			endpointsChannel := relationdata.NewConfigMapChannel(mgr.GetClient(), ns, providerCfg.Relation.EndpointsName, relation.SideProvider)
			var endpointsProvider *endpoints.Provider
			endpointsProvider = endpoints.NewProvider(endpointsChannel, oracle, func(ctx context.Context, _ endpoints.Ready) {
				if err := endpointsProvider.SendEndpoints(ctx, providerCfg.AdminEndpoint, providerCfg.PublicEndpoint); err != nil {
					log.Error().Err(err).Msg("unable to send endpoints")
				}
			}, log)
			negotiator := controller.NewFuncNegotiator(func(ctx context.Context, relationID string) error {
				endpointsProvider.RelationEvent(ctx, relationID)
				return nil
			})
			if err := controller.NewRelationReconciler(log, endpointsChannel, negotiator).SetupWithManager(mgr, defaultCfg); err != nil {
				log.Error().Err(err).Str("controller", "endpoints-provider").Msg("unable to create controller")
				return err
			}
		}

		return startManager(mgr)
	},
}

// handleProviderEvent registers clients locally. A new client gets a fresh id and
// secret; a changed client keeps its credentials.
func handleProviderEvent(ctx context.Context, provider *oauth.Provider, event oauth.ProviderEvent) {
	metrics.EventsTotal.WithLabelValues(string(event.Kind())).Inc()
	evLog := log.ChildLogger("relation", event.Relation())

	switch e := event.(type) {
	case oauth.ClientCreated:
		clientID := uuid.NewString()
		if err := provider.SetClientCredentials(ctx, e.RelationID, clientID, rand.Text()); err != nil {
			evLog.Error().Err(err).Msg("unable to set client credentials")
			return
		}
		evLog.Info().Str("clientId", clientID).Str("redirectUri", e.ClientConfig.RedirectURI).Msg("Client created")
	case oauth.ClientConfigChanged:
		evLog.Info().Str("clientId", e.ClientID).Str("redirectUri", e.ClientConfig.RedirectURI).Msg("Client config changed")
	}
}
