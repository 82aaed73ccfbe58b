package cmd

import (
	"context"
	"fmt"

	platformeshcontext "github.com/platform-mesh/golang-commons/context"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/platform-mesh/oauth-relation/internal/controller"
	"github.com/platform-mesh/oauth-relation/internal/leader"
	"github.com/platform-mesh/oauth-relation/internal/metrics"
	"github.com/platform-mesh/oauth-relation/internal/relationdata"
	"github.com/platform-mesh/oauth-relation/internal/secretstore"
	"github.com/platform-mesh/oauth-relation/pkg/endpoints"
	"github.com/platform-mesh/oauth-relation/pkg/oauth"
	"github.com/platform-mesh/oauth-relation/pkg/relation"
)

var requirerCmd = &cobra.Command{
	Use:   "requirer",
	Short: "Declare an OAuth client on every relation and follow the issued credentials",
	RunE: func(cmd *cobra.Command, args []string) error { // coverage-ignore
		ctx, shutdown := startContext()
		defer shutdown()
		if defaultCfg.Sentry.Dsn != "" {
			defer platformeshcontext.Recover(log)
		}

		clientCfg, err := requirerCfg.ClientConfig()
		if err != nil {
			log.Error().Err(err).Msg("unable to load client config")
			return err
		}
		if err := clientCfg.Validate(); err != nil {
			log.Error().Err(err).Msg("invalid client config")
			return err
		}

		ns := requirerCfg.Relation.Namespace
		mgr, err := newManager(ctx, ns, "oauth-relation-requirer.platform-mesh.io")
		if err != nil {
			return err
		}
		oracle := leader.New(mgr.Elected())

		channel := relationdata.NewConfigMapChannel(mgr.GetClient(), ns, requirerCfg.Relation.Name, relation.SideRequirer)
		var requirer *oauth.Requirer
		requirer = oauth.NewRequirer(channel, oracle,
			oauth.WithClientConfig(clientCfg),
			oauth.WithSecretStore(secretstore.NewKubernetesStore(mgr.GetClient(), ns)),
			oauth.WithRequirerLogger(log),
			oauth.WithRequirerHandler(oauth.RequirerHandlerFunc(func(ctx context.Context, event oauth.RequirerEvent) {
				handleRequirerEvent(ctx, requirer, event)
			})),
		)

		if err := controller.NewRelationReconciler(log, channel, requirer).SetupWithManager(mgr, defaultCfg); err != nil {
			log.Error().Err(err).Str("controller", "oauth-requirer").Msg("unable to create controller")
			return err
		}
		if err := mgr.Add(controller.NewElectedRunnable(log, mgr.Elected(), requirer.DeclareAll)); err != nil {
			log.Error().Err(err).Msg("unable to add declare runnable")
			return err
		}

		if !requirerCfg.Relation.EndpointsDisabled {
			endpointsChannel := relationdata.NewConfigMapChannel(mgr.GetClient(), ns, requirerCfg.Relation.EndpointsName, relation.SideRequirer)
			endpointsRequirer := endpoints.NewRequirer(endpointsChannel, oracle)
			negotiator := controller.NewFuncNegotiator(func(ctx context.Context, relationID string) error {
				return logEndpoints(ctx, endpointsRequirer)
			})
			if err := controller.NewRelationReconciler(log, endpointsChannel, negotiator).SetupWithManager(mgr, defaultCfg); err != nil {
				log.Error().Err(err).Str("controller", "endpoints-requirer").Msg("unable to create controller")
				return err
			}
		}

		return startManager(mgr)
	},
}

func handleRequirerEvent(ctx context.Context, requirer *oauth.Requirer, event oauth.RequirerEvent) {
	metrics.EventsTotal.WithLabelValues(string(event.Kind())).Inc()
	evLog := log.ChildLogger("relation", event.Relation())

	credentials, ok := event.(oauth.ClientCredentialsChanged)
	if !ok {
		evLog.Info().Str("event", string(event.Kind())).Msg("Provider config changed")
		return
	}

	cfg, err := clientConfigFor(ctx, requirer, credentials)
	if err != nil {
		evLog.Error().Err(err).Msg("unable to build oauth2 config")
		return
	}
	evLog.Info().
		Str("clientId", cfg.ClientID).
		Str("tokenUrl", cfg.Endpoint.TokenURL).
		Str("secretRef", credentials.ClientSecretID).
		Msg("Client credentials changed")
}

func clientConfigFor(ctx context.Context, requirer *oauth.Requirer, credentials oauth.ClientCredentialsChanged) (*oauth2.Config, error) {
	info, err := requirer.ProviderInfo(ctx)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, fmt.Errorf("no provider info on relation %s", credentials.RelationID)
	}
	handle, err := requirer.GetClientSecret(ctx, credentials.ClientSecretID)
	if err != nil {
		return nil, err
	}
	clientCfg := requirer.ClientConfig()
	if clientCfg == nil {
		return nil, oauth.ErrNoClientConfig
	}

	return oauth.OAuth2Config(*info, *clientCfg, credentials.ClientID, handle)
}

func logEndpoints(ctx context.Context, requirer *endpoints.Requirer) error {
	eps, err := requirer.Endpoints(ctx)
	if _, ok := endpoints.IsDataMissingError(err); ok {
		log.Debug().Err(err).Msg("Endpoints not published yet")
		return nil
	}
	if err != nil {
		return err
	}
	if eps == nil {
		return nil
	}
	log.Info().Str("admin", eps.AdminEndpoint).Str("public", eps.PublicEndpoint).Msg("Provider endpoints changed")
	return nil
}
