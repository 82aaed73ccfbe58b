package cmd

import (
	"context"
	"crypto/tls"

	// Import all Kubernetes client auth plugins (e.g. Azure, GCP, OIDC, etc.)
	// to ensure that exec-entrypoint and run can make use of them.
	_ "k8s.io/client-go/plugin/pkg/client/auth"
	"k8s.io/client-go/rest"

	platformeshcontext "github.com/platform-mesh/golang-commons/context"
	"github.com/platform-mesh/golang-commons/sentry"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/cache"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"
)

var (
	scheme = runtime.NewScheme()
)

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
}

// startContext starts the service context and sentry. The returned function must be
// deferred by the caller.
func startContext() (context.Context, func()) { // coverage-ignore
	ctx, _, shutdown := platformeshcontext.StartContext(log, defaultCfg, defaultCfg.ShutdownTimeout)

	if defaultCfg.Sentry.Dsn != "" {
		err := sentry.Start(ctx,
			defaultCfg.Sentry.Dsn, defaultCfg.Environment, defaultCfg.Region,
			defaultCfg.Image.Name, defaultCfg.Image.Tag,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("Sentry init failed")
		}
	}
	return ctx, shutdown
}

// newManager creates a manager whose cache only covers the relation namespace.
func newManager(ctx context.Context, namespace, leaderElectionID string) (ctrl.Manager, error) { // coverage-ignore
	cfg := ctrl.GetConfigOrDie()

	mgrOpts := ctrl.Options{
		Scheme: scheme,
		Cache: cache.Options{
			DefaultNamespaces: map[string]cache.Config{namespace: {}},
		},
		Metrics: metricsserver.Options{
			BindAddress: defaultCfg.Metrics.BindAddress,
			TLSOpts: []func(*tls.Config){
				func(c *tls.Config) {
					log.Info().Msg("disabling http/2")
					c.NextProtos = []string{"http/1.1"}
				},
			},
		},
		HealthProbeBindAddress:  defaultCfg.HealthProbeBindAddress,
		LeaderElection:          defaultCfg.LeaderElection.Enabled,
		LeaderElectionID:        leaderElectionID,
		LeaderElectionNamespace: namespace,
		BaseContext:             func() context.Context { return ctx },
	}
	if defaultCfg.LeaderElection.Enabled {
		inClusterCfg, err := rest.InClusterConfig()
		if err != nil {
			log.Error().Err(err).Msg("unable to create in-cluster config")
			return nil, err
		}
		mgrOpts.LeaderElectionConfig = inClusterCfg
	}

	mgr, err := ctrl.NewManager(cfg, mgrOpts)
	if err != nil {
		log.Error().Err(err).Msg("unable to start manager")
		return nil, err
	}

	if err := mgr.AddHealthzCheck("healthz", healthz.Ping); err != nil {
		log.Error().Err(err).Msg("unable to set up health check")
		return nil, err
	}
	if err := mgr.AddReadyzCheck("readyz", healthz.Ping); err != nil {
		log.Error().Err(err).Msg("unable to set up ready check")
		return nil, err
	}
	return mgr, nil
}

func startManager(mgr ctrl.Manager) error { // coverage-ignore
	setupLog.Info("starting manager")
	if err := mgr.Start(ctrl.SetupSignalHandler()); err != nil {
		log.Error().Err(err).Msg("problem running manager")
		return err
	}
	return nil
}
