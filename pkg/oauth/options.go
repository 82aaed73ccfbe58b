package oauth

import (
	"github.com/platform-mesh/golang-commons/logger"

	"github.com/platform-mesh/oauth-relation/pkg/secret"
)

type RequirerOption func(*Requirer)

// WithClientConfig sets the desired client configuration declared on new relations.
func WithClientConfig(cfg ClientConfig) RequirerOption {
	return func(r *Requirer) {
		r.clientConfig = &cfg
	}
}

// WithSecretStore sets the store used to resolve client secret references.
func WithSecretStore(store secret.Store) RequirerOption {
	return func(r *Requirer) {
		r.secrets = store
	}
}

func WithRequirerHandler(h RequirerHandler) RequirerOption {
	return func(r *Requirer) {
		r.handler = h
	}
}

func WithRequirerLogger(log *logger.Logger) RequirerOption {
	return func(r *Requirer) {
		r.log = log.ComponentLogger("oauth_requirer")
	}
}

type ProviderOption func(*Provider)

func WithProviderHandler(h ProviderHandler) ProviderOption {
	return func(p *Provider) {
		p.handler = h
	}
}

func WithProviderLogger(log *logger.Logger) ProviderOption {
	return func(p *Provider) {
		p.log = log.ComponentLogger("oauth_provider")
	}
}

// WithDecisionFunc replaces DecideByClientID.
func WithDecisionFunc(decide DecisionFunc) ProviderOption {
	return func(p *Provider) {
		p.decide = decide
	}
}

// WithProviderInfo sets the metadata published on relations as they are established.
func WithProviderInfo(info ProviderInfo) ProviderOption {
	return func(p *Provider) {
		p.info = &info
	}
}

func defaultLogger(component string) *logger.Logger {
	log, err := logger.New(logger.DefaultConfig())
	if err != nil { // coverage-ignore
		panic(err)
	}
	return log.ComponentLogger(component)
}
