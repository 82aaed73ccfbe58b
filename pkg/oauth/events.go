package oauth

import "context"

type EventKind string

const (
	KindProviderConfigChanged    EventKind = "ProviderConfigChanged"
	KindClientCredentialsChanged EventKind = "ClientCredentialsChanged"
	KindClientCreated            EventKind = "ClientCreated"
	KindClientConfigChanged      EventKind = "ClientConfigChanged"
)

// RequirerEvent is raised by a Requirer to its owning application. It is one of
// ProviderConfigChanged or ClientCredentialsChanged.
type RequirerEvent interface {
	Kind() EventKind
	Relation() string
	requirerEvent()
}

// ProviderConfigChanged reports a Provider partition without client credentials. It is
// raised both when the Provider first publishes its metadata and when credentials were
// removed after being set.
type ProviderConfigChanged struct {
	RelationID string
}

func (ProviderConfigChanged) Kind() EventKind    { return KindProviderConfigChanged }
func (e ProviderConfigChanged) Relation() string { return e.RelationID }
func (ProviderConfigChanged) requirerEvent()     {}

// ClientCredentialsChanged reports the client id and secret reference issued by the Provider.
type ClientCredentialsChanged struct {
	RelationID     string
	ClientID       string
	ClientSecretID string
}

func (ClientCredentialsChanged) Kind() EventKind    { return KindClientCredentialsChanged }
func (e ClientCredentialsChanged) Relation() string { return e.RelationID }
func (ClientCredentialsChanged) requirerEvent()     {}

// ProviderEvent is raised by a Provider to its owning application. It is one of
// ClientCreated or ClientConfigChanged.
type ProviderEvent interface {
	Kind() EventKind
	Relation() string
	Config() ClientConfig
	providerEvent()
}

// ClientCreated asks the identity provider to register a new client for a relation.
type ClientCreated struct {
	ClientConfig
	RelationID string
}

func (ClientCreated) Kind() EventKind        { return KindClientCreated }
func (e ClientCreated) Relation() string     { return e.RelationID }
func (e ClientCreated) Config() ClientConfig { return e.ClientConfig }
func (ClientCreated) providerEvent()         {}

// ClientConfigChanged asks the identity provider to update the client it already issued.
type ClientConfigChanged struct {
	ClientConfig
	RelationID string
	ClientID   string
}

func (ClientConfigChanged) Kind() EventKind        { return KindClientConfigChanged }
func (e ClientConfigChanged) Relation() string     { return e.RelationID }
func (e ClientConfigChanged) Config() ClientConfig { return e.ClientConfig }
func (ClientConfigChanged) providerEvent()         {}

type RequirerHandler interface {
	HandleRequirerEvent(ctx context.Context, event RequirerEvent)
}

type RequirerHandlerFunc func(ctx context.Context, event RequirerEvent)

func (f RequirerHandlerFunc) HandleRequirerEvent(ctx context.Context, event RequirerEvent) {
	f(ctx, event)
}

type ProviderHandler interface {
	HandleProviderEvent(ctx context.Context, event ProviderEvent)
}

type ProviderHandlerFunc func(ctx context.Context, event ProviderEvent)

func (f ProviderHandlerFunc) HandleProviderEvent(ctx context.Context, event ProviderEvent) {
	f(ctx, event)
}

type nopHandler struct{}

func (nopHandler) HandleRequirerEvent(context.Context, RequirerEvent) {}
func (nopHandler) HandleProviderEvent(context.Context, ProviderEvent) {}
