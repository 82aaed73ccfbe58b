package oauth

import (
	"regexp"
	"slices"
)

var redirectURIPattern = regexp.MustCompile(`(?i)^https://` +
	`(?:(?:[A-Z0-9](?:[A-Z0-9-]{0,61}[A-Z0-9])?\.)+(?:[A-Z]{2,6}\.?|[A-Z0-9-]{2,}\.?)|` + // domain
	`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})` + // or ipv4
	`(?::\d+)?` +
	`(?:/?|[/?]\S+)$`)

// ClientConfig is the OAuth client registration a Requirer asks for.
type ClientConfig struct {
	RedirectURI             string   `json:"redirect_uri"`
	Scope                   string   `json:"scope"`
	GrantTypes              []string `json:"grant_types"`
	Audience                []string `json:"audience"`
	TokenEndpointAuthMethod string   `json:"token_endpoint_auth_method"`
}

type ClientConfigOption func(*ClientConfig)

func WithAudience(audience ...string) ClientConfigOption {
	return func(c *ClientConfig) {
		c.Audience = audience
	}
}

func WithTokenEndpointAuthMethod(method string) ClientConfigOption {
	return func(c *ClientConfig) {
		c.TokenEndpointAuthMethod = method
	}
}

// NewClientConfig returns a config with an empty audience and client_secret_basic
// authentication unless overridden.
func NewClientConfig(redirectURI, scope string, grantTypes []string, opts ...ClientConfigOption) ClientConfig {
	cfg := ClientConfig{
		RedirectURI:             redirectURI,
		Scope:                   scope,
		GrantTypes:              grantTypes,
		Audience:                []string{},
		TokenEndpointAuthMethod: TokenEndpointAuthMethodClientSecretBasic,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Validate checks the redirect uri, every grant type and the auth method, in that order,
// and returns the first violation as a *ConfigError.
func (c ClientConfig) Validate() error {
	if !redirectURIPattern.MatchString(c.RedirectURI) {
		return newConfigError(ErrInvalidRedirectURI, c.RedirectURI)
	}

	for _, grantType := range c.GrantTypes {
		if !slices.Contains(AllowedGrantTypes, grantType) {
			return newConfigError(ErrInvalidGrantType, grantType)
		}
	}

	if !slices.Contains(AllowedTokenEndpointAuthMethods, c.TokenEndpointAuthMethod) {
		return newConfigError(ErrInvalidAuthMethod, c.TokenEndpointAuthMethod)
	}
	return nil
}

// data returns the config as relation fields with nil lists replaced by empty ones.
func (c ClientConfig) data() map[string]any {
	return map[string]any{
		KeyRedirectURI:             c.RedirectURI,
		KeyScope:                   c.Scope,
		KeyGrantTypes:              nonNil(c.GrantTypes),
		KeyAudience:                nonNil(c.Audience),
		KeyTokenEndpointAuthMethod: c.TokenEndpointAuthMethod,
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
