package config

import (
	"fmt"
	"os"

	"k8s.io/utils/ptr"
	"sigs.k8s.io/yaml"

	"github.com/platform-mesh/oauth-relation/pkg/oauth"
)

// RelationConfig locates the relation partitions in the cluster.
type RelationConfig struct {
	Namespace         string `mapstructure:"relation-namespace" default:"default"`
	Name              string `mapstructure:"relation-name" default:"oauth"`
	EndpointsName     string `mapstructure:"endpoints-relation-name" default:"endpoint-info"`
	EndpointsDisabled bool   `mapstructure:"endpoints-disabled" default:"false"`
}

// RequirerConfig struct to hold the requirer app config
type RequirerConfig struct {
	Relation                RelationConfig `mapstructure:",squash"`
	RedirectURI             string         `mapstructure:"redirect-uri"`
	Scope                   string         `mapstructure:"scope" default:"openid"`
	GrantTypes              []string       `mapstructure:"grant-types" default:"authorization_code"`
	Audience                []string       `mapstructure:"audience"`
	TokenEndpointAuthMethod string         `mapstructure:"token-endpoint-auth-method" default:"client_secret_basic"`
	ClientConfigFile        string         `mapstructure:"client-config-file"`
}

// ProviderConfig struct to hold the provider app config
type ProviderConfig struct {
	Relation         RelationConfig `mapstructure:",squash"`
	IssuerURL        string         `mapstructure:"issuer-url"`
	DiscoveryEnabled bool           `mapstructure:"discovery-enabled" default:"true"`
	Endpoints        struct {
		Authorization string `mapstructure:"authorization-endpoint"`
		Token         string `mapstructure:"token-endpoint"`
		Introspection string `mapstructure:"introspection-endpoint"`
		Userinfo      string `mapstructure:"userinfo-endpoint"`
		JWKS          string `mapstructure:"jwks-endpoint"`
	} `mapstructure:",squash"`
	Scope       string `mapstructure:"provider-scope" default:"openid profile email phone"`
	Groups      string `mapstructure:"groups"`
	CAChainFile string `mapstructure:"ca-chain-file"`

	AdminEndpoint  string `mapstructure:"admin-endpoint"`
	PublicEndpoint string `mapstructure:"public-endpoint"`
}

// RelateConfig struct to hold the config of the relate command
type RelateConfig struct {
	Relation RelationConfig `mapstructure:",squash"`
	Remove   bool           `mapstructure:"remove" default:"false"`
}

// ClientConfig returns the client configuration to declare. A client config file takes
// precedence over flags.
func (c RequirerConfig) ClientConfig() (oauth.ClientConfig, error) {
	if c.ClientConfigFile != "" {
		return LoadClientConfig(c.ClientConfigFile)
	}

	return oauth.NewClientConfig(c.RedirectURI, c.Scope, c.GrantTypes,
		oauth.WithAudience(c.Audience...),
		oauth.WithTokenEndpointAuthMethod(c.TokenEndpointAuthMethod),
	), nil
}

// LoadClientConfig reads a client configuration from a YAML or JSON file. Omitted fields
// get the defaults of oauth.NewClientConfig.
func LoadClientConfig(path string) (oauth.ClientConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return oauth.ClientConfig{}, fmt.Errorf("failed to read client config file: %w", err)
	}

	cfg := oauth.NewClientConfig("", "", []string{})
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return oauth.ClientConfig{}, fmt.Errorf("failed to unmarshal client config: %w", err)
	}
	return cfg, nil
}

// ProviderInfo builds the provider metadata from the explicitly configured endpoints.
func (c ProviderConfig) ProviderInfo() oauth.ProviderInfo {
	info := oauth.ProviderInfo{
		IssuerURL:             c.IssuerURL,
		AuthorizationEndpoint: c.Endpoints.Authorization,
		TokenEndpoint:         c.Endpoints.Token,
		IntrospectionEndpoint: c.Endpoints.Introspection,
		UserinfoEndpoint:      c.Endpoints.Userinfo,
		JWKSEndpoint:          c.Endpoints.JWKS,
		Scope:                 c.Scope,
	}
	if c.Groups != "" {
		info.Groups = ptr.To(c.Groups)
	}
	return info
}
