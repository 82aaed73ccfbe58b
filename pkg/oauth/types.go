package oauth

const (
	GrantTypeAuthorizationCode = "authorization_code"
	GrantTypeRefreshToken      = "refresh_token"
	GrantTypeClientCredentials = "client_credentials"
)

const (
	TokenEndpointAuthMethodClientSecretBasic = "client_secret_basic"
	TokenEndpointAuthMethodClientSecretPost  = "client_secret_post"
)

// DefaultRelationName is the name of the relation the negotiators use unless configured otherwise.
const DefaultRelationName = "oauth"

// Relation data keys.
const (
	KeyRedirectURI             = "redirect_uri"
	KeyScope                   = "scope"
	KeyGrantTypes              = "grant_types"
	KeyAudience                = "audience"
	KeyTokenEndpointAuthMethod = "token_endpoint_auth_method"

	KeyIssuerURL             = "issuer_url"
	KeyAuthorizationEndpoint = "authorization_endpoint"
	KeyTokenEndpoint         = "token_endpoint"
	KeyIntrospectionEndpoint = "introspection_endpoint"
	KeyUserinfoEndpoint      = "userinfo_endpoint"
	KeyJWKSEndpoint          = "jwks_endpoint"
	KeyGroups                = "groups"
	KeyCAChain               = "ca_chain"
	KeyClientID              = "client_id"
	KeyClientSecretID        = "client_secret_id"
)

const (
	// ClientSecretLabel is the label of secrets created for client credentials.
	ClientSecretLabel = "client_secret"
	// ClientSecretField is the content key holding the client secret.
	ClientSecretField = "secret"
)

var (
	AllowedGrantTypes = []string{
		GrantTypeAuthorizationCode,
		GrantTypeRefreshToken,
		GrantTypeClientCredentials,
	}
	AllowedTokenEndpointAuthMethods = []string{
		TokenEndpointAuthMethodClientSecretBasic,
		TokenEndpointAuthMethodClientSecretPost,
	}
)

// ProviderInfo is the identity provider metadata a Provider publishes on every relation.
type ProviderInfo struct {
	IssuerURL             string   `json:"issuer_url"`
	AuthorizationEndpoint string   `json:"authorization_endpoint"`
	TokenEndpoint         string   `json:"token_endpoint"`
	IntrospectionEndpoint string   `json:"introspection_endpoint"`
	UserinfoEndpoint      string   `json:"userinfo_endpoint"`
	JWKSEndpoint          string   `json:"jwks_endpoint"`
	Scope                 string   `json:"scope"`
	Groups                *string  `json:"groups,omitempty"`
	CAChain               []string `json:"ca_chain,omitempty"`
}

// ClientCredentials identify the client a Provider issued for a relation.
type ClientCredentials struct {
	ClientID       string `json:"client_id"`
	ClientSecretID string `json:"client_secret_id"`
}

// Complete reports whether both the client id and the secret reference are set.
func (c ClientCredentials) Complete() bool {
	return c.ClientID != "" && c.ClientSecretID != ""
}

// ProviderData is the decoded content of a Provider partition.
type ProviderData struct {
	ProviderInfo
	ClientCredentials
}
