package oauth

import (
	"errors"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

var ErrMissingClientID = errors.New("oauth: client id is required")

// OAuth2Config builds the authorization code flow configuration of a converged relation.
func OAuth2Config(info ProviderInfo, cfg ClientConfig, clientID string, secret *SecretHandle) (*oauth2.Config, error) {
	clientSecret, err := clientSecretOf(clientID, secret)
	if err != nil {
		return nil, err
	}

	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  cfg.RedirectURI,
		Scopes:       strings.Fields(cfg.Scope),
		Endpoint: oauth2.Endpoint{
			AuthURL:   info.AuthorizationEndpoint,
			TokenURL:  info.TokenEndpoint,
			AuthStyle: authStyle(cfg.TokenEndpointAuthMethod),
		},
	}, nil
}

// ClientCredentialsConfig builds the client credentials flow configuration of a converged
// relation. The audience is sent as an endpoint parameter.
func ClientCredentialsConfig(info ProviderInfo, cfg ClientConfig, clientID string, secret *SecretHandle) (*clientcredentials.Config, error) {
	clientSecret, err := clientSecretOf(clientID, secret)
	if err != nil {
		return nil, err
	}

	cCfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     info.TokenEndpoint,
		Scopes:       strings.Fields(cfg.Scope),
		AuthStyle:    authStyle(cfg.TokenEndpointAuthMethod),
	}
	if len(cfg.Audience) > 0 {
		cCfg.EndpointParams = url.Values{KeyAudience: cfg.Audience}
	}
	return cCfg, nil
}

func clientSecretOf(clientID string, secret *SecretHandle) (string, error) {
	if clientID == "" {
		return "", ErrMissingClientID
	}
	if secret == nil {
		return "", ErrSecretFieldUnset
	}
	return secret.Value()
}

func authStyle(method string) oauth2.AuthStyle {
	if method == TokenEndpointAuthMethodClientSecretPost {
		return oauth2.AuthStyleInParams
	}
	return oauth2.AuthStyleInHeader
}
