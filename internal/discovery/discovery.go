// Package discovery builds the provider metadata published on oauth relations, either from
// the OpenID Connect discovery document of the issuer or from explicit configuration.
package discovery

import (
	"context"
	"encoding/pem"
	"fmt"
	"os"
	"strings"

	"github.com/coreos/go-oidc"

	"github.com/platform-mesh/oauth-relation/internal/config"
	"github.com/platform-mesh/oauth-relation/pkg/oauth"
)

type discoveryDocument struct {
	Issuer                string `json:"issuer"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	IntrospectionEndpoint string `json:"introspection_endpoint"`
	UserinfoEndpoint      string `json:"userinfo_endpoint"`
	JWKSURI               string `json:"jwks_uri"`
}

// ProviderInfoFromIssuer reads the discovery document of issuerURL.
func ProviderInfoFromIssuer(ctx context.Context, issuerURL, scope string) (oauth.ProviderInfo, error) {
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return oauth.ProviderInfo{}, fmt.Errorf("failed to initialize OIDC provider: %w", err)
	}

	var doc discoveryDocument
	if err := provider.Claims(&doc); err != nil {
		return oauth.ProviderInfo{}, fmt.Errorf("failed to decode discovery document: %w", err)
	}

	return oauth.ProviderInfo{
		IssuerURL:             doc.Issuer,
		AuthorizationEndpoint: provider.Endpoint().AuthURL,
		TokenEndpoint:         provider.Endpoint().TokenURL,
		IntrospectionEndpoint: doc.IntrospectionEndpoint,
		UserinfoEndpoint:      doc.UserinfoEndpoint,
		JWKSEndpoint:          doc.JWKSURI,
		Scope:                 scope,
	}, nil
}

// Resolve returns the provider metadata for cfg. Explicitly configured endpoints override
// discovered ones.
func Resolve(ctx context.Context, cfg config.ProviderConfig) (oauth.ProviderInfo, error) {
	info := cfg.ProviderInfo()

	if cfg.DiscoveryEnabled {
		discovered, err := ProviderInfoFromIssuer(ctx, cfg.IssuerURL, cfg.Scope)
		if err != nil {
			return oauth.ProviderInfo{}, err
		}
		discovered.Groups = info.Groups
		info = override(discovered, info)
	}

	if cfg.CAChainFile != "" {
		chain, err := LoadCAChain(cfg.CAChainFile)
		if err != nil {
			return oauth.ProviderInfo{}, err
		}
		info.CAChain = chain
	}
	return info, nil
}

func override(base, explicit oauth.ProviderInfo) oauth.ProviderInfo {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&base.AuthorizationEndpoint, explicit.AuthorizationEndpoint)
	set(&base.TokenEndpoint, explicit.TokenEndpoint)
	set(&base.IntrospectionEndpoint, explicit.IntrospectionEndpoint)
	set(&base.UserinfoEndpoint, explicit.UserinfoEndpoint)
	set(&base.JWKSEndpoint, explicit.JWKSEndpoint)
	return base
}

// LoadCAChain reads a PEM bundle and returns each certificate as its own PEM block.
func LoadCAChain(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ca chain file: %w", err)
	}

	var chain []string
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		chain = append(chain, strings.TrimSpace(string(pem.EncodeToMemory(block))))
	}
	if len(chain) == 0 {
		return nil, fmt.Errorf("no certificate found in %s", path)
	}
	return chain, nil
}
