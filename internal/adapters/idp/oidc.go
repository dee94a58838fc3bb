package idp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/deskops/console-api/internal/ports"
)

// OidcConfig holds configuration for a discovery-based OIDC provider.
type OidcConfig struct {
	Name         string
	ClientID     string
	ClientSecret string
	Scope        string
	// Issuer is the issuer URL; a full discovery document URL is accepted
	// and trimmed to the issuer.
	Issuer     string
	HTTPClient *http.Client // optional
}

// OidcProvider implements ports.Provider over any OIDC-conformant issuer
// (Google, Azure, Okta, Facebook, Apple, Auth0, Dex, ...). Endpoints come
// from a single discovery fetch at construction time, and the user identity
// comes from the verified id_token claims.
type OidcProvider struct {
	name       string
	config     *oauth2.Config
	verifier   *gooidc.IDTokenVerifier
	httpClient *http.Client
}

var _ ports.Provider = (*OidcProvider)(nil)

// NewOidcProvider creates an OIDC provider, fetching the discovery document
// once.
func NewOidcProvider(ctx context.Context, cfg OidcConfig) (*OidcProvider, error) {
	if cfg.Name == "" {
		return nil, errors.New("oidc: provider name is required")
	}
	if cfg.ClientID == "" {
		return nil, errors.New("oidc: client ID is required")
	}
	if cfg.ClientSecret == "" {
		return nil, errors.New("oidc: client secret is required")
	}
	if cfg.Issuer == "" {
		return nil, errors.New("oidc: issuer is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	issuer := strings.TrimSuffix(cfg.Issuer, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	issuer = strings.TrimSuffix(issuer, ".well-known/openid-configuration")

	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	op, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc %s: discovery: %w", cfg.Name, err)
	}

	scopes := splitScope(cfg.Scope)
	if len(scopes) == 0 {
		scopes = []string{gooidc.ScopeOpenID, "profile", "email"}
	}

	return &OidcProvider{
		name: cfg.Name,
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Scopes:       scopes,
			Endpoint:     op.Endpoint(),
		},
		verifier:   op.Verifier(&gooidc.Config{ClientID: cfg.ClientID}),
		httpClient: httpClient,
	}, nil
}

// Name implements ports.Provider.
func (p *OidcProvider) Name() string { return p.name }

// BuildAuthorizationURL implements ports.Provider.
func (p *OidcProvider) BuildAuthorizationURL(callbackURL, state string) string {
	cfg := *p.config
	cfg.RedirectURL = callbackURL
	return cfg.AuthCodeURL(state)
}

// idTokenClaims is the subset of standard OIDC claims the adapter maps into
// an identity.
type idTokenClaims struct {
	Sub               string `json:"sub"`
	Name              string `json:"name"`
	PreferredUsername string `json:"preferred_username"`
	Email             string `json:"email"`
}

// ExchangeCode implements ports.Provider. The issued credential is the raw
// id_token rather than the access token; the access token is only good
// against this one provider's own APIs, while the id_token carries the
// verified identity.
func (p *OidcProvider) ExchangeCode(ctx context.Context, code, callbackURL string) (ports.ProviderIdentity, error) {
	cfg := *p.config
	cfg.RedirectURL = callbackURL

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return ports.ProviderIdentity{}, fmt.Errorf("oidc %s: exchange code: %w", p.name, err)
	}

	rawID, ok := token.Extra("id_token").(string)
	if !ok || rawID == "" {
		return ports.ProviderIdentity{}, fmt.Errorf("oidc %s: missing id_token in token response", p.name)
	}
	idToken, err := p.verifier.Verify(ctx, rawID)
	if err != nil {
		return ports.ProviderIdentity{}, fmt.Errorf("oidc %s: verify id_token: %w", p.name, err)
	}

	var claims idTokenClaims
	if err := idToken.Claims(&claims); err != nil {
		return ports.ProviderIdentity{}, fmt.Errorf("oidc %s: parse id_token claims: %w", p.name, err)
	}

	return ports.ProviderIdentity{
		Credential:  rawID,
		DisplayName: firstNonEmpty(claims.PreferredUsername, claims.Name, claims.Sub),
		Email:       claims.Email,
	}, nil
}
