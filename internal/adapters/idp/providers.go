package idp

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/deskops/console-api/internal/ports"
)

// ProviderSettings describes one configured identity provider. Kind selects
// the adapter: "github", "oidc" (discovery-based), or "oauth2" (fixed
// endpoints). An empty Kind is inferred: the github name picks the GitHub
// adapter, a non-empty Issuer picks discovery, anything else is fixed
// endpoints.
type ProviderSettings struct {
	Kind         string
	Name         string
	ClientID     string
	ClientSecret string
	Scope        string
	Issuer       string
	AuthorizeURL string
	TokenURL     string
}

// BuildProviders constructs the closed provider set from configuration.
// Provider names are lowercased; a duplicate name is an error.
func BuildProviders(ctx context.Context, settings []ProviderSettings, httpClient *http.Client) (map[string]ports.Provider, error) {
	providers := make(map[string]ports.Provider, len(settings))
	for _, s := range settings {
		name := strings.ToLower(s.Name)
		if name == "" {
			return nil, fmt.Errorf("identity provider with empty name")
		}
		if _, exists := providers[name]; exists {
			return nil, fmt.Errorf("duplicate identity provider %q", name)
		}

		provider, err := buildProvider(ctx, name, s, httpClient)
		if err != nil {
			return nil, err
		}
		providers[name] = provider
	}
	return providers, nil
}

func buildProvider(ctx context.Context, name string, s ProviderSettings, httpClient *http.Client) (ports.Provider, error) {
	kind := strings.ToLower(s.Kind)
	if kind == "" {
		switch {
		case name == "github":
			kind = "github"
		case s.Issuer != "":
			kind = "oidc"
		default:
			kind = "oauth2"
		}
	}

	switch kind {
	case "github":
		return NewGitHubProvider(GitHubConfig{
			ClientID:     s.ClientID,
			ClientSecret: s.ClientSecret,
			Scope:        s.Scope,
			AuthorizeURL: s.AuthorizeURL,
			TokenURL:     s.TokenURL,
			HTTPClient:   httpClient,
		})
	case "oidc":
		return NewOidcProvider(ctx, OidcConfig{
			Name:         name,
			ClientID:     s.ClientID,
			ClientSecret: s.ClientSecret,
			Scope:        s.Scope,
			Issuer:       s.Issuer,
			HTTPClient:   httpClient,
		})
	case "oauth2":
		return NewStaticProvider(StaticConfig{
			Name:         name,
			ClientID:     s.ClientID,
			ClientSecret: s.ClientSecret,
			Scope:        s.Scope,
			AuthorizeURL: s.AuthorizeURL,
			TokenURL:     s.TokenURL,
			HTTPClient:   httpClient,
		})
	default:
		return nil, fmt.Errorf("identity provider %q: unknown kind %q", name, s.Kind)
	}
}

// splitScope splits a space-separated scope string into individual scopes.
func splitScope(scope string) []string {
	return strings.Fields(scope)
}

// firstNonEmpty returns the first non-empty string from vals.
func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
