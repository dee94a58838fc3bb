package idp

// Package idp provides the OAuth2/OIDC identity-provider adapters behind
// ports.Provider. The provider set is closed and built from configuration at
// startup; see BuildProviders.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/deskops/console-api/internal/ports"
)

const defaultGitHubAPIBaseURL = "https://api.github.com"

// GitHubConfig holds configuration for the GitHub provider.
type GitHubConfig struct {
	ClientID     string
	ClientSecret string
	Scope        string
	AuthorizeURL string
	TokenURL     string
	APIBaseURL   string       // overridable for tests
	HTTPClient   *http.Client // optional
}

// GitHubProvider implements ports.Provider against GitHub's OAuth2 endpoints.
// GitHub issues no id_token, so the identity comes from a follow-up call to
// the user API with the exchanged credential.
type GitHubProvider struct {
	config     *oauth2.Config
	apiBaseURL string
	httpClient *http.Client
}

var _ ports.Provider = (*GitHubProvider)(nil)

// NewGitHubProvider creates a GitHub provider.
func NewGitHubProvider(cfg GitHubConfig) (*GitHubProvider, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("github: client ID is required")
	}
	if cfg.ClientSecret == "" {
		return nil, errors.New("github: client secret is required")
	}

	authorizeURL := cfg.AuthorizeURL
	if authorizeURL == "" {
		authorizeURL = "https://github.com/login/oauth/authorize"
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = "https://github.com/login/oauth/access_token"
	}
	apiBaseURL := cfg.APIBaseURL
	if apiBaseURL == "" {
		apiBaseURL = defaultGitHubAPIBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	scopes := splitScope(cfg.Scope)
	if len(scopes) == 0 {
		scopes = []string{"read:user", "user:email"}
	}

	return &GitHubProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Scopes:       scopes,
			Endpoint:     oauth2.Endpoint{AuthURL: authorizeURL, TokenURL: tokenURL},
		},
		apiBaseURL: apiBaseURL,
		httpClient: httpClient,
	}, nil
}

// Name implements ports.Provider.
func (p *GitHubProvider) Name() string { return "github" }

// BuildAuthorizationURL implements ports.Provider. The callback URL varies
// per deployment host, so the redirect is bound per call rather than at
// construction time.
func (p *GitHubProvider) BuildAuthorizationURL(callbackURL, state string) string {
	cfg := *p.config
	cfg.RedirectURL = callbackURL
	return cfg.AuthCodeURL(state, oauth2.SetAuthURLParam("allow_signup", "true"))
}

// githubUser is the subset of the GitHub user payload the adapter needs.
type githubUser struct {
	Login string `json:"login"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ExchangeCode implements ports.Provider.
func (p *GitHubProvider) ExchangeCode(ctx context.Context, code, callbackURL string) (ports.ProviderIdentity, error) {
	cfg := *p.config
	cfg.RedirectURL = callbackURL

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return ports.ProviderIdentity{}, fmt.Errorf("github: exchange code: %w", err)
	}

	user, err := p.fetchUser(ctx, token.AccessToken)
	if err != nil {
		return ports.ProviderIdentity{}, err
	}

	name := user.Login
	if name == "" {
		name = user.Name
	}
	return ports.ProviderIdentity{
		Credential:  token.AccessToken,
		DisplayName: name,
		Email:       user.Email,
	}, nil
}

func (p *GitHubProvider) fetchUser(ctx context.Context, accessToken string) (*githubUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiBaseURL+"/user", nil)
	if err != nil {
		return nil, fmt.Errorf("github: build user request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github: fetch user: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github: fetch user: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("github: read user response: %w", err)
	}

	var user githubUser
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("github: decode user response: %w", err)
	}
	return &user, nil
}
