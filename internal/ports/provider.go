package ports

import "context"

// ProviderIdentity is the outcome of a successful code exchange: the bearer
// credential issued by the vendor plus the identity it vouches for.
type ProviderIdentity struct {
	Credential  string
	DisplayName string
	Email       string
}

// Provider abstracts one OAuth2/OIDC vendor. The configured provider set is
// closed and resolved at startup; handlers look providers up by name.
type Provider interface {
	// Name is the configuration handle clients select the provider by
	// (e.g. "github", "oidc").
	Name() string

	// BuildAuthorizationURL returns the vendor authorization URL addressed
	// to callbackURL, carrying state as the correlation parameter.
	BuildAuthorizationURL(callbackURL, state string) string

	// ExchangeCode trades an authorization code for the vendor credential
	// and resolved identity. This is a blocking network call.
	ExchangeCode(ctx context.Context, code, callbackURL string) (ProviderIdentity, error)
}
