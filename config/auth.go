package config

// OAuth2ProviderConfig contains the credentials and endpoints for one
// identity provider. A provider is enabled when its client ID is set.
//
// Issuer selects OIDC discovery; AuthorizeURL and TokenURL select fixed
// endpoints. GitHub uses its own adapter and needs neither.
type OAuth2ProviderConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	Scope        string `env:"SCOPE"`
	Issuer       string `env:"ISSUER"`
	AuthorizeURL string `env:"AUTHORIZE_URL"`
	TokenURL     string `env:"TOKEN_URL"`
}

// Enabled reports whether the provider slot is configured.
func (p OAuth2ProviderConfig) Enabled() bool { return p.ClientID != "" }

// NamedProvider pairs a provider slot with its canonical lowercase name.
type NamedProvider struct {
	Name   string
	Config OAuth2ProviderConfig
}

// AuthConfig groups all authentication-related configuration. The provider
// set is closed: each well-known provider has its own env block, plus one
// free-form custom slot for self-hosted issuers such as Dex.
type AuthConfig struct {
	Github   OAuth2ProviderConfig `envPrefix:"OAUTH2_GITHUB_"`
	Gitlab   OAuth2ProviderConfig `envPrefix:"OAUTH2_GITLAB_"`
	Google   OAuth2ProviderConfig `envPrefix:"OAUTH2_GOOGLE_"`
	Apple    OAuth2ProviderConfig `envPrefix:"OAUTH2_APPLE_"`
	Okta     OAuth2ProviderConfig `envPrefix:"OAUTH2_OKTA_"`
	Facebook OAuth2ProviderConfig `envPrefix:"OAUTH2_FACEBOOK_"`
	Azure    OAuth2ProviderConfig `envPrefix:"OAUTH2_AZURE_"`
	Auth0    OAuth2ProviderConfig `envPrefix:"OAUTH2_AUTH0_"`
	Custom   OAuth2ProviderConfig `envPrefix:"OAUTH2_CUSTOM_"`

	// AutoActivateFederatedUsers controls whether a first federated login
	// creates an active local account. When false, just-in-time created
	// accounts start inactive and an administrator must activate them.
	AutoActivateFederatedUsers bool `env:"OAUTH2_CREATE_USER" envDefault:"false"`
}

// wellKnownIssuers holds discovery issuers for providers that publish one
// globally. The others need an explicit ISSUER (tenant or domain scoped).
var wellKnownIssuers = map[string]string{
	"google":   "https://accounts.google.com",
	"apple":    "https://appleid.apple.com",
	"facebook": "https://www.facebook.com",
}

// EnabledProviders returns the configured provider slots in a stable order,
// filling in well-known discovery issuers where the slot leaves them unset.
func (a AuthConfig) EnabledProviders() []NamedProvider {
	slots := []NamedProvider{
		{Name: "github", Config: a.Github},
		{Name: "gitlab", Config: a.Gitlab},
		{Name: "google", Config: a.Google},
		{Name: "apple", Config: a.Apple},
		{Name: "okta", Config: a.Okta},
		{Name: "facebook", Config: a.Facebook},
		{Name: "azure", Config: a.Azure},
		{Name: "auth0", Config: a.Auth0},
		{Name: "custom", Config: a.Custom},
	}

	var enabled []NamedProvider
	for _, slot := range slots {
		if !slot.Config.Enabled() {
			continue
		}
		if slot.Config.Issuer == "" && slot.Config.AuthorizeURL == "" {
			slot.Config.Issuer = wellKnownIssuers[slot.Name]
		}
		enabled = append(enabled, slot)
	}
	return enabled
}
