package config

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":21114"`

	// BaseURL is the externally visible base URL of the application
	// (e.g., "https://console.example.com"). When set, OAuth2 callback URLs
	// are built from it; when empty they are derived from the inbound
	// request's Host header.
	BaseURL string `env:"APP_BASE_URL" envDefault:""`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	if h.Addr == "" {
		h.Addr = ":21114"
	}
}
