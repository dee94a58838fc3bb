package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/deskops/console-api/config"
	"github.com/deskops/console-api/internal/adapters/idp"
	"github.com/deskops/console-api/internal/adapters/password"
	"github.com/deskops/console-api/internal/data"
	"github.com/deskops/console-api/internal/devseed"
	"github.com/deskops/console-api/internal/service"
)

// CoreDeps groups dependencies for BuildCore.
type CoreDeps struct {
	Config *config.AppConfig
	DB     *sql.DB
	Logger *slog.Logger
}

// BuildCore wires the hasher, the user repository, and the configured
// identity providers into the application core.
func BuildCore(ctx context.Context, deps *CoreDeps) (*service.Core, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	hasher := password.NewBcryptHasher()

	if deps.Config.IsDev {
		if err := devseed.EnsureDefaultAdmin(ctx, devseed.Deps{
			DB:     deps.DB,
			Hasher: hasher,
			Logger: logger,
		}); err != nil {
			return nil, err
		}
	}

	store := data.NewUserRepo(data.UserRepoOptions{
		DB:                         deps.DB,
		Hasher:                     hasher,
		AutoActivateFederatedUsers: deps.Config.Auth.AutoActivateFederatedUsers,
	})

	providers, err := idp.BuildProviders(ctx, providerSettings(deps.Config.Auth), nil)
	if err != nil {
		return nil, fmt.Errorf("build identity providers: %w", err)
	}
	if len(providers) > 0 {
		logger.InfoContext(ctx, "identity federation enabled", "providers", len(providers))
	}

	return service.NewCore(service.CoreOptions{
		Store:               store,
		Hasher:              hasher,
		Providers:           providers,
		MaintenanceInterval: deps.Config.Maintenance.Interval,
		Logger:              logger,
	}), nil
}

// providerSettings maps the fixed configuration slots onto provider settings
// for the idp adapters.
func providerSettings(cfg config.AuthConfig) []idp.ProviderSettings {
	enabled := cfg.EnabledProviders()
	settings := make([]idp.ProviderSettings, 0, len(enabled))
	for _, p := range enabled {
		settings = append(settings, idp.ProviderSettings{
			Name:         p.Name,
			ClientID:     p.Config.ClientID,
			ClientSecret: p.Config.ClientSecret,
			Scope:        p.Config.Scope,
			Issuer:       p.Config.Issuer,
			AuthorizeURL: p.Config.AuthorizeURL,
			TokenURL:     p.Config.TokenURL,
		})
	}
	return settings
}
