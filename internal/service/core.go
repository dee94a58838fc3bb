package service

import (
	"context"
	"log/slog"
	"time"

	domainauth "github.com/deskops/console-api/internal/domain/auth"
	apperrors "github.com/deskops/console-api/internal/errors"
	"github.com/deskops/console-api/internal/ports"
)

// Core is the session, token, and identity-federation core exposed to the
// transport layer. It owns all mutable process state (the session registry,
// the address-book cache, the OIDC flow map, and the maintenance clock) and
// is constructed exactly once at startup.
type Core struct {
	registry    *SessionRegistry
	cache       *AddressBookCache
	flows       *OidcFlowCoordinator
	maintenance *MaintenanceScheduler

	store  ports.Store
	hasher ports.PasswordHasher
	logger *slog.Logger
}

// CoreOptions groups dependencies for NewCore.
type CoreOptions struct {
	Store     ports.Store
	Hasher    ports.PasswordHasher
	Providers map[string]ports.Provider

	// MaintenanceInterval is the minimum gap between flush passes; zero
	// selects DefaultMaintenanceInterval.
	MaintenanceInterval time.Duration

	Logger *slog.Logger
}

// NewCore wires the four core components together: the registry flips the
// cache's eviction flags through the EvictionMarker hook, and the flow
// coordinator issues sessions through the registry.
func NewCore(opts CoreOptions) *Core {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cache := NewAddressBookCache(opts.Store, logger)
	registry := NewSessionRegistry(SessionRegistryOptions{
		Store:     opts.Store,
		Hasher:    opts.Hasher,
		Evictions: cache,
		Logger:    logger,
	})
	flows := NewOidcFlowCoordinator(OidcFlowCoordinatorOptions{
		Providers: opts.Providers,
		Store:     opts.Store,
		Registry:  registry,
		Logger:    logger,
	})

	return &Core{
		registry:    registry,
		cache:       cache,
		flows:       flows,
		maintenance: NewMaintenanceScheduler(cache, opts.MaintenanceInterval, logger),
		store:       opts.Store,
		hasher:      opts.Hasher,
		logger:      logger,
	}
}

// Registry exposes the session registry for authorization checks.
func (c *Core) Registry() *SessionRegistry { return c.registry }

// Authenticate performs a local password login. Failures are uniform; see
// SessionRegistry.Authenticate.
func (c *Core) Authenticate(
	ctx context.Context,
	username, password string,
	adminOnly bool,
) (domainauth.UserView, domainauth.Token, error) {
	return c.registry.Authenticate(ctx, username, password, adminOnly)
}

// Resolve maps a bearer token in its text form to the caller's session
// identity. Malformed tokens and unknown tokens are both unauthorized.
func (c *Core) Resolve(tokenText string) (domainauth.SessionIdentity, error) {
	token, err := domainauth.ParseToken(tokenText)
	if err != nil {
		return domainauth.SessionIdentity{}, apperrors.Wrap(err, apperrors.ErrCodeUnauthorized, "invalid token")
	}

	info, ok := c.registry.Resolve(token)
	if !ok {
		return domainauth.SessionIdentity{}, apperrors.Unauthorized("unknown token")
	}
	return domainauth.SessionIdentity{
		SessionID: info.SessionID,
		UserID:    info.UserID,
		Token:     token,
	}, nil
}

// Logout revokes the caller's session. Revoking an already-revoked session
// is unauthorized but harmless.
func (c *Core) Logout(identity domainauth.SessionIdentity) error {
	if !c.registry.Revoke(identity) {
		return apperrors.Unauthorized("session not found")
	}
	return nil
}

// ReadAddressBook returns the user's address book from the write-back cache.
func (c *Core) ReadAddressBook(ctx context.Context, id domainauth.UserID) domainauth.AddressBook {
	return c.cache.Read(ctx, id)
}

// WriteAddressBook stores a new address book value in the cache; it is
// persisted by a later maintenance flush.
func (c *Core) WriteAddressBook(id domainauth.UserID, ab domainauth.AddressBook) {
	c.cache.Write(id, ab)
}

// BeginOidc starts a federated login flow. The callback URL is derived from
// the inbound request by the transport layer.
func (c *Core) BeginOidc(clientID, clientUUID, providerName, callbackURL string) (BeginResult, error) {
	return c.flows.Begin(clientID, clientUUID, providerName, callbackURL)
}

// OidcCallback handles the provider redirect leg of a flow.
func (c *Core) OidcCallback(ctx context.Context, flowID, code string) bool {
	return c.flows.ReceiveCallback(ctx, flowID, code)
}

// PollOidc reports the outcome of a flow: ok=false while pending (or for
// unknown/dead/consumed flows), the issued token and user exactly once on
// success.
func (c *Core) PollOidc(ctx context.Context, flowID string) (LoginResult, bool) {
	return c.flows.Finalize(ctx, flowID)
}

// ProviderNames lists the configured federation providers for client login
// menus.
func (c *Core) ProviderNames() []string {
	return c.flows.ProviderNames()
}

// UserSummary returns the cached view of a user with live sessions.
func (c *Core) UserSummary(id domainauth.UserID) (domainauth.UserView, bool) {
	return c.registry.UserSummary(id)
}

// ChangePassword verifies the caller's current password and replaces it.
// The old-password check shares the uniform unauthorized outcome with login.
func (c *Core) ChangePassword(ctx context.Context, id domainauth.UserID, oldPassword, newPassword string) error {
	if newPassword == "" {
		return apperrors.Validation("new password is required")
	}

	hash, err := c.store.GetPasswordHash(ctx, id)
	if err != nil || hash == "" {
		return apperrors.Unauthorized("invalid credentials")
	}
	if !c.hasher.Verify(oldPassword, hash) {
		return apperrors.Unauthorized("invalid credentials")
	}

	newHash, err := c.hasher.Hash(newPassword)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "hash password")
	}
	if err := c.store.UpdatePassword(ctx, id, newHash); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "update password")
	}
	return nil
}

// Tick drives opportunistic maintenance; the transport layer calls it once
// per request.
func (c *Core) Tick(ctx context.Context, now time.Time) {
	c.maintenance.MaybeRun(ctx, now)
}
