package httpx

import (
	"context"

	domainauth "github.com/deskops/console-api/internal/domain/auth"
)

// identityKey is an unexported context key type to avoid collisions across
// packages. Centralized in this file so all handlers/middleware use the same
// key.
type identityKey struct{}

// SetIdentityInContext returns a child context carrying the resolved session
// identity.
func SetIdentityInContext(ctx context.Context, identity domainauth.SessionIdentity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// GetIdentityFromContext returns the session identity from context and a
// boolean indicating presence. Handlers behind RequireAuth can rely on
// presence.
func GetIdentityFromContext(ctx context.Context) (domainauth.SessionIdentity, bool) {
	identity, ok := ctx.Value(identityKey{}).(domainauth.SessionIdentity)
	return identity, ok
}
