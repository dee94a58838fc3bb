package auth

// Package auth contains domain-level types for authentication, sessions,
// and address books. It is pure and free of framework/adapter concerns.

// UserID is the opaque, stable identifier of a user (string form of the
// GUID owned by the durable store).
type UserID string

// SessionID is a process-lifetime monotonic session identifier. It is never
// persisted; a restart starts the counter over.
type SessionID uint64

// UserRecord is the durable identity record owned by the store.
type UserRecord struct {
	ID     UserID
	Name   string
	Email  string
	Active bool
	Admin  bool
}

// UserView is the transient per-user summary cached by the session registry
// while the user has at least one live session.
type UserView struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Admin bool   `json:"is_admin"`
}

// AccessTokenInfo binds a bearer token to its session and owning user.
// It exists one-to-one with a live session.
type AccessTokenInfo struct {
	SessionID SessionID
	UserID    UserID
}

// SessionIdentity is the resolved caller identity attached to an
// authenticated request: the token that was presented plus the session and
// user it maps to.
type SessionIdentity struct {
	SessionID SessionID
	UserID    UserID
	Token     Token
}

// AddressBook is a user's legacy address book: an opaque serialized blob the
// core caches and flushes but never interprets.
type AddressBook struct {
	AB string `json:"ab"`
}

// Empty reports whether the address book carries no data.
func (a AddressBook) Empty() bool { return a.AB == "" }

// FederatedIdentity describes a user resolved through an external OAuth2/OIDC
// provider, used for just-in-time user creation.
type FederatedIdentity struct {
	DisplayName string
	Email       string
	UUID        string
}
