package ports

// Package ports defines interfaces (hexagonal ports) consumed by the session
// and federation core. Implementations live in internal/data and
// internal/adapters; orchestration in internal/service.

import (
	"context"

	domainauth "github.com/deskops/console-api/internal/domain/auth"
)

// AddressBookUpsert is one (user, address book) pair submitted to a batched
// flush write.
type AddressBookUpsert struct {
	UserID      domainauth.UserID
	AddressBook domainauth.AddressBook
}

// Store is the durable lookup/mutation surface the core depends on. All
// methods may block on I/O; callers must never invoke them while holding an
// in-memory map lock.
//
// Lookup misses are reported as (nil, nil) rather than errors so callers can
// collapse "absent" and "store failed" into the same fail-closed outcome
// without inspecting error chains.
type Store interface {
	// FindUserByName returns the user record for a login name, or nil when
	// no such user exists.
	FindUserByName(ctx context.Context, name string) (*domainauth.UserRecord, error)

	// GetPasswordHash returns the stored password hash for a user, or ""
	// when the user has none.
	GetPasswordHash(ctx context.Context, id domainauth.UserID) (string, error)

	// GetLegacyAddressBook returns a user's persisted address book, or nil
	// when none has been stored.
	GetLegacyAddressBook(ctx context.Context, id domainauth.UserID) (*domainauth.AddressBook, error)

	// BatchUpsertAddressBooks writes all pairs in one statement and returns
	// the number of rows affected.
	BatchUpsertAddressBooks(ctx context.Context, pairs []AddressBookUpsert) (int64, error)

	// GetOrCreateFederatedUser resolves the local user for a federated
	// identity, creating it just-in-time when absent.
	GetOrCreateFederatedUser(ctx context.Context, identity domainauth.FederatedIdentity) (*domainauth.UserRecord, error)

	// UpdatePassword replaces a user's password hash.
	UpdatePassword(ctx context.Context, id domainauth.UserID, hash string) error
}

// PasswordHasher hashes and verifies login passwords.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}
