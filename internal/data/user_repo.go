package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/deskops/console-api/internal/data/pgxutil"
	domainauth "github.com/deskops/console-api/internal/domain/auth"
	"github.com/deskops/console-api/internal/ports"
)

// ErrUserNotFound is returned when a password update targets a missing user.
var ErrUserNotFound = errors.New("user not found")

// UserRepo provides database operations for users and their legacy address
// books. It implements ports.Store.
type UserRepo struct {
	DB     *sql.DB
	hasher ports.PasswordHasher

	// autoActivateFederatedUsers controls whether a just-in-time created
	// federated account starts active.
	autoActivateFederatedUsers bool
}

var _ ports.Store = (*UserRepo)(nil)

// UserRepoOptions groups parameters for NewUserRepo.
type UserRepoOptions struct {
	DB                         *sql.DB
	Hasher                     ports.PasswordHasher
	AutoActivateFederatedUsers bool
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(opts UserRepoOptions) *UserRepo {
	return &UserRepo{
		DB:                         opts.DB,
		hasher:                     opts.Hasher,
		autoActivateFederatedUsers: opts.AutoActivateFederatedUsers,
	}
}

// userRow mirrors the users table columns selected by user queries.
type userRow struct {
	Guid   string `db:"guid"`
	Name   string `db:"name"`
	Email  string `db:"email"`
	Active bool   `db:"active"`
	Admin  bool   `db:"admin"`
}

func (u userRow) toRecord() *domainauth.UserRecord {
	return &domainauth.UserRecord{
		ID:     domainauth.UserID(u.Guid),
		Name:   u.Name,
		Email:  u.Email,
		Active: u.Active,
		Admin:  u.Admin,
	}
}

const userByNameQuery = `
	SELECT guid, name, email, active, admin
	FROM users
	WHERE name = $1`

// FindUserByName returns the user record for a login name, or (nil, nil) when
// no such user exists.
func (r *UserRepo) FindUserByName(ctx context.Context, name string) (*domainauth.UserRecord, error) {
	var row userRow
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, userByNameQuery, name)
		if err != nil {
			return err
		}
		defer rows.Close()
		row, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[userRow])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by name: %w", err)
	}
	return row.toRecord(), nil
}

// GetPasswordHash returns the stored password hash for a user, or "" when the
// user does not exist.
func (r *UserRepo) GetPasswordHash(ctx context.Context, id domainauth.UserID) (string, error) {
	var hash string
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, `SELECT password FROM users WHERE guid = $1`, string(id)).Scan(&hash)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get password hash: %w", err)
	}
	return hash, nil
}

// GetLegacyAddressBook returns a user's persisted address book, or (nil, nil)
// when none has been stored.
func (r *UserRepo) GetLegacyAddressBook(ctx context.Context, id domainauth.UserID) (*domainauth.AddressBook, error) {
	var ab string
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, `SELECT ab FROM address_books WHERE user_guid = $1`, string(id)).Scan(&ab)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get address book: %w", err)
	}
	return &domainauth.AddressBook{AB: ab}, nil
}

// BatchUpsertAddressBooks writes all pairs in a single statement and returns
// the number of rows affected. Callers compare that count against the number
// of pairs submitted to detect partial writes.
func (r *UserRepo) BatchUpsertAddressBooks(ctx context.Context, pairs []ports.AddressBookUpsert) (int64, error) {
	if len(pairs) == 0 {
		return 0, nil
	}

	userIDs := make([]string, len(pairs))
	books := make([]string, len(pairs))
	for i, p := range pairs {
		userIDs[i] = string(p.UserID)
		books[i] = p.AddressBook.AB
	}

	var affected int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `
			INSERT INTO address_books (user_guid, ab)
			SELECT * FROM unnest($1::uuid[], $2::text[])
			ON CONFLICT (user_guid)
			DO UPDATE SET ab = EXCLUDED.ab, updated_at = now()`,
			userIDs, books)
		if err != nil {
			return err
		}
		affected = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to upsert address books: %w", err)
	}
	return affected, nil
}

// GetOrCreateFederatedUser resolves the local user for a federated identity,
// creating it just-in-time when absent. A created account gets a random
// password so it can never be logged into locally before the owner sets one,
// and starts inactive unless auto-activation is configured.
func (r *UserRepo) GetOrCreateFederatedUser(ctx context.Context, identity domainauth.FederatedIdentity) (*domainauth.UserRecord, error) {
	if identity.DisplayName == "" {
		return nil, errors.New("federated identity has no name")
	}

	if user, err := r.FindUserByName(ctx, identity.DisplayName); err != nil || user != nil {
		return user, err
	}

	randomPassword, err := r.hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("failed to hash placeholder password: %w", err)
	}

	var row userRow
	err = pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO users (name, email, password, active, admin, client_uuid)
			VALUES ($1, $2, $3, $4, false, $5)
			ON CONFLICT (name) DO NOTHING
			RETURNING guid, name, email, active, admin`,
			identity.DisplayName,
			identity.Email,
			randomPassword,
			r.autoActivateFederatedUsers,
			identity.UUID)
		if err != nil {
			return err
		}
		defer rows.Close()
		row, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[userRow])
		return err
	})
	if err == nil {
		return row.toRecord(), nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		// Lost the insert race; the winner's row is authoritative.
		return r.FindUserByName(ctx, identity.DisplayName)
	}
	return nil, fmt.Errorf("failed to create federated user: %w", err)
}

// UpdatePassword replaces a user's password hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id domainauth.UserID, hash string) error {
	var affected int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx,
			`UPDATE users SET password = $2, updated_at = now() WHERE guid = $1`,
			string(id), hash)
		if err != nil {
			return err
		}
		affected = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}
