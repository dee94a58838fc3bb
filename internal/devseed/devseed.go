// Package devseed provisions a default administrator account for local
// development so a fresh database is usable without manual setup.
package devseed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/deskops/console-api/internal/data/pgxutil"
	"github.com/deskops/console-api/internal/ports"
)

// DefaultAdminName is the login name of the seeded administrator.
const DefaultAdminName = "admin"

// DefaultAdminPassword is the well-known development password. It must be
// rotated before any non-local deployment.
const DefaultAdminPassword = "Hello,world!"

// Deps groups the dependencies needed for seeding.
type Deps struct {
	DB     *sql.DB
	Hasher ports.PasswordHasher
	Logger *slog.Logger
}

// EnsureDefaultAdmin creates the default administrator if no user with that
// name exists yet. It is idempotent and safe to run on every startup.
func EnsureDefaultAdmin(ctx context.Context, deps Deps) error {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	hash, err := deps.Hasher.Hash(DefaultAdminPassword)
	if err != nil {
		return fmt.Errorf("hash default admin password: %w", err)
	}

	var created bool
	err = pgxutil.WithPgxConn(ctx, deps.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO users (name, email, password, active, admin)
			VALUES ($1, '', $2, true, true)
			ON CONFLICT (name) DO NOTHING
			RETURNING guid`,
			DefaultAdminName, hash)
		if err != nil {
			return err
		}
		defer rows.Close()
		if _, err := pgx.CollectOneRow(rows, pgx.RowTo[string]); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return fmt.Errorf("seed default admin: %w", err)
	}

	if created {
		logger.InfoContext(ctx, "seeded default admin user", "name", DefaultAdminName)
	}
	return nil
}
