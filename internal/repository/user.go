// Package repository provides persistence implementations for the secret
// store and share workflow using a PostgreSQL database.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"passvault/internal/errs"
	"passvault/internal/models"

	"github.com/lib/pq"
)

// PostgresUserRepository implements user lookup and provisioning against a
// PostgreSQL database. Identities are created by the external authenticator;
// this service mostly resolves usernames to IDs.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a PostgresUserRepository using the
// provided *sql.DB. db must be a valid connection to a PostgreSQL instance.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

// GetByUsername resolves a username to its user record. Usernames are unique
// and case-sensitive. Returns errs.ErrNotFound if no such user exists.
func (r *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, username FROM users WHERE username = $1
	`, username).Scan(&u.ID, &u.Username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, errs.Upstream("get user by username", err)
	}
	return &u, nil
}

// Create inserts a new user identity. A duplicate username fails with
// errs.ErrValidation; anything else is an upstream fault.
func (r *PostgresUserRepository) Create(ctx context.Context, u *models.User) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (id, username) VALUES ($1, $2)
	`, u.ID, u.Username)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return errs.Validation("username already taken")
	}
	if err != nil {
		return errs.Upstream("create user", err)
	}
	return nil
}
