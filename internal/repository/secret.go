package repository

import (
	"context"
	"database/sql"
	"errors"

	"passvault/internal/errs"
	"passvault/internal/models"

	"github.com/lib/pq"
)

// PostgresSecretRepository implements secret persistence against a PostgreSQL
// database. The readers set is stored as a TEXT[] column and mutated only
// through AddReader's add-if-absent update.
type PostgresSecretRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresSecretRepository creates a PostgresSecretRepository using the
// provided *sql.DB.
func NewPostgresSecretRepository(db *sql.DB) *PostgresSecretRepository {
	return &PostgresSecretRepository{DB: db}
}

// Create persists a new secret with an empty readers set.
func (r *PostgresSecretRepository) Create(ctx context.Context, s *models.Secret) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO secrets (id, owner_id, locator, ciphertext, readers, created_at)
		VALUES ($1, $2, $3, $4, '{}', $5)
	`, s.ID, s.OwnerID, s.Locator, s.Ciphertext, s.CreatedAt)
	if err != nil {
		return errs.Upstream("create secret", err)
	}
	return nil
}

// GetByID fetches a single secret by ID. Returns errs.ErrNotFound if no
// such secret exists.
func (r *PostgresSecretRepository) GetByID(ctx context.Context, id string) (*models.Secret, error) {
	var (
		s       models.Secret
		readers pq.StringArray
	)
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, owner_id, locator, ciphertext, readers, created_at
		FROM secrets WHERE id = $1
	`, id).Scan(&s.ID, &s.OwnerID, &s.Locator, &s.Ciphertext, &readers, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, errs.Upstream("get secret", err)
	}
	s.Readers = readers
	return &s, nil
}

// Update rewrites a secret's locator and ciphertext. The readers set and
// ownership are untouched. Returns errs.ErrNotFound if the secret vanished.
func (r *PostgresSecretRepository) Update(ctx context.Context, s *models.Secret) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE secrets SET locator = $2, ciphertext = $3 WHERE id = $1
	`, s.ID, s.Locator, s.Ciphertext)
	if err != nil {
		return errs.Upstream("update secret", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Delete removes a secret. Share requests referencing it are deliberately
// left behind; operations against them report the missing secret.
func (r *PostgresSecretRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM secrets WHERE id = $1`, id)
	if err != nil {
		return errs.Upstream("delete secret", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// ListAccessible fetches all secrets the user owns or reads, owner's first.
func (r *PostgresSecretRepository) ListAccessible(ctx context.Context, userID string) ([]models.Secret, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, owner_id, locator, ciphertext, readers, created_at
		FROM secrets
		WHERE owner_id = $1 OR $1 = ANY(readers)
		ORDER BY owner_id = $1 DESC, created_at
	`, userID)
	if err != nil {
		return nil, errs.Upstream("list secrets", err)
	}
	defer rows.Close()

	var secrets []models.Secret
	for rows.Next() {
		var (
			s       models.Secret
			readers pq.StringArray
		)
		if err := rows.Scan(&s.ID, &s.OwnerID, &s.Locator, &s.Ciphertext, &readers, &s.CreatedAt); err != nil {
			return nil, errs.Upstream("scan secret", err)
		}
		s.Readers = readers
		secrets = append(secrets, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Upstream("list secrets", err)
	}
	return secrets, nil
}

// AddReader grants readerID read access to the secret. Adding an already
// present reader is a no-op, so a retried grant never double-adds. The owner
// is never appended to its own readers set. Returns errs.ErrNotFound if the
// secret no longer exists.
func (r *PostgresSecretRepository) AddReader(ctx context.Context, secretID, readerID string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE secrets SET readers = array_append(readers, $2)
		WHERE id = $1 AND owner_id <> $2 AND $2 <> ALL(readers)
	`, secretID, readerID)
	if err != nil {
		return errs.Upstream("add reader", err)
	}
	if rows, _ := res.RowsAffected(); rows > 0 {
		return nil
	}

	// No row updated: either the secret is gone, or the grant already holds.
	var exists bool
	err = r.DB.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM secrets WHERE id = $1)
	`, secretID).Scan(&exists)
	if err != nil {
		return errs.Upstream("check secret exists", err)
	}
	if !exists {
		return errs.ErrNotFound
	}
	return nil
}
