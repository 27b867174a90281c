package repository

import (
	"context"
	"database/sql"
	"errors"

	"passvault/internal/errs"
	"passvault/internal/models"
)

// PostgresShareRepository implements share-request persistence against a
// PostgreSQL database. The pending-to-terminal transition is a conditional
// update so concurrent decisions resolve exactly one winner.
type PostgresShareRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresShareRepository creates a PostgresShareRepository using the
// provided *sql.DB.
func NewPostgresShareRepository(db *sql.DB) *PostgresShareRepository {
	return &PostgresShareRepository{DB: db}
}

// Create persists a new share request in the pending state.
func (r *PostgresShareRepository) Create(ctx context.Context, req *models.ShareRequest) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO share_requests (id, secret_id, from_user_id, to_user_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, req.ID, req.SecretID, req.FromUserID, req.ToUserID, req.Status, req.CreatedAt)
	if err != nil {
		return errs.Upstream("create share request", err)
	}
	return nil
}

// GetByID fetches a single share request by ID. Returns errs.ErrNotFound
// if absent.
func (r *PostgresShareRepository) GetByID(ctx context.Context, id string) (*models.ShareRequest, error) {
	var req models.ShareRequest
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, secret_id, from_user_id, to_user_id, status, created_at
		FROM share_requests WHERE id = $1
	`, id).Scan(&req.ID, &req.SecretID, &req.FromUserID, &req.ToUserID, &req.Status, &req.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, errs.Upstream("get share request", err)
	}
	return &req, nil
}

// Decide flips a pending request to the given terminal status with a
// compare-and-set: the update only matches while the stored status is still
// pending. When the request lost the race it returns a ConflictError naming
// the terminal state it is already in; a vanished request is errs.ErrNotFound.
// Requests are never deleted, so the re-read after a missed update is stable.
func (r *PostgresShareRepository) Decide(ctx context.Context, id string, status models.ShareStatus) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE share_requests SET status = $2 WHERE id = $1 AND status = 'pending'
	`, id, status)
	if err != nil {
		return errs.Upstream("decide share request", err)
	}
	if rows, _ := res.RowsAffected(); rows > 0 {
		return nil
	}

	var current models.ShareStatus
	err = r.DB.QueryRowContext(ctx, `
		SELECT status FROM share_requests WHERE id = $1
	`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return errs.ErrNotFound
	}
	if err != nil {
		return errs.Upstream("read share request status", err)
	}
	return errs.Conflict(current)
}

// ListByRecipient fetches all requests addressed to userID in the given
// status, enriched with the secret's locator, its ciphertext, and the
// usernames of its owner and the sender. Requests whose secret was deleted
// in the meantime are omitted.
func (r *PostgresShareRepository) ListByRecipient(ctx context.Context, userID string, status models.ShareStatus) ([]models.ShareRequestDetail, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT sr.id, s.locator, o.username, f.username, s.ciphertext, sr.status
		FROM share_requests sr
		JOIN secrets s ON s.id = sr.secret_id
		JOIN users o ON o.id = s.owner_id
		JOIN users f ON f.id = sr.from_user_id
		WHERE sr.to_user_id = $1 AND sr.status = $2
		ORDER BY sr.created_at
	`, userID, status)
	if err != nil {
		return nil, errs.Upstream("list share requests", err)
	}
	defer rows.Close()

	var details []models.ShareRequestDetail
	for rows.Next() {
		var d models.ShareRequestDetail
		if err := rows.Scan(&d.ID, &d.Locator, &d.OwnerUsername, &d.FromUsername, &d.Ciphertext, &d.Status); err != nil {
			return nil, errs.Upstream("scan share request", err)
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Upstream("list share requests", err)
	}
	return details, nil
}
