package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"passvault/internal/access"
	"passvault/internal/errs"
	"passvault/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ShareRepository defines the persistence operations needed by the
// ShareService.
type ShareRepository interface {
	// Create persists a new pending share request.
	Create(ctx context.Context, req *models.ShareRequest) error
	// GetByID fetches a share request or errs.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.ShareRequest, error)
	// Decide atomically flips a pending request to the given terminal
	// status. A request already decided yields a ConflictError naming its
	// terminal state.
	Decide(ctx context.Context, id string, status models.ShareStatus) error
	// ListByRecipient fetches enriched requests addressed to a user in a
	// given status.
	ListByRecipient(ctx context.Context, userID string, status models.ShareStatus) ([]models.ShareRequestDetail, error)
}

// SecretStore is the slice of the secret service the share workflow needs:
// ownership checks before offering, the grant on acceptance, and decryption
// for recipient review.
type SecretStore interface {
	Get(ctx context.Context, secretID string) (*models.Secret, error)
	GrantReader(ctx context.Context, secretID, readerID string) error
	Decrypt(ciphertext []byte) (string, error)
}

// UserResolver maps a username to a user identity.
type UserResolver interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// ShareService drives the share-request state machine: pending at creation,
// exactly one transition to accepted or rejected, and the read grant applied
// on acceptance.
type ShareService struct {
	repo    ShareRepository
	secrets SecretStore
	users   UserResolver
	log     *zap.Logger
}

// NewShareService constructs a ShareService with the provided repository,
// secret store, username resolver, and logger.
func NewShareService(repo ShareRepository, secrets SecretStore, users UserResolver, log *zap.Logger) *ShareService {
	return &ShareService{repo: repo, secrets: secrets, users: users, log: log}
}

// CreateRequest offers read access to a secret. Only the secret's owner may
// offer, the recipient is resolved by username, and offering a secret to
// oneself is rejected. The request starts pending.
func (s *ShareService) CreateRequest(ctx context.Context, fromUserID, toUsername, secretID string) (*models.ShareRequest, error) {
	toUser, err := s.users.GetByUsername(ctx, toUsername)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, fmt.Errorf("%w: no user named %q", errs.ErrNotFound, toUsername)
	}
	if err != nil {
		return nil, err
	}

	secret, err := s.secrets.Get(ctx, secretID)
	if err != nil {
		return nil, err
	}
	if access.RoleOf(fromUserID, secret) != access.RoleOwner {
		return nil, errs.ErrForbidden
	}
	if toUser.ID == fromUserID {
		return nil, errs.Validation("cannot share a secret with yourself")
	}

	req := &models.ShareRequest{
		ID:         uuid.NewString(),
		SecretID:   secretID,
		FromUserID: fromUserID,
		ToUserID:   toUser.ID,
		Status:     models.SharePending,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, req); err != nil {
		s.log.Error("failed to create share request", zap.String("secret_id", secretID), zap.Error(err))
		return nil, err
	}

	s.log.Info("share request created",
		zap.String("request_id", req.ID),
		zap.String("secret_id", secretID),
		zap.String("to_user_id", toUser.ID),
	)
	return req, nil
}

// Accept decides a pending request in the recipient's favor and grants read
// access. Only the recipient may accept. A request already decided fails with
// a ConflictError carrying its terminal state. When the grant cannot be
// materialized because the secret was deleted after the offer, the decision
// stands as accepted and the missing secret is reported distinctly.
func (s *ShareService) Accept(ctx context.Context, requestID, callerID string) error {
	req, err := s.guardedDecide(ctx, requestID, callerID, models.ShareAccepted)
	if err != nil {
		return err
	}

	if err := s.secrets.GrantReader(ctx, req.SecretID, req.ToUserID); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			s.log.Warn("share accepted but secret is gone",
				zap.String("request_id", requestID),
				zap.String("secret_id", req.SecretID),
			)
			return fmt.Errorf("%w: share accepted, but the secret no longer exists", errs.ErrNotFound)
		}
		return err
	}

	s.log.Info("share request accepted", zap.String("request_id", requestID))
	return nil
}

// Reject decides a pending request against the offer. Only the recipient may
// reject; the secret's readers set is never touched.
func (s *ShareService) Reject(ctx context.Context, requestID, callerID string) error {
	if _, err := s.guardedDecide(ctx, requestID, callerID, models.ShareRejected); err != nil {
		return err
	}
	s.log.Info("share request rejected", zap.String("request_id", requestID))
	return nil
}

// guardedDecide runs the shared guard sequence for accept and reject: the
// request must exist, the caller must be its recipient, and the stored status
// must still be pending when the conditional update lands. The conditional
// update is what resolves concurrent decisions to exactly one winner.
func (s *ShareService) guardedDecide(ctx context.Context, requestID, callerID string, status models.ShareStatus) (*models.ShareRequest, error) {
	req, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.ToUserID != callerID {
		return nil, errs.ErrForbidden
	}
	if req.Status.Terminal() {
		return nil, errs.Conflict(req.Status)
	}

	if err := s.repo.Decide(ctx, requestID, status); err != nil {
		return nil, err
	}
	return req, nil
}

// ListByRecipient returns the requests addressed to userID in the given
// status, enriched for review. Pending and accepted requests carry the
// decrypted credential; rejected ones never do. Decryption failures are
// isolated per record. An empty result is not an error.
func (s *ShareService) ListByRecipient(ctx context.Context, userID string, status models.ShareStatus) ([]models.ShareRequestDetail, error) {
	if !status.Valid() {
		return nil, errs.Validation("status must be pending, accepted, or rejected")
	}

	details, err := s.repo.ListByRecipient(ctx, userID, status)
	if err != nil {
		return nil, err
	}

	for i := range details {
		if status == models.ShareRejected {
			continue
		}
		plaintext, err := s.secrets.Decrypt(details[i].Ciphertext)
		switch {
		case errors.Is(err, errs.ErrIntegrity):
			s.log.Warn("shared secret failed decryption", zap.String("request_id", details[i].ID), zap.Error(err))
			details[i].DecryptFailed = true
		case err != nil:
			return nil, err
		default:
			details[i].Plaintext = plaintext
		}
	}
	return details, nil
}
