// Package service provides business logic for the encrypted secret store and
// the share workflow, delegating persistence to repository interfaces.
package service

import (
	"context"
	"errors"
	"time"

	"passvault/internal/access"
	"passvault/internal/crypto"
	"passvault/internal/errs"
	"passvault/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SecretRepository defines the persistence operations needed by the
// SecretService.
type SecretRepository interface {
	// Create persists a new secret with an empty readers set.
	Create(ctx context.Context, s *models.Secret) error
	// GetByID fetches a secret or errs.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Secret, error)
	// Update rewrites a secret's locator and ciphertext.
	Update(ctx context.Context, s *models.Secret) error
	// Delete removes a secret or returns errs.ErrNotFound.
	Delete(ctx context.Context, id string) error
	// ListAccessible fetches all secrets the user owns or reads.
	ListAccessible(ctx context.Context, userID string) ([]models.Secret, error)
	// AddReader grants read access, ignoring already-present readers.
	AddReader(ctx context.Context, secretID, readerID string) error
}

// SecretUpdate carries the owner-mutable fields of a secret. Nil fields are
// left untouched.
type SecretUpdate struct {
	Locator   *string
	Plaintext *string
}

// SecretService implements the encrypted secret store: every write encrypts
// through the cipher, every authorized read decrypts, and access is gated by
// the access policy.
type SecretService struct {
	repo   SecretRepository
	cipher *crypto.Cipher
	log    *zap.Logger
}

// NewSecretService constructs a SecretService with the provided repository,
// cipher, and logger.
func NewSecretService(repo SecretRepository, cipher *crypto.Cipher, log *zap.Logger) *SecretService {
	return &SecretService{repo: repo, cipher: cipher, log: log}
}

// Create encrypts plaintext and persists a new secret owned by ownerID.
// The returned record carries metadata only, never the plaintext.
func (s *SecretService) Create(ctx context.Context, ownerID, locator, plaintext string) (*models.Secret, error) {
	if locator == "" {
		return nil, errs.Validation("locator is required")
	}
	if plaintext == "" {
		return nil, errs.Validation("secret value is required")
	}

	ciphertext, err := s.cipher.Encrypt(plaintext)
	if err != nil {
		return nil, err
	}
	secret := &models.Secret{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		Locator:    locator,
		Ciphertext: ciphertext,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, secret); err != nil {
		s.log.Error("failed to create secret", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, err
	}

	s.log.Info("secret created", zap.String("secret_id", secret.ID), zap.String("owner_id", ownerID))
	return secret, nil
}

// Update applies owner-supplied changes to a secret. Only the owner may
// update; a changed plaintext is re-encrypted, an absent one leaves the
// stored ciphertext untouched.
func (s *SecretService) Update(ctx context.Context, secretID, callerID string, upd SecretUpdate) (*models.Secret, error) {
	if upd.Locator != nil && *upd.Locator == "" {
		return nil, errs.Validation("locator is required")
	}
	if upd.Plaintext != nil && *upd.Plaintext == "" {
		return nil, errs.Validation("secret value is required")
	}

	secret, err := s.repo.GetByID(ctx, secretID)
	if err != nil {
		return nil, err
	}
	if access.RoleOf(callerID, secret) != access.RoleOwner {
		return nil, errs.ErrForbidden
	}

	if upd.Locator != nil {
		secret.Locator = *upd.Locator
	}
	if upd.Plaintext != nil {
		ciphertext, err := s.cipher.Encrypt(*upd.Plaintext)
		if err != nil {
			return nil, err
		}
		secret.Ciphertext = ciphertext
	}

	if err := s.repo.Update(ctx, secret); err != nil {
		s.log.Error("failed to update secret", zap.String("secret_id", secretID), zap.Error(err))
		return nil, err
	}

	s.log.Info("secret updated", zap.String("secret_id", secretID))
	return secret, nil
}

// Delete removes a secret. Only the owner may delete. Share requests that
// reference the secret are left orphaned; later operations against them
// report the missing secret.
func (s *SecretService) Delete(ctx context.Context, secretID, callerID string) error {
	secret, err := s.repo.GetByID(ctx, secretID)
	if err != nil {
		return err
	}
	if access.RoleOf(callerID, secret) != access.RoleOwner {
		return errs.ErrForbidden
	}

	if err := s.repo.Delete(ctx, secretID); err != nil {
		return err
	}
	s.log.Info("secret deleted", zap.String("secret_id", secretID), zap.String("owner_id", callerID))
	return nil
}

// ListAccessible returns every secret the caller owns or reads, each with its
// decrypted plaintext. A record whose ciphertext fails its integrity check is
// reported with an explicit marker instead of aborting the whole listing.
func (s *SecretService) ListAccessible(ctx context.Context, callerID string) ([]models.DecryptedSecret, error) {
	secrets, err := s.repo.ListAccessible(ctx, callerID)
	if err != nil {
		return nil, err
	}

	items := make([]models.DecryptedSecret, 0, len(secrets))
	for _, sec := range secrets {
		item := models.DecryptedSecret{Secret: sec}
		plaintext, err := s.cipher.Decrypt(sec.Ciphertext)
		switch {
		case errors.Is(err, errs.ErrIntegrity):
			s.log.Warn("secret failed decryption", zap.String("secret_id", sec.ID), zap.Error(err))
			item.DecryptFailed = true
		case err != nil:
			return nil, err
		default:
			item.Plaintext = plaintext
		}
		items = append(items, item)
	}
	return items, nil
}

// Get fetches a secret without decrypting it. Used by the share workflow to
// check ownership before offering a share.
func (s *SecretService) Get(ctx context.Context, secretID string) (*models.Secret, error) {
	return s.repo.GetByID(ctx, secretID)
}

// GrantReader adds readerID to the secret's readers set. It is invoked only
// by the share workflow on acceptance and is idempotent: granting an existing
// reader changes nothing.
func (s *SecretService) GrantReader(ctx context.Context, secretID, readerID string) error {
	if err := s.repo.AddReader(ctx, secretID, readerID); err != nil {
		return err
	}
	s.log.Info("reader granted", zap.String("secret_id", secretID), zap.String("reader_id", readerID))
	return nil
}

// Decrypt exposes the cipher to collaborating services so listings enriched
// elsewhere keep per-record failure isolation.
func (s *SecretService) Decrypt(ciphertext []byte) (string, error) {
	return s.cipher.Decrypt(ciphertext)
}
