package service_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"passvault/internal/crypto"
	"passvault/internal/errs"
	"passvault/internal/models"
	"passvault/internal/service"

	"go.uber.org/zap"
)

type mockSecretRepo struct {
	CreateFunc         func(ctx context.Context, s *models.Secret) error
	GetByIDFunc        func(ctx context.Context, id string) (*models.Secret, error)
	UpdateFunc         func(ctx context.Context, s *models.Secret) error
	DeleteFunc         func(ctx context.Context, id string) error
	ListAccessibleFunc func(ctx context.Context, userID string) ([]models.Secret, error)
	AddReaderFunc      func(ctx context.Context, secretID, readerID string) error
}

func (m *mockSecretRepo) Create(ctx context.Context, s *models.Secret) error {
	return m.CreateFunc(ctx, s)
}
func (m *mockSecretRepo) GetByID(ctx context.Context, id string) (*models.Secret, error) {
	return m.GetByIDFunc(ctx, id)
}
func (m *mockSecretRepo) Update(ctx context.Context, s *models.Secret) error {
	return m.UpdateFunc(ctx, s)
}
func (m *mockSecretRepo) Delete(ctx context.Context, id string) error {
	return m.DeleteFunc(ctx, id)
}
func (m *mockSecretRepo) ListAccessible(ctx context.Context, userID string) ([]models.Secret, error) {
	return m.ListAccessibleFunc(ctx, userID)
}
func (m *mockSecretRepo) AddReader(ctx context.Context, secretID, readerID string) error {
	return m.AddReaderFunc(ctx, secretID, readerID)
}

func newCipher(t *testing.T) *crypto.Cipher {
	t.Helper()
	key := bytes.Repeat([]byte{0xA5}, crypto.KeySize)
	c, err := crypto.New(key)
	if err != nil {
		t.Fatalf("crypto.New: %v", err)
	}
	return c
}

func TestSecretCreate_Validation(t *testing.T) {
	svc := service.NewSecretService(&mockSecretRepo{}, newCipher(t), zap.NewNop())

	cases := []struct {
		name      string
		locator   string
		plaintext string
	}{
		{"empty locator", "", "p@ss"},
		{"empty plaintext", "example.com", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), "u1", tc.locator, tc.plaintext)
			if !errors.Is(err, errs.ErrValidation) {
				t.Errorf("error = %v; want errs.ErrValidation", err)
			}
		})
	}
}

func TestSecretCreate_EncryptsAtRest(t *testing.T) {
	cipher := newCipher(t)
	var stored *models.Secret
	repo := &mockSecretRepo{
		CreateFunc: func(_ context.Context, s *models.Secret) error {
			stored = s
			return nil
		},
	}
	svc := service.NewSecretService(repo, cipher, zap.NewNop())

	secret, err := svc.Create(context.Background(), "u1", "example.com", "p@ss")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if stored == nil {
		t.Fatal("repository never received the secret")
	}
	if bytes.Contains(stored.Ciphertext, []byte("p@ss")) {
		t.Error("plaintext leaked into the stored ciphertext")
	}
	if got, err := cipher.Decrypt(stored.Ciphertext); err != nil || got != "p@ss" {
		t.Errorf("stored ciphertext decrypts to (%q, %v); want (%q, nil)", got, err, "p@ss")
	}
	if secret.ID == "" || secret.OwnerID != "u1" || len(secret.Readers) != 0 {
		t.Errorf("returned secret = %+v", secret)
	}
}

func TestSecretUpdate_ForbiddenForNonOwner(t *testing.T) {
	repo := &mockSecretRepo{
		GetByIDFunc: func(_ context.Context, id string) (*models.Secret, error) {
			return &models.Secret{ID: id, OwnerID: "u1", Readers: []string{"u2"}}, nil
		},
	}
	svc := service.NewSecretService(repo, newCipher(t), zap.NewNop())

	locator := "new.example.com"
	// Even a granted reader may not update.
	for _, caller := range []string{"u2", "u3"} {
		_, err := svc.Update(context.Background(), "s1", caller, service.SecretUpdate{Locator: &locator})
		if !errors.Is(err, errs.ErrForbidden) {
			t.Errorf("caller %s: error = %v; want errs.ErrForbidden", caller, err)
		}
	}
}

func TestSecretUpdate_NotFound(t *testing.T) {
	repo := &mockSecretRepo{
		GetByIDFunc: func(context.Context, string) (*models.Secret, error) {
			return nil, errs.ErrNotFound
		},
	}
	svc := service.NewSecretService(repo, newCipher(t), zap.NewNop())

	locator := "x"
	_, err := svc.Update(context.Background(), "missing", "u1", service.SecretUpdate{Locator: &locator})
	if !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("error = %v; want errs.ErrNotFound", err)
	}
}

func TestSecretUpdate_LocatorOnlyKeepsCiphertext(t *testing.T) {
	original := []byte{0x01, 0x02, 0x03}
	var updated *models.Secret
	repo := &mockSecretRepo{
		GetByIDFunc: func(_ context.Context, id string) (*models.Secret, error) {
			return &models.Secret{ID: id, OwnerID: "u1", Locator: "old.com", Ciphertext: original}, nil
		},
		UpdateFunc: func(_ context.Context, s *models.Secret) error {
			updated = s
			return nil
		},
	}
	svc := service.NewSecretService(repo, newCipher(t), zap.NewNop())

	locator := "new.com"
	if _, err := svc.Update(context.Background(), "s1", "u1", service.SecretUpdate{Locator: &locator}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Locator != "new.com" {
		t.Errorf("locator = %q; want new.com", updated.Locator)
	}
	if !bytes.Equal(updated.Ciphertext, original) {
		t.Error("ciphertext changed although no plaintext was supplied")
	}
}

func TestSecretUpdate_PlaintextReencrypts(t *testing.T) {
	cipher := newCipher(t)
	original, err := cipher.Encrypt("old")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	var updated *models.Secret
	repo := &mockSecretRepo{
		GetByIDFunc: func(_ context.Context, id string) (*models.Secret, error) {
			return &models.Secret{ID: id, OwnerID: "u1", Locator: "example.com", Ciphertext: original}, nil
		},
		UpdateFunc: func(_ context.Context, s *models.Secret) error {
			updated = s
			return nil
		},
	}
	svc := service.NewSecretService(repo, cipher, zap.NewNop())

	plaintext := "brand-new"
	if _, err := svc.Update(context.Background(), "s1", "u1", service.SecretUpdate{Plaintext: &plaintext}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got, err := cipher.Decrypt(updated.Ciphertext); err != nil || got != "brand-new" {
		t.Errorf("updated ciphertext decrypts to (%q, %v); want (%q, nil)", got, err, "brand-new")
	}
}

func TestSecretDelete_ForbiddenForNonOwner(t *testing.T) {
	repo := &mockSecretRepo{
		GetByIDFunc: func(_ context.Context, id string) (*models.Secret, error) {
			return &models.Secret{ID: id, OwnerID: "u1"}, nil
		},
	}
	svc := service.NewSecretService(repo, newCipher(t), zap.NewNop())

	err := svc.Delete(context.Background(), "s1", "u3")
	if !errors.Is(err, errs.ErrForbidden) {
		t.Errorf("error = %v; want errs.ErrForbidden", err)
	}
}

func TestListAccessible_IsolatesCorruptRecords(t *testing.T) {
	cipher := newCipher(t)
	good, err := cipher.Encrypt("p@ss")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	repo := &mockSecretRepo{
		ListAccessibleFunc: func(context.Context, string) ([]models.Secret, error) {
			return []models.Secret{
				{ID: "s1", OwnerID: "u1", Locator: "ok.com", Ciphertext: good},
				{ID: "s2", OwnerID: "u1", Locator: "bad.com", Ciphertext: []byte("garbage")},
			}, nil
		},
	}
	svc := service.NewSecretService(repo, cipher, zap.NewNop())

	items, err := svc.ListAccessible(context.Background(), "u1")
	if err != nil {
		t.Fatalf("one corrupt record must not abort the listing: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d; want 2", len(items))
	}
	if items[0].Plaintext != "p@ss" || items[0].DecryptFailed {
		t.Errorf("healthy item = %+v", items[0])
	}
	if !items[1].DecryptFailed || items[1].Plaintext != "" {
		t.Errorf("corrupt item = %+v; want failure marker and no plaintext", items[1])
	}
}

func TestGrantReader_Idempotent(t *testing.T) {
	calls := 0
	repo := &mockSecretRepo{
		AddReaderFunc: func(_ context.Context, secretID, readerID string) error {
			calls++
			return nil
		},
	}
	svc := service.NewSecretService(repo, newCipher(t), zap.NewNop())

	// A retried grant simply lands on the add-if-absent repository call.
	for i := 0; i < 2; i++ {
		if err := svc.GrantReader(context.Background(), "s1", "u2"); err != nil {
			t.Fatalf("GrantReader: %v", err)
		}
	}
	if calls != 2 {
		t.Errorf("AddReader calls = %d; want 2", calls)
	}
}
