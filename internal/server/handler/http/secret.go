package http

import (
	"context"
	"encoding/json"
	"net/http"

	"passvault/internal/middleware"
	"passvault/internal/models"
	"passvault/internal/service"

	"github.com/go-chi/chi/v5"
)

// SecretService defines the interface for secret-store operations required
// by the SecretHandler.
type SecretService interface {
	// Create encrypts and stores a new secret for the owner.
	Create(ctx context.Context, ownerID, locator, plaintext string) (*models.Secret, error)
	// Update applies owner-supplied changes to a secret.
	Update(ctx context.Context, secretID, callerID string, upd service.SecretUpdate) (*models.Secret, error)
	// Delete removes a secret owned by the caller.
	Delete(ctx context.Context, secretID, callerID string) error
	// ListAccessible returns every secret the caller may read, decrypted.
	ListAccessible(ctx context.Context, callerID string) ([]models.DecryptedSecret, error)
}

// SecretHandler handles HTTP requests for secret CRUD operations.
type SecretHandler struct {
	SecretService SecretService
}

// CreateSecretRequest represents the JSON payload for creating a secret.
type CreateSecretRequest struct {
	// Locator identifies what the secret is for, e.g. a site URL.
	Locator string `json:"locator"`
	// Plaintext is the credential to store. It is never echoed back.
	Plaintext string `json:"plaintext"`
}

// UpdateSecretRequest represents the JSON payload for updating a secret.
// Absent fields are left unchanged.
type UpdateSecretRequest struct {
	Locator   *string `json:"locator,omitempty"`
	Plaintext *string `json:"plaintext,omitempty"`
}

// ListSecretsResponse is the body of a listing: the accessible secrets with
// their decrypted values, plus an explicit note when there are none.
type ListSecretsResponse struct {
	Secrets []models.DecryptedSecret `json:"secrets"`
	Message string                   `json:"message,omitempty"`
}

// Create handles POST /api/secrets. It responds 201 with the created
// secret's metadata; the plaintext is never part of the response.
func (h *SecretHandler) Create(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetUserIDFromContext(r.Context())

	var req CreateSecretRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	secret, err := h.SecretService.Create(r.Context(), callerID, req.Locator, req.Plaintext)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, secret)
}

// Update handles PUT /api/secrets/{id}.
func (h *SecretHandler) Update(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetUserIDFromContext(r.Context())
	secretID := chi.URLParam(r, "id")

	var req UpdateSecretRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	secret, err := h.SecretService.Update(r.Context(), secretID, callerID, service.SecretUpdate{
		Locator:   req.Locator,
		Plaintext: req.Plaintext,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, secret)
}

// Delete handles DELETE /api/secrets/{id}. It responds 204 on success.
func (h *SecretHandler) Delete(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetUserIDFromContext(r.Context())
	secretID := chi.URLParam(r, "id")

	if err := h.SecretService.Delete(r.Context(), secretID, callerID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// List handles GET /api/secrets. An empty result is a 200 with an explicit
// "none found" note, not an error.
func (h *SecretHandler) List(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetUserIDFromContext(r.Context())

	secrets, err := h.SecretService.ListAccessible(r.Context(), callerID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := ListSecretsResponse{Secrets: secrets}
	if len(secrets) == 0 {
		resp.Secrets = []models.DecryptedSecret{}
		resp.Message = "no secrets found"
	}
	writeJSON(w, http.StatusOK, resp)
}
