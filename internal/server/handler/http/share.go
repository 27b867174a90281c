package http

import (
	"context"
	"encoding/json"
	"net/http"

	"passvault/internal/middleware"
	"passvault/internal/models"

	"github.com/go-chi/chi/v5"
)

// ShareService defines the interface for share-workflow operations required
// by the ShareHandler.
type ShareService interface {
	// CreateRequest offers read access to a secret to the named user.
	CreateRequest(ctx context.Context, fromUserID, toUsername, secretID string) (*models.ShareRequest, error)
	// Accept decides a pending request in the recipient's favor.
	Accept(ctx context.Context, requestID, callerID string) error
	// Reject declines a pending request.
	Reject(ctx context.Context, requestID, callerID string) error
	// ListByRecipient returns enriched requests addressed to the caller.
	ListByRecipient(ctx context.Context, userID string, status models.ShareStatus) ([]models.ShareRequestDetail, error)
}

// ShareHandler handles HTTP requests for the share-request workflow.
type ShareHandler struct {
	ShareService ShareService
}

// CreateShareRequest represents the JSON payload for offering a share.
type CreateShareRequest struct {
	// ToUsername is the recipient's username, resolved server-side.
	ToUsername string `json:"to_username"`
	// SecretID is the secret being offered.
	SecretID string `json:"secret_id"`
}

// decisionResponse is the body of a successful accept or reject.
type decisionResponse struct {
	Message string `json:"message"`
}

// ListSharesResponse is the body of a share-request listing, with an explicit
// note when there are none.
type ListSharesResponse struct {
	Requests []models.ShareRequestDetail `json:"requests"`
	Message  string                      `json:"message,omitempty"`
}

// Create handles POST /api/shares. The caller must own the secret and the
// recipient must be an existing, different user.
func (h *ShareHandler) Create(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetUserIDFromContext(r.Context())

	var req CreateShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	request, err := h.ShareService.CreateRequest(r.Context(), callerID, req.ToUsername, req.SecretID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, request)
}

// Accept handles POST /api/shares/{id}/accept. A request already decided
// responds 409 naming its terminal state.
func (h *ShareHandler) Accept(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetUserIDFromContext(r.Context())
	requestID := chi.URLParam(r, "id")

	if err := h.ShareService.Accept(r.Context(), requestID, callerID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, decisionResponse{Message: "share request accepted"})
}

// Reject handles POST /api/shares/{id}/reject.
func (h *ShareHandler) Reject(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetUserIDFromContext(r.Context())
	requestID := chi.URLParam(r, "id")

	if err := h.ShareService.Reject(r.Context(), requestID, callerID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, decisionResponse{Message: "share request rejected"})
}

// List handles GET /api/shares?status=pending|accepted|rejected. An empty
// result is a 200 with an explicit "none found" note.
func (h *ShareHandler) List(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetUserIDFromContext(r.Context())
	status := models.ShareStatus(r.URL.Query().Get("status"))

	requests, err := h.ShareService.ListByRecipient(r.Context(), callerID, status)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := ListSharesResponse{Requests: requests}
	if len(requests) == 0 {
		resp.Requests = []models.ShareRequestDetail{}
		resp.Message = "no " + string(status) + " share requests found"
	}
	writeJSON(w, http.StatusOK, resp)
}
