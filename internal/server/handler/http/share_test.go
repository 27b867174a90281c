package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"passvault/internal/errs"
	"passvault/internal/models"
	handler "passvault/internal/server/handler/http"

	"github.com/go-chi/chi/v5"
)

// fakeShareService records calls and returns preconfigured results.
type fakeShareService struct {
	receivedStatus models.ShareStatus

	request *models.ShareRequest
	list    []models.ShareRequestDetail
	err     error
}

func (f *fakeShareService) CreateRequest(_ context.Context, fromUserID, toUsername, secretID string) (*models.ShareRequest, error) {
	return f.request, f.err
}

func (f *fakeShareService) Accept(_ context.Context, requestID, callerID string) error {
	return f.err
}

func (f *fakeShareService) Reject(_ context.Context, requestID, callerID string) error {
	return f.err
}

func (f *fakeShareService) ListByRecipient(_ context.Context, userID string, status models.ShareStatus) ([]models.ShareRequestDetail, error) {
	f.receivedStatus = status
	return f.list, f.err
}

func shareRouter(f *fakeShareService) http.Handler {
	h := &handler.ShareHandler{ShareService: f}
	r := chi.NewRouter()
	r.Post("/api/shares", h.Create)
	r.Get("/api/shares", h.List)
	r.Post("/api/shares/{id}/accept", h.Accept)
	r.Post("/api/shares/{id}/reject", h.Reject)
	return r
}

func TestShareCreate_Success(t *testing.T) {
	fake := &fakeShareService{
		request: &models.ShareRequest{ID: "r1", SecretID: "s1", Status: models.SharePending},
	}
	body, _ := json.Marshal(handler.CreateShareRequest{ToUsername: "bob", SecretID: "s1"})
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/shares", bytes.NewReader(body)), "u1")
	w := httptest.NewRecorder()

	shareRouter(fake).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d; want %d", w.Code, http.StatusOK)
	}
	var resp models.ShareRequest
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Status != models.SharePending {
		t.Errorf("status = %q; want pending", resp.Status)
	}
}

func TestShareCreate_UnknownRecipient(t *testing.T) {
	fake := &fakeShareService{err: errs.ErrNotFound}
	body, _ := json.Marshal(handler.CreateShareRequest{ToUsername: "nonexistent_user", SecretID: "s1"})
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/shares", bytes.NewReader(body)), "u1")
	w := httptest.NewRecorder()

	shareRouter(fake).ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d; want %d", w.Code, http.StatusNotFound)
	}
}

func TestShareCreate_SelfShare(t *testing.T) {
	fake := &fakeShareService{err: errs.Validation("cannot share a secret with yourself")}
	body, _ := json.Marshal(handler.CreateShareRequest{ToUsername: "alice", SecretID: "s1"})
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/shares", bytes.NewReader(body)), "u1")
	w := httptest.NewRecorder()

	shareRouter(fake).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d; want %d", w.Code, http.StatusBadRequest)
	}
}

func TestShareAccept_Success(t *testing.T) {
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/shares/r1/accept", nil), "u2")
	w := httptest.NewRecorder()

	shareRouter(&fakeShareService{}).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d; want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "accepted") {
		t.Errorf("body = %q; want acceptance message", w.Body.String())
	}
}

func TestShareAccept_AlreadyDecidedNamesState(t *testing.T) {
	cases := []struct {
		status models.ShareStatus
		want   string
	}{
		{models.ShareAccepted, "already accepted"},
		{models.ShareRejected, "already rejected"},
	}

	for _, tc := range cases {
		fake := &fakeShareService{err: errs.Conflict(tc.status)}
		req := asUser(httptest.NewRequest(http.MethodPost, "/api/shares/r1/accept", nil), "u2")
		w := httptest.NewRecorder()

		shareRouter(fake).ServeHTTP(w, req)

		if w.Code != http.StatusConflict {
			t.Errorf("status = %d; want %d", w.Code, http.StatusConflict)
		}
		if !strings.Contains(w.Body.String(), tc.want) {
			t.Errorf("body = %q; want it to contain %q", w.Body.String(), tc.want)
		}
	}
}

func TestShareReject_Forbidden(t *testing.T) {
	fake := &fakeShareService{err: errs.ErrForbidden}
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/shares/r1/reject", nil), "u9")
	w := httptest.NewRecorder()

	shareRouter(fake).ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d; want %d", w.Code, http.StatusForbidden)
	}
}

func TestShareList_PassesStatusFilter(t *testing.T) {
	fake := &fakeShareService{
		list: []models.ShareRequestDetail{
			{ID: "r1", Locator: "example.com", FromUsername: "alice", Status: models.SharePending, Plaintext: "p@ss"},
		},
	}
	req := asUser(httptest.NewRequest(http.MethodGet, "/api/shares?status=pending", nil), "u2")
	w := httptest.NewRecorder()

	shareRouter(fake).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", w.Code, http.StatusOK)
	}
	if fake.receivedStatus != models.SharePending {
		t.Errorf("service received status %q; want pending", fake.receivedStatus)
	}
	var resp handler.ListSharesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.Requests) != 1 || resp.Requests[0].Plaintext != "p@ss" {
		t.Errorf("requests = %+v", resp.Requests)
	}
}

func TestShareList_EmptySaysNoneFound(t *testing.T) {
	req := asUser(httptest.NewRequest(http.MethodGet, "/api/shares?status=rejected", nil), "u2")
	w := httptest.NewRecorder()

	shareRouter(&fakeShareService{}).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", w.Code, http.StatusOK)
	}
	var resp handler.ListSharesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !strings.Contains(resp.Message, "no rejected share requests") {
		t.Errorf("message = %q; want explicit none-found note", resp.Message)
	}
}

func TestShareList_InvalidStatus(t *testing.T) {
	fake := &fakeShareService{err: errs.Validation("status must be pending, accepted, or rejected")}
	req := asUser(httptest.NewRequest(http.MethodGet, "/api/shares?status=sideways", nil), "u2")
	w := httptest.NewRecorder()

	shareRouter(fake).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d; want %d", w.Code, http.StatusBadRequest)
	}
}
