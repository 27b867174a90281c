// Package http provides HTTP handlers for the encrypted secret store and the
// share workflow, mapping service outcomes to response statuses.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"passvault/internal/errs"
)

// errorResponse is the JSON body of every failure response.
type errorResponse struct {
	Message string `json:"message"`
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the service error taxonomy onto HTTP statuses:
// validation 400, forbidden 403, not found 404, conflict 409, upstream 502,
// anything else 500. The error message is passed through so callers can tell
// "already accepted" from "already rejected".
func writeError(w http.ResponseWriter, err error) {
	var conflict *errs.ConflictError
	switch {
	case errors.Is(err, errs.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: err.Error()})
	case errors.Is(err, errs.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Message: "forbidden"})
	case errors.Is(err, errs.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Message: err.Error()})
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, errorResponse{Message: conflict.Error()})
	case errors.Is(err, errs.ErrUpstream):
		writeJSON(w, http.StatusBadGateway, errorResponse{Message: "service temporarily unavailable"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "internal error"})
	}
}
