package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"fintrack/internal/apperr"
	"fintrack/internal/logging"
	"fintrack/internal/middleware"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

const maxBodyBytes = 1 << 20

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

type errorBody struct {
	Error   string            `json:"error"`
	Kind    apperr.Kind       `json:"kind"`
	Details map[string]string `json:"details,omitempty"`
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.InvalidInput:
		return http.StatusBadRequest
	case apperr.Forbidden:
		return http.StatusForbidden
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Conflict:
		return http.StatusConflict
	case apperr.PreconditionFailed:
		return http.StatusPreconditionFailed
	default:
		return http.StatusInternalServerError
	}
}

// fail writes a classified error. Internal failures are logged with their
// cause and reach the client only as a generic message.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	body := errorBody{Error: err.Error(), Kind: kind}
	cause := err
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		body.Details = appErr.Details
		if appErr.Err != nil {
			cause = appErr.Err
		}
	}
	if kind == apperr.Internal {
		ownerID, _ := middleware.OwnerIDFromContext(r.Context())
		h.logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", chimiddleware.GetReqID(r.Context()),
			logging.FieldOwnerID, ownerID,
			logging.FieldError, cause)
		body.Error = "internal error"
		body.Details = nil
	}
	respondJSON(w, statusFor(kind), body)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dest any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return false
	}
	return true
}

func requireOwner(w http.ResponseWriter, r *http.Request) (string, bool) {
	ownerID, ok := middleware.OwnerIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
	}
	return ownerID, ok
}
