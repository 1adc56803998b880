package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/orbita-hub/orbita-learning-hub/internal/domain/ranking"
	"github.com/orbita-hub/orbita-learning-hub/internal/domain/shared"
	"github.com/orbita-hub/orbita-learning-hub/internal/domain/xp"
)

// errorResponse is the uniform error envelope.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

// writeDomainError maps domain errors onto HTTP statuses:
//
//	validation failures        -> 400
//	unknown user               -> 404
//	partial write (ledger ok,
//	aggregate update failed)   -> 502
//	everything else            -> 500
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrValidation),
		errors.Is(err, xp.ErrInvalidUserID),
		errors.Is(err, xp.ErrInvalidAmount),
		errors.Is(err, xp.ErrInvalidSource),
		errors.Is(err, ranking.ErrInvalidType),
		errors.Is(err, ranking.ErrInvalidLimit):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, xp.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user_not_found", err.Error())
	case errors.Is(err, xp.ErrAggregateUpdateFailed):
		writeError(w, http.StatusBadGateway, "aggregate_update_failed", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
