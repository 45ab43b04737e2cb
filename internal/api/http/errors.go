package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"dumpster-backoffice/internal/allocation"
	"dumpster-backoffice/internal/domain"
	"dumpster-backoffice/internal/logger"
)

type errorBody struct {
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

func badRequest(w http.ResponseWriter, field, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: msg, Field: field})
}

// writeError maps service errors onto status codes.
func writeError(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	var ce *allocation.ConfirmationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: ve.Reason, Field: ve.Field})
	case errors.As(err, &ce):
		writeJSON(w, http.StatusConflict, errorBody{
			Error:   "overpayment must be confirmed",
			Details: allocationResponseFrom(ce.Allocation),
		})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	case errors.Is(err, domain.ErrBookingConflict):
		writeJSON(w, http.StatusConflict, errorBody{Error: "booking conflict, please retry"})
	case errors.Is(err, domain.ErrTransient), errors.Is(err, domain.ErrReferenceCollision):
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "transient, please retry"})
	default:
		logger.Error("Unhandled request error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
	}
}
