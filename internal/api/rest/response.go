package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/service"
)

const maxBodyBytes = 1 << 20

// envelope is the body of every response.
type envelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    any          `json:"data,omitempty"`
	Errors  []fieldError `json:"errors,omitempty"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func writeMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: message})
}

// writeError maps a service error onto a status code. Server-side failures
// are logged with their detail and answered with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation *service.ValidationError
		unknown    *calculator.UnknownMemberError
		invariant  *calculator.InvariantViolationError
	)
	switch {
	case errors.As(err, &validation):
		body := envelope{Message: "validation failed", Errors: make([]fieldError, len(validation.Fields))}
		for i, f := range validation.Fields {
			body.Errors[i] = fieldError{Field: f.Field, Message: f.Message}
		}
		writeJSON(w, http.StatusBadRequest, body)
	case errors.Is(err, service.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, envelope{Message: err.Error()})
	case errors.Is(err, auth.ErrMissingToken), errors.Is(err, auth.ErrInvalidToken):
		writeJSON(w, http.StatusUnauthorized, envelope{Message: err.Error()})
	case errors.Is(err, service.ErrForbidden):
		writeJSON(w, http.StatusForbidden, envelope{Message: "you do not have access to this resource"})
	case errors.Is(err, service.ErrNotFound):
		writeJSON(w, http.StatusNotFound, envelope{Message: err.Error()})
	case errors.Is(err, service.ErrConflict):
		writeJSON(w, http.StatusConflict, envelope{Message: err.Error()})
	case errors.As(err, &unknown):
		writeJSON(w, http.StatusUnprocessableEntity, envelope{
			Message: "ledger entry references a user who is not a member of the group",
			Errors:  []fieldError{{Field: "userId", Message: unknown.MemberID}},
		})
	case errors.Is(err, calculator.ErrTotalOverflow):
		writeJSON(w, http.StatusUnprocessableEntity, envelope{Message: "ledger totals are too large to compute"})
	case errors.As(err, &invariant):
		slog.Error("Settlement invariant violated", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, envelope{Message: "failed to compute settlements"})
	default:
		slog.Error("Request failed", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, envelope{Message: "internal server error"})
	}
}

// unauthorized is the middleware.UnauthorizedFunc for the REST API.
func unauthorized(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, err)
}

// decodeJSON reads a request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return &service.ValidationError{Fields: []service.FieldError{{Field: "body", Message: "must be a valid JSON object"}}}
	}
	return nil
}
