package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Binusha25Liyanage/MoneyMate/internal/auth"
	applog "github.com/Binusha25Liyanage/MoneyMate/internal/log"
	"github.com/Binusha25Liyanage/MoneyMate/internal/reports"
)

// Envelope is the body of every report response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func Success(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

func Failure(message string, err error) Envelope {
	e := Envelope{Message: message}
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// StatusFor maps a report error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, reports.ErrInvalidPeriod), errors.Is(err, ErrBadParameter):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to encode response", applog.FieldError, err)
	}
}

func (s *Server) unauthorized(w http.ResponseWriter, r *http.Request, err error) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Unauthenticated request",
		applog.FieldPath, r.URL.Path,
		applog.FieldError, err)
	writeJSON(w, r, http.StatusUnauthorized, Failure("Authentication required", err))
}

func (s *Server) rateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldPath, r.URL.Path)
	writeJSON(w, r, http.StatusTooManyRequests, Failure("Rate limit exceeded. Please try again later.", nil))
}
