package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/yourorg/campusportal/internal/domain"
)

// ErrorResponse is the JSON body every failure returns
type ErrorResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Message: msg})
}

// writeError converts a domain error into the matching HTTP response. Every
// failure path funnels through here so nothing escapes unconverted.
func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		writeMessage(w, http.StatusUnauthorized, userMessage(err))
	case errors.Is(err, domain.ErrForbidden):
		writeMessage(w, http.StatusForbidden, userMessage(err))
	case errors.Is(err, domain.ErrNotFound):
		writeMessage(w, http.StatusNotFound, userMessage(err))
	case errors.Is(err, domain.ErrConflict):
		writeMessage(w, http.StatusBadRequest, userMessage(err))
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidTransition):
		writeMessage(w, http.StatusBadRequest, userMessage(err))
	default:
		if log != nil {
			log.Error("internal error", slog.String("error", err.Error()))
		}
		writeMessage(w, http.StatusInternalServerError, "Something went wrong!")
	}
}

// userMessage strips the wrapped sentinel suffix ("...: not found") so the
// response reads naturally.
func userMessage(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{
		domain.ErrUnauthorized,
		domain.ErrForbidden,
		domain.ErrNotFound,
		domain.ErrConflict,
		domain.ErrInvalidInput,
		domain.ErrInvalidTransition,
	} {
		suffix := ": " + sentinel.Error()
		if len(msg) > len(suffix) && msg[len(msg)-len(suffix):] == suffix {
			return msg[:len(msg)-len(suffix)]
		}
	}
	return msg
}
