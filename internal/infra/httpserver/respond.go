package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	appauth "github.com/rumera-ai/rumera/internal/application/auth"
	"github.com/rumera-ai/rumera/internal/domain/analysis"
	"github.com/rumera-ai/rumera/internal/domain/history"
	"github.com/rumera-ai/rumera/internal/domain/user"
	"github.com/rumera-ai/rumera/internal/middleware"
)

// envelope is the uniform response body.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// httpError carries a status and client message out of a handler.
type httpError struct {
	status int
	msg    string
}

func (e *httpError) Error() string { return e.msg }

func badRequest(msg string) error { return &httpError{status: http.StatusBadRequest, msg: msg} }

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func ok(w http.ResponseWriter, data any) error {
	return writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

// wrap maps handler errors onto status codes.
func (rt *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		status, msg := rt.classify(err)
		if status >= 500 {
			rt.logger.Error("request failed",
				zap.String("path", req.URL.Path),
				zap.Int("status", status),
				zap.Error(err),
			)
		}
		middleware.WriteError(w, status, msg)
	}
}

func (rt *Router) classify(err error) (int, string) {
	var he *httpError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &he):
		return he.status, he.msg
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "File too large"
	case errors.Is(err, analysis.ErrInvalidInput):
		return http.StatusBadRequest, clientMessage(err, analysis.ErrInvalidInput)
	case errors.Is(err, appauth.ErrInvalidInput):
		return http.StatusBadRequest, clientMessage(err, appauth.ErrInvalidInput)
	case errors.Is(err, analysis.ErrUnsupportedMedia):
		return http.StatusBadRequest, clientMessage(err, analysis.ErrUnsupportedMedia)
	case errors.Is(err, user.ErrAlreadyExists):
		return http.StatusBadRequest, "User already exists"
	case errors.Is(err, user.ErrInvalidCredentials):
		return http.StatusBadRequest, "Invalid credentials"
	case errors.Is(err, user.ErrUnauthorized):
		return http.StatusUnauthorized, middleware.NotAuthorized
	case errors.Is(err, analysis.ErrQuotaExceeded):
		return http.StatusTooManyRequests, "Daily analysis quota exceeded"
	case errors.Is(err, history.ErrNotFound):
		return http.StatusNotFound, "History entry not found"
	case errors.Is(err, user.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "User store unavailable"
	case errors.Is(err, analysis.ErrHistoryUnavailable), errors.Is(err, history.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "Analysis history unavailable"
	default:
		return http.StatusInternalServerError, "Server error"
	}
}

// clientMessage strips the sentinel prefix added by "%w: msg" wrapping.
func clientMessage(err, sentinel error) string {
	msg := strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
	if msg == sentinel.Error() {
		return "Invalid request"
	}
	return msg
}
