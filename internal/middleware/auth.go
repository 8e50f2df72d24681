package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/rumera-ai/rumera/internal/domain/analysis"
	"github.com/rumera-ai/rumera/internal/domain/user"
)

type contextKey string

const userKey contextKey = "user"

// NotAuthorized is the message returned for every rejected token.
const NotAuthorized = "Not authorized to access this route"

// Authenticator resolves a bearer token into a user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*user.Public, error)
}

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(a Authenticator, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				WriteError(w, http.StatusUnauthorized, NotAuthorized)
				return
			}
			u, err := a.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, user.ErrStoreUnavailable) {
					logger.Warn("auth lookup failed", zap.Error(err))
					WriteError(w, http.StatusServiceUnavailable, "User store unavailable")
					return
				}
				logger.Debug("token rejected", zap.Error(err))
				WriteError(w, http.StatusUnauthorized, NotAuthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

// OptionalAuth attaches the user when a valid token is present and lets
// anonymous requests through. A bad token is treated as anonymous.
func OptionalAuth(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := bearerToken(r); token != "" {
				if u, err := a.Authenticate(r.Context(), token); err == nil {
					r = r.WithContext(WithUser(r.Context(), u))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithUser stores the authenticated user in ctx.
func WithUser(ctx context.Context, u *user.Public) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (*user.Public, bool) {
	u, ok := ctx.Value(userKey).(*user.Public)
	return u, ok && u != nil
}

// PrincipalFromRequest identifies the caller for quota and history.
func PrincipalFromRequest(r *http.Request) analysis.Principal {
	p := analysis.Principal{ClientIP: ClientIP(r)}
	if u, ok := UserFromContext(r.Context()); ok {
		p.UserID = string(u.ID)
	}
	return p
}

// ClientIP strips the port from RemoteAddr (already rewritten by RealIP).
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// WriteError writes the failure envelope used across the API.
func WriteError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": msg,
	})
}
