package httpserver

import (
	"net/http"

	appauth "github.com/rumera-ai/rumera/internal/application/auth"
	"github.com/rumera-ai/rumera/internal/domain/user"
	"github.com/rumera-ai/rumera/internal/middleware"
)

type authResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Token   string      `json:"token"`
	User    user.Public `json:"user"`
}

func writeSession(w http.ResponseWriter, status int, s *appauth.Session) error {
	return writeJSON(w, status, authResponse{
		Success: true,
		Message: s.Message,
		Token:   s.Token,
		User:    s.User,
	})
}

// POST /api/auth/signup
func (rt *Router) handleSignup(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, req, &body); err != nil {
		return err
	}
	s, err := rt.auth.Signup(req.Context(),
		middleware.SanitizeString(body.Name),
		middleware.SanitizeString(body.Email),
		body.Password,
	)
	if err != nil {
		return err
	}
	return writeSession(w, http.StatusCreated, s)
}

// POST /api/auth/login
func (rt *Router) handleLogin(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, req, &body); err != nil {
		return err
	}
	s, err := rt.auth.Login(req.Context(), middleware.SanitizeString(body.Email), body.Password)
	if err != nil {
		return err
	}
	return writeSession(w, http.StatusOK, s)
}

// GET /api/auth/me
func (rt *Router) handleMe(w http.ResponseWriter, req *http.Request) error {
	u, err := requireUser(req)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    u,
	})
}
