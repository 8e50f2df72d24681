// Package auth implements signup, login and token verification.
//
// Demo mode is opt-in: when enabled and the user store is missing or
// unreachable, accounts are synthesized and tokens are trusted on their own.
// When disabled, the same situation is reported as ErrStoreUnavailable.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rumera-ai/rumera/internal/application"
	"github.com/rumera-ai/rumera/internal/domain/user"
)

const (
	TokenTTL     = 7 * 24 * time.Hour
	DemoSecret   = "demo_secret_key"
	DemoMessage  = "Demo mode - analysis features available"
	demoUserName = "Demo User"
)

// ErrInvalidInput marks missing or malformed signup/login fields.
var ErrInvalidInput = errors.New("invalid auth input")

// Claims carried in every token.
type Claims struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// Session is the outcome of signup or login.
type Session struct {
	Token   string      `json:"token"`
	User    user.Public `json:"user"`
	Message string      `json:"message,omitempty"`
	Demo    bool        `json:"-"`
}

type Config struct {
	Secret   string
	DemoMode bool
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

type Service struct {
	users  user.Repository
	cfg    Config
	clock  application.Clock
	logger *zap.Logger
}

// NewService accepts a nil repository; then every call needs demo mode.
func NewService(users user.Repository, cfg Config, clock application.Clock, logger *zap.Logger) (*Service, error) {
	if cfg.Secret == "" {
		if !cfg.DemoMode {
			return nil, errors.New("jwt secret is required unless demo mode is enabled")
		}
		cfg.Secret = DemoSecret
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if clock == nil {
		clock = application.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{users: users, cfg: cfg, clock: clock, logger: logger}, nil
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}

// storeDown reports whether err means the user store cannot be used.
func (s *Service) storeDown(err error) bool {
	return errors.Is(err, user.ErrStoreUnavailable)
}

func (s *Service) hasStore() bool { return s.users != nil }

// Signup registers a new user and returns a session.
func (s *Service) Signup(ctx context.Context, name, email, password string) (*Session, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, invalid("Please provide all required fields")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, invalid("Please provide a valid email")
	}

	if !s.hasStore() {
		return s.demoSession(name, email, "signup", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &user.User{
		ID:           user.ID(uuid.NewString()),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.clock.Now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		switch {
		case errors.Is(err, user.ErrAlreadyExists):
			return nil, user.ErrAlreadyExists
		case s.storeDown(err):
			return s.demoSession(name, email, "signup", err)
		}
		return nil, err
	}
	return s.session(u, false, "User created successfully")
}

// Login checks credentials. Unknown email and wrong password look the same.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, invalid("Please provide email and password")
	}

	if !s.hasStore() {
		return s.demoSession(localPart(email), email, "login", nil)
	}

	u, err := s.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, user.ErrNotFound):
		return nil, user.ErrInvalidCredentials
	case s.storeDown(err):
		return s.demoSession(localPart(email), email, "login", err)
	case err != nil:
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, user.ErrInvalidCredentials
	}
	return s.session(u, false, "Login successful")
}

// Authenticate verifies a bearer token and resolves the user.
func (s *Service) Authenticate(ctx context.Context, token string) (*user.Public, error) {
	claims, err := s.Verify(token)
	if err != nil {
		return nil, err
	}
	fromClaims := &user.Public{ID: user.ID(claims.ID), Name: claims.Name, Email: claims.Email}
	if fromClaims.Name == "" {
		fromClaims.Name = demoUserName
	}

	if !s.hasStore() {
		if s.cfg.DemoMode {
			return fromClaims, nil
		}
		return nil, user.ErrStoreUnavailable
	}

	u, err := s.users.GetByID(ctx, user.ID(claims.ID))
	switch {
	case err == nil:
		p := u.Public()
		return &p, nil
	case errors.Is(err, user.ErrNotFound), s.storeDown(err):
		if s.cfg.DemoMode {
			s.logger.Warn("demo mode: trusting token claims",
				zap.String("user_id", claims.ID),
				zap.NamedError("lookup_error", err),
			)
			return fromClaims, nil
		}
		if errors.Is(err, user.ErrNotFound) {
			return nil, user.ErrUnauthorized
		}
		return nil, err
	default:
		return nil, err
	}
}

// Verify checks signature, algorithm and expiry.
func (s *Service) Verify(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, user.ErrUnauthorized
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) { return []byte(s.cfg.Secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil || !parsed.Valid || claims.ID == "" {
		return nil, user.ErrUnauthorized
	}
	return claims, nil
}

// Issue signs a token for u.
func (s *Service) Issue(u user.Public) (string, error) {
	now := s.clock.Now()
	claims := Claims{
		ID:    string(u.ID),
		Email: u.Email,
		Name:  u.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *Service) session(u *user.User, demo bool, message string) (*Session, error) {
	token, err := s.Issue(u.Public())
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: u.Public(), Message: message, Demo: demo}, nil
}

// demoSession synthesizes an account when the store cannot be used. Without
// demo mode the outage is returned as ErrStoreUnavailable.
func (s *Service) demoSession(name, email, op string, cause error) (*Session, error) {
	if !s.cfg.DemoMode {
		if cause == nil {
			cause = user.ErrStoreUnavailable
		}
		return nil, cause
	}
	id := fmt.Sprintf("demo_%d", s.clock.Now().UnixMilli())
	s.logger.Warn("demo mode: issuing unpersisted account",
		zap.String("op", op),
		zap.String("user_id", id),
		zap.NamedError("cause", cause),
	)
	return s.session(&user.User{ID: user.ID(id), Name: name, Email: email}, true, DemoMessage)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func localPart(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}
