package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	appauth "github.com/rumera-ai/rumera/internal/application/auth"
	"github.com/rumera-ai/rumera/internal/application/models"
	"github.com/rumera-ai/rumera/internal/domain/analysis"
	"github.com/rumera-ai/rumera/internal/domain/history"
	"github.com/rumera-ai/rumera/internal/domain/inference"
	"github.com/rumera-ai/rumera/internal/domain/user"
	"github.com/rumera-ai/rumera/internal/middleware"
)

// Analyzer is the analysis use-case surface the handlers call.
type Analyzer interface {
	AnalyzeText(ctx context.Context, p analysis.Principal, text string) (*analysis.TextResult, error)
	AnalyzeImage(ctx context.Context, p analysis.Principal, in analysis.ImageInput) (*analysis.ImageResult, error)
	AnalyzeAudioTranscript(ctx context.Context, p analysis.Principal, transcript, filename string) (*analysis.AudioResult, error)
	AnalyzeAudioFile(ctx context.Context, p analysis.Principal, in analysis.AudioInput) (*analysis.AudioResult, error)
	AnalyzeVideo(ctx context.Context, p analysis.Principal, in analysis.VideoInput) (*analysis.VideoResult, error)
	Explain(ctx context.Context, modality string, results json.RawMessage) (analysis.Explanation, error)
	History(ctx context.Context, userID string, page, pageSize int) (*history.Page, error)
	DeleteHistory(ctx context.Context, userID string, id history.EntryID) error
}

// Accounts is the auth use-case surface.
type Accounts interface {
	middleware.Authenticator
	Signup(ctx context.Context, name, email, password string) (*appauth.Session, error)
	Login(ctx context.Context, email, password string) (*appauth.Session, error)
}

// ModelCatalog reports pipeline state for /analyze/health.
type ModelCatalog interface {
	Initialize(ctx context.Context) map[inference.Modality]inference.Status
	Describe(m inference.Modality) models.Info
}

// Deps wires the router. Metrics, Checkers and Limiter are optional.
type Deps struct {
	Analysis    Analyzer
	Auth        Accounts
	Models      ModelCatalog
	Metrics     *middleware.Metrics
	Checkers    map[string]middleware.HealthChecker
	Limiter     *middleware.RateLimiter
	CORSOrigins []string
	Logger      *zap.Logger
	// HealthTimeout bounds the eager model initialization of /analyze/health.
	HealthTimeout time.Duration
}

type Router struct {
	analysis      Analyzer
	auth          Accounts
	models        ModelCatalog
	logger        *zap.Logger
	healthTimeout time.Duration
}

func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Metrics == nil {
		d.Metrics = middleware.NewMetrics()
	}
	if d.HealthTimeout <= 0 {
		d.HealthTimeout = 2 * time.Minute
	}
	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	rt := &Router{
		analysis:      d.Analysis,
		auth:          d.Auth,
		models:        d.Models,
		logger:        d.Logger,
		healthTimeout: d.HealthTimeout,
	}

	mux := chi.NewRouter()
	mux.Use(chimw.RequestID)
	mux.Use(chimw.RealIP)
	mux.Use(middleware.Logging(d.Logger))
	mux.Use(chimw.Recoverer)
	mux.Use(d.Metrics.Middleware)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusNotFound, "Route not found")
	})
	mux.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	mux.Get("/health", middleware.HealthHandler(d.Checkers))
	mux.Get("/livez", middleware.LivenessHandler)
	mux.Get("/readyz", middleware.ReadinessHandler(d.Checkers))
	mux.Get("/metrics", d.Metrics.Handler)

	mux.Route("/analyze", func(r chi.Router) {
		r.Get("/health", rt.wrap(rt.handleModelHealth))

		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(d.Auth))
			if d.Limiter != nil {
				r.Use(middleware.RateLimit(d.Limiter))
			}
			r.Post("/text", rt.wrap(rt.handleText))
			r.Post("/image", rt.wrap(rt.handleImage))
			r.Post("/audio", rt.wrap(rt.handleAudio))
			r.Post("/video", rt.wrap(rt.handleVideo))
			r.Post("/explain", rt.wrap(rt.handleExplain))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(d.Auth, d.Logger))
			r.Get("/history", rt.wrap(rt.handleHistory))
			r.Delete("/history/{id}", rt.wrap(rt.handleDeleteHistory))
		})
	})

	mux.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", rt.wrap(rt.handleSignup))
		r.Post("/login", rt.wrap(rt.handleLogin))
		r.With(middleware.RequireAuth(d.Auth, d.Logger)).Get("/me", rt.wrap(rt.handleMe))
	})

	return mux
}

// requireUser is only reached behind RequireAuth.
func requireUser(r *http.Request) (*user.Public, error) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		return nil, user.ErrUnauthorized
	}
	return u, nil
}
