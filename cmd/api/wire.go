package main

import (
	"context"
	"database/sql"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rumera-ai/rumera/internal/application"
	appai "github.com/rumera-ai/rumera/internal/application/ai"
	appauth "github.com/rumera-ai/rumera/internal/application/auth"
	"github.com/rumera-ai/rumera/internal/config"
	"github.com/rumera-ai/rumera/internal/domain/ai"
	"github.com/rumera-ai/rumera/internal/domain/history"
	"github.com/rumera-ai/rumera/internal/domain/user"
	"github.com/rumera-ai/rumera/internal/infra/ai/gemini"
	"github.com/rumera-ai/rumera/internal/infra/ai/openai"
	mysqlp "github.com/rumera-ai/rumera/internal/infra/db/mysql"
	"github.com/rumera-ai/rumera/internal/infra/db/postgres"
	"github.com/rumera-ai/rumera/internal/infra/quota"
	minioStore "github.com/rumera-ai/rumera/internal/infra/storage"
)

const connectTimeout = 5 * time.Second

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

type stores struct {
	db      *sql.DB
	users   user.Repository
	history history.Repository
}

// openStores connects the optional SQL database. Any failure leaves the
// process running without persistence.
func openStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (stores, func()) {
	dsn := cfg.DatabaseDSN()
	if dsn == "" {
		logger.Warn("no database configured: auth needs demo mode, history disabled")
		return stores{}, func() {}
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	var (
		db  *sql.DB
		err error
	)
	switch cfg.Database.Driver {
	case "postgres":
		db, err = postgres.Connect(ctx, dsn)
		if err == nil {
			err = postgres.EnsureSchema(ctx, db)
		}
	default:
		db, err = mysqlp.Connect(ctx, dsn)
		if err == nil {
			err = mysqlp.EnsureSchema(ctx, db)
		}
	}
	if err != nil {
		logger.Warn("database unavailable, continuing without persistence",
			zap.String("driver", cfg.Database.Driver),
			zap.Error(err),
		)
		if db != nil {
			_ = db.Close()
		}
		return stores{}, func() {}
	}

	s := stores{db: db}
	if cfg.Database.Driver == "postgres" {
		s.users = postgres.NewUserRepository(db)
		s.history = postgres.NewHistoryRepository(db)
	} else {
		s.users = mysqlp.NewUserRepository(db)
		s.history = mysqlp.NewHistoryRepository(db)
	}
	logger.Info("database connected", zap.String("driver", cfg.Database.Driver))
	return s, func() { _ = db.Close() }
}

func openQuota(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*quota.RedisLimiter, func()) {
	if cfg.Redis.Addr == "" {
		return nil, func() {}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	limiter := quota.NewRedisLimiter(client, cfg.Redis.DailyQuota)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := limiter.Ping(pingCtx); err != nil {
		// the limiter fails open, so keep it wired; it recovers with redis
		logger.Warn("redis unreachable at startup", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}
	return limiter, func() { _ = client.Close() }
}

func openArchive(ctx context.Context, cfg *config.Config, logger *zap.Logger) *minioStore.Store {
	if cfg.Minio.Endpoint == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	store, err := minioStore.New(ctx, minioStore.Config{
		Endpoint:   cfg.Minio.Endpoint,
		Region:     cfg.Minio.Region,
		Bucket:     cfg.Minio.BucketName,
		AccessKey:  cfg.Minio.AccessKey,
		SecretKey:  cfg.Minio.SecretKey,
		UseSSL:     cfg.Minio.UseSSL,
		PresignTTL: cfg.Minio.PresignTTL,
	})
	if err != nil {
		logger.Warn("minio init error, uploads will not be archived", zap.Error(err))
		return nil
	}
	return store
}

// newLLM returns nil when no hosted provider is configured.
func newLLM(ctx context.Context, cfg *config.Config, logger *zap.Logger) *appai.Service {
	var clients []ai.Client
	if cfg.LLM.GroqAPIKey != "" {
		clients = append(clients, openai.NewClient(cfg.LLM.GroqAPIKey, cfg.LLM.GroqBaseURL, cfg.LLM.GroqModel))
	}
	if cfg.LLM.GeminiAPIKey != "" {
		g, err := gemini.NewClient(ctx, cfg.LLM.GeminiAPIKey, cfg.LLM.GeminiModel)
		if err != nil {
			logger.Warn("gemini client init error", zap.Error(err))
		} else {
			clients = append(clients, g)
		}
	}
	svc := appai.NewService(clients,
		appai.WithRetries(cfg.LLM.MaxRetries, cfg.LLM.RetryDelay),
		appai.WithTimeout(cfg.LLM.Timeout),
		appai.WithLogger(logger),
	)
	if !svc.Configured() {
		logger.Info("no hosted LLM configured: using local models only")
		return nil
	}
	logger.Info("hosted LLM providers", zap.Strings("providers", svc.Providers()))
	return svc
}

func newAuth(cfg *config.Config, s stores, clock application.Clock, logger *zap.Logger) (*appauth.Service, error) {
	return appauth.NewService(s.users, appauth.Config{
		Secret:     cfg.Auth.JWTSecret,
		DemoMode:   cfg.Auth.DemoMode,
		BcryptCost: cfg.Auth.BcryptCost,
	}, clock, logger)
}
