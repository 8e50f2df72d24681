package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"readTimeout"`
		WriteTimeout    time.Duration `yaml:"writeTimeout"`
		IdleTimeout     time.Duration `yaml:"idleTimeout"`
		ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
		CORSOrigins     []string      `yaml:"corsOrigins"`
	} `yaml:"server"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	// Database is optional; without it auth runs only in demo mode and no
	// history is kept.
	Database struct {
		Driver   string `yaml:"driver"` // mysql | postgres
		DSN      string `yaml:"dsn"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
	} `yaml:"database"`

	Auth struct {
		JWTSecret  string `yaml:"jwtSecret"`
		DemoMode   bool   `yaml:"demoMode"`
		BcryptCost int    `yaml:"bcryptCost"`
	} `yaml:"auth"`

	LLM struct {
		GroqAPIKey   string        `yaml:"groqApiKey"`
		GroqBaseURL  string        `yaml:"groqBaseUrl"`
		GroqModel    string        `yaml:"groqModel"`
		GeminiAPIKey string        `yaml:"geminiApiKey"`
		GeminiModel  string        `yaml:"geminiModel"`
		MaxRetries   int           `yaml:"maxRetries"`
		RetryDelay   time.Duration `yaml:"retryDelay"`
		Timeout      time.Duration `yaml:"timeout"`
	} `yaml:"llm"`

	Inference struct {
		Enabled     bool              `yaml:"enabled"`
		Endpoint    string            `yaml:"endpoint"`
		Token       string            `yaml:"token"`
		Timeout     time.Duration     `yaml:"timeout"`
		LoadTimeout time.Duration     `yaml:"loadTimeout"`
		OCRModel    string            `yaml:"ocrModel"`
		Models      map[string]string `yaml:"models"` // modality -> model id override
	} `yaml:"inference"`

	Redis struct {
		Addr       string `yaml:"addr"`
		Password   string `yaml:"password"`
		DB         int    `yaml:"db"`
		DailyQuota int    `yaml:"dailyQuota"`
	} `yaml:"redis"`

	Minio struct {
		Endpoint   string        `yaml:"endpoint"`
		AccessKey  string        `yaml:"accessKey"`
		SecretKey  string        `yaml:"secretKey"`
		BucketName string        `yaml:"bucketName"`
		Region     string        `yaml:"region"`
		UseSSL     bool          `yaml:"useSSL"`
		PresignTTL time.Duration `yaml:"presignTTL"`
	} `yaml:"minio"`

	RateLimit struct {
		Capacity        int `yaml:"capacity"`
		RefillPerSecond int `yaml:"refillPerSecond"`
	} `yaml:"rateLimit"`
}

// Default returns the configuration used for every key the file omits.
func Default() *Config {
	var c Config
	c.Server.Port = 5001
	c.Server.ReadTimeout = 3 * time.Minute
	c.Server.WriteTimeout = 5 * time.Minute
	c.Server.IdleTimeout = 65 * time.Second
	c.Server.ShutdownTimeout = 15 * time.Second
	c.Log.Level = "info"
	c.Database.Driver = "mysql"
	c.LLM.GroqBaseURL = "https://api.groq.com/openai/v1"
	c.LLM.GroqModel = "llama-3.1-8b-instant"
	c.LLM.GeminiModel = "gemini-2.0-flash"
	c.LLM.RetryDelay = 500 * time.Millisecond
	c.LLM.Timeout = 90 * time.Second
	c.Inference.Enabled = true
	c.Inference.Endpoint = "https://router.huggingface.co/hf-inference/models"
	c.Inference.Timeout = 2 * time.Minute
	c.Inference.LoadTimeout = time.Minute
	c.Inference.OCRModel = "microsoft/trocr-base-printed"
	c.Minio.BucketName = "rumera-uploads"
	c.Minio.Region = "us-east-1"
	c.RateLimit.Capacity = 30
	c.RateLimit.RefillPerSecond = 1
	return &c
}

// LoadDotEnv loads the given .env files when they exist. Variables already
// set in the environment win.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load baca file config.yaml (optional), lalu override dari environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	str("DATABASE_DRIVER", &c.Database.Driver)
	str("DATABASE_DSN", &c.Database.DSN)
	str("JWT_SECRET", &c.Auth.JWTSecret)
	str("GROQ_API_KEY", &c.LLM.GroqAPIKey)
	str("GEMINI_API_KEY", &c.LLM.GeminiAPIKey)
	str("HF_API_TOKEN", &c.Inference.Token)
	str("REDIS_ADDR", &c.Redis.Addr)
	str("REDIS_PASSWORD", &c.Redis.Password)
	str("MINIO_ENDPOINT", &c.Minio.Endpoint)
	str("MINIO_ACCESS_KEY", &c.Minio.AccessKey)
	str("MINIO_SECRET_KEY", &c.Minio.SecretKey)
	str("LOG_LEVEL", &c.Log.Level)

	if v, ok := os.LookupEnv("PORT"); ok {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v, ok := os.LookupEnv("AUTH_DEMO_MODE"); ok {
		demo, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("AUTH_DEMO_MODE: %w", err)
		}
		c.Auth.DemoMode = demo
	}
	if v, ok := os.LookupEnv("CORS_ORIGIN"); ok {
		c.Server.CORSOrigins = splitList(v)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate rejects configurations the process cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	switch c.Database.Driver {
	case "mysql", "postgres":
	default:
		errs = append(errs, fmt.Errorf("database.driver %q: want mysql or postgres", c.Database.Driver))
	}
	if c.Auth.JWTSecret == "" && !c.Auth.DemoMode {
		errs = append(errs, errors.New("JWT_SECRET is required unless AUTH_DEMO_MODE is enabled"))
	}
	if c.LLM.MaxRetries < 0 {
		errs = append(errs, errors.New("llm.maxRetries must not be negative"))
	}
	if c.Inference.Enabled {
		if _, err := url.ParseRequestURI(c.Inference.Endpoint); err != nil {
			errs = append(errs, fmt.Errorf("inference.endpoint: %w", err))
		}
	}
	if c.Minio.Endpoint != "" && (c.Minio.AccessKey == "" || c.Minio.SecretKey == "") {
		errs = append(errs, errors.New("minio credentials are required when minio.endpoint is set"))
	}
	if c.RateLimit.Capacity < 0 || c.RateLimit.RefillPerSecond < 0 {
		errs = append(errs, errors.New("rateLimit values must not be negative"))
	}
	return errors.Join(errs...)
}

// DatabaseDSN returns the explicit DSN, or builds one from host fields.
// Empty means no database is configured.
func (c *Config) DatabaseDSN() string {
	if c.Database.DSN != "" {
		return c.Database.DSN
	}
	if c.Database.Host == "" {
		return ""
	}
	if c.Database.Driver == "postgres" {
		return c.PostgresDSN()
	}
	return c.MySQLDSN()
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.dbPort(3306),
		c.Database.Name,
	)
}

func (c *Config) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     fmt.Sprintf("%s:%d", c.Database.Host, c.dbPort(5432)),
		Path:     "/" + c.Database.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

func (c *Config) dbPort(def int) int {
	if c.Database.Port > 0 {
		return c.Database.Port
	}
	return def
}
