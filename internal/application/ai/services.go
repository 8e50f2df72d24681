package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rumera-ai/rumera/internal/domain/ai"
)

// Service sends completions to the configured providers in order. The first
// provider is retried on transient errors; the rest are tried once each.
type Service struct {
	providers  []ai.Client
	maxRetries int
	baseDelay  time.Duration
	timeout    time.Duration
	logger     *zap.Logger
}

type Option func(*Service)

func WithRetries(n int, baseDelay time.Duration) Option {
	return func(s *Service) {
		s.maxRetries = n
		s.baseDelay = baseDelay
	}
}

// WithTimeout caps one Complete call across all providers.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService drops nil clients; a Service without providers reports ErrNotConfigured.
func NewService(clients []ai.Client, opts ...Option) *Service {
	s := &Service{
		baseDelay: 500 * time.Millisecond,
		timeout:   90 * time.Second,
		logger:    zap.NewNop(),
	}
	for _, c := range clients {
		if c != nil {
			s.providers = append(s.providers, c)
		}
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Configured reports whether any hosted model is available.
func (s *Service) Configured() bool {
	return s != nil && len(s.providers) > 0
}

// Providers lists provider names in call order.
func (s *Service) Providers() []string {
	names := make([]string, 0, len(s.providers))
	for _, p := range s.providers {
		names = append(names, p.Name())
	}
	return names
}

// CompleteJSON returns the name of the provider whose reply decoded into out.
// A reply without a JSON object counts as a provider failure. out is only
// written once a reply decodes cleanly, so a rejected reply never leaks into it.
func (s *Service) CompleteJSON(ctx context.Context, req ai.Request, out any) (string, error) {
	if !s.Configured() {
		return "", ai.ErrNotConfigured
	}
	dst := reflect.ValueOf(out)
	if dst.Kind() != reflect.Pointer || dst.IsNil() {
		return "", fmt.Errorf("ai: CompleteJSON needs a non-nil pointer, got %T", out)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var errs []error
	for i, p := range s.providers {
		retries := 0
		if i == 0 {
			retries = s.maxRetries
		}
		text, err := s.completeWithRetry(ctx, p, req, retries)
		if err == nil {
			fresh := reflect.New(dst.Elem().Type())
			if err = DecodeJSON(text, fresh.Interface()); err == nil {
				dst.Elem().Set(fresh.Elem())
				return p.Name(), nil
			}
		}
		s.logger.Warn("ai provider failed",
			zap.String("provider", p.Name()),
			zap.Int("position", i),
			zap.Error(err),
		)
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
		if ctx.Err() != nil {
			break
		}
	}
	return "", errors.Join(errs...)
}

func (s *Service) completeWithRetry(ctx context.Context, p ai.Client, req ai.Request, retries int) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		text, err := p.Complete(ctx, req)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !isRetryable(err) || attempt == retries {
			break
		}
		select {
		case <-time.After(s.backoff(attempt)):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "", lastErr
}

func isRetryable(err error) bool {
	return errors.Is(err, ai.ErrQuotaExceeded) || errors.Is(err, ai.ErrProviderUnavailable)
}

func (s *Service) backoff(attempt int) time.Duration {
	b := float64(s.baseDelay) * float64(int(1)<<attempt)
	jitter := (rand.Float64() * 0.2) * b
	return time.Duration(b + jitter)
}

// ExtractJSON returns the outermost {...} block of a model reply. Models often
// wrap JSON in prose or code fences.
func ExtractJSON(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", ai.ErrMalformedResponse
	}
	return text[start : end+1], nil
}

// DecodeJSON extracts and unmarshals the JSON object in text into out.
func DecodeJSON(text string, out any) error {
	raw, err := ExtractJSON(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("%w: %v", ai.ErrMalformedResponse, err)
	}
	return nil
}
