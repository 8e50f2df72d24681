// Package analysis implements the per-modality analyzers. Every analyzer
// degrades to a fallback result instead of failing when a model is missing;
// only invalid input and exhausted quota surface as errors.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rumera-ai/rumera/internal/application"
	domain "github.com/rumera-ai/rumera/internal/domain/analysis"
	"github.com/rumera-ai/rumera/internal/domain/history"
)

// Service is safe for concurrent use. Archive, Quota, Records and Metrics are optional.
type Service struct {
	Pipelines domain.PipelineSource
	LLM       domain.LanguageModel
	OCR       domain.OCR
	Inspector domain.ImageInspector
	Archive   domain.ArchiveStore
	Quota     domain.QuotaLimiter
	Records   history.Repository
	Metrics   domain.Recorder
	Clock     application.Clock
	Logger    *zap.Logger
}

func (s *Service) log() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, msg)
}

// consume takes one quota unit. A broken limiter lets the request through.
func (s *Service) consume(ctx context.Context, p domain.Principal) error {
	if s.Quota == nil {
		return nil
	}
	ok, err := s.Quota.Consume(ctx, p.Key())
	if err != nil {
		s.log().Warn("quota check failed, allowing request", zap.String("principal", p.Key()), zap.Error(err))
		return nil
	}
	if !ok {
		return domain.ErrQuotaExceeded
	}
	return nil
}

// archive stores uploaded bytes and returns their URL, or "" when archiving
// is off or failed.
func (s *Service) archive(ctx context.Context, m domain.Modality, filename, contentType string, data []byte) string {
	if s.Archive == nil || len(data) == 0 {
		return ""
	}
	key := fmt.Sprintf("%s/%s/%s%s", m, s.now().Format("2006/01/02"), uuid.NewString(), strings.ToLower(filepath.Ext(filename)))
	url, err := s.Archive.Put(ctx, key, contentType, data)
	if err != nil {
		s.log().Warn("archive upload failed", zap.String("key", key), zap.Error(err))
		return ""
	}
	return url
}

type recordArgs struct {
	modality       domain.Modality
	trustScore     int
	classification string
	summary        string
	archiveURL     string
	fallback       bool
	result         any
}

// record updates metrics and, for signed-in users, appends a history entry.
// History failures are logged only.
func (s *Service) record(ctx context.Context, p domain.Principal, a recordArgs) {
	if s.Metrics != nil {
		s.Metrics.RecordAnalysis(a.modality, a.fallback)
	}
	if s.Records == nil || p.UserID == "" {
		return
	}
	raw, err := json.Marshal(a.result)
	if err != nil {
		s.log().Warn("history encode failed", zap.Error(err))
		return
	}
	e := &history.Entry{
		ID:             history.EntryID(uuid.NewString()),
		UserID:         p.UserID,
		Modality:       string(a.modality),
		TrustScore:     a.trustScore,
		Classification: a.classification,
		Summary:        firstRunes(a.summary, 120),
		ArchiveURL:     a.archiveURL,
		Result:         string(raw),
		CreatedAt:      s.now(),
	}
	if err := s.Records.Save(context.WithoutCancel(ctx), e); err != nil {
		s.log().Warn("history save failed", zap.String("user_id", p.UserID), zap.Error(err))
	}
}

// firstRunes returns at most n runes of s.
func firstRunes(s string, n int) string {
	out, _ := truncateRunes(s, n)
	return out
}

func truncateRunes(s string, n int) (string, bool) {
	if n <= 0 {
		return "", s != ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i], true
		}
		count++
	}
	return s, false
}
