package middleware

import (
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/rumera-ai/rumera/internal/domain/analysis"
)

type analysisCounters struct {
	total     atomic.Uint64
	fallbacks atomic.Uint64
}

// Metrics stores application metrics. The zero value is not usable; call NewMetrics.
type Metrics struct {
	requestsTotal      atomic.Uint64
	requestsInProgress atomic.Int64
	requestsSuccess    atomic.Uint64
	requestsFailed     atomic.Uint64

	analyses  map[analysis.Modality]*analysisCounters
	startTime time.Time
}

func NewMetrics() *Metrics {
	m := &Metrics{
		analyses:  make(map[analysis.Modality]*analysisCounters),
		startTime: time.Now(),
	}
	for _, mod := range []analysis.Modality{
		analysis.ModalityText, analysis.ModalityImage, analysis.ModalityAudio, analysis.ModalityVideo,
	} {
		m.analyses[mod] = &analysisCounters{}
	}
	return m
}

// RecordAnalysis counts one completed analysis. Unknown modalities are ignored.
func (m *Metrics) RecordAnalysis(modality analysis.Modality, fallback bool) {
	c, ok := m.analyses[modality]
	if !ok {
		return
	}
	c.total.Add(1)
	if fallback {
		c.fallbacks.Add(1)
	}
}

// Snapshot returns current metrics
func (m *Metrics) Snapshot() map[string]any {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	analyses := make(map[string]any, len(m.analyses))
	for mod, c := range m.analyses {
		analyses[string(mod)] = map[string]uint64{
			"total":     c.total.Load(),
			"fallbacks": c.fallbacks.Load(),
		}
	}

	return map[string]any{
		"requests_total":       m.requestsTotal.Load(),
		"requests_in_progress": m.requestsInProgress.Load(),
		"requests_success":     m.requestsSuccess.Load(),
		"requests_failed":      m.requestsFailed.Load(),
		"analyses":             analyses,
		"uptime_seconds":       time.Since(m.startTime).Seconds(),
		"memory": map[string]any{
			"alloc_bytes":       mem.Alloc,
			"total_alloc_bytes": mem.TotalAlloc,
			"sys_bytes":         mem.Sys,
			"num_gc":            mem.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}
}

// Middleware tracks request metrics
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.requestsTotal.Add(1)
		m.requestsInProgress.Add(1)
		defer m.requestsInProgress.Add(-1)

		wrapped := wrapWriter(w)
		next.ServeHTTP(wrapped, r)

		if wrapped.statusCode >= 200 && wrapped.statusCode < 400 {
			m.requestsSuccess.Add(1)
		} else {
			m.requestsFailed.Add(1)
		}
	})
}

// Handler returns metrics as JSON
func (m *Metrics) Handler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, m.Snapshot())
}
