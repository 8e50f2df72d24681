// Package models owns the process-wide inference pipelines. Each modality is
// loaded at most once; a failed load is remembered and never retried.
package models

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rumera-ai/rumera/internal/domain/inference"
)

// ErrRuntimeUnavailable is cached for every modality when the shared runtime gate fails.
var ErrRuntimeUnavailable = errors.New("inference runtime unavailable")

const defaultLoadTimeout = 60 * time.Second

type entry struct {
	once     sync.Once
	done     bool
	pipeline inference.Pipeline
	err      error
}

// Registry is safe for concurrent use.
type Registry struct {
	loader      inference.Loader
	specs       map[inference.Modality]inference.Spec
	logger      *zap.Logger
	loadTimeout time.Duration

	runtimeOnce sync.Once
	runtimeErr  error

	mu      sync.Mutex
	entries map[inference.Modality]*entry
}

// NewRegistry builds a registry for the given specs. Nothing is loaded until first use.
func NewRegistry(loader inference.Loader, specs []inference.Spec, logger *zap.Logger, loadTimeout time.Duration) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loadTimeout <= 0 {
		loadTimeout = defaultLoadTimeout
	}
	r := &Registry{
		loader:      loader,
		specs:       make(map[inference.Modality]inference.Spec, len(specs)),
		logger:      logger,
		loadTimeout: loadTimeout,
		entries:     make(map[inference.Modality]*entry, len(specs)),
	}
	for _, s := range specs {
		r.specs[s.Modality] = s
		r.entries[s.Modality] = &entry{}
	}
	return r
}

// Spec returns the load spec for a modality.
func (r *Registry) Spec(m inference.Modality) (inference.Spec, bool) {
	s, ok := r.specs[m]
	return s, ok
}

// Get returns the pipeline for m, loading it on first use. ok=false means the
// caller must fall back; the answer never changes for the process lifetime.
func (r *Registry) Get(ctx context.Context, m inference.Modality) (inference.Pipeline, bool) {
	r.mu.Lock()
	e, exists := r.entries[m]
	r.mu.Unlock()
	if !exists {
		return nil, false
	}

	e.once.Do(func() {
		e.pipeline, e.err = r.load(ctx, m)
		r.mu.Lock()
		e.done = true
		r.mu.Unlock()
	})
	return e.pipeline, e.err == nil && e.pipeline != nil
}

func (r *Registry) load(ctx context.Context, m inference.Modality) (inference.Pipeline, error) {
	// detached: a client disconnect must not poison the modality for good
	loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.loadTimeout)
	defer cancel()

	r.runtimeOnce.Do(func() {
		if err := r.loader.Init(loadCtx); err != nil {
			r.runtimeErr = fmt.Errorf("%w: %v", ErrRuntimeUnavailable, err)
			r.logger.Warn("inference runtime init failed", zap.Error(err))
		}
	})
	if r.runtimeErr != nil {
		return nil, r.runtimeErr
	}

	spec := r.specs[m]
	start := time.Now()
	p, err := r.loader.Load(loadCtx, spec)
	if err != nil {
		r.logger.Warn("pipeline load failed, using fallback for process lifetime",
			zap.String("modality", string(m)),
			zap.String("model", spec.ModelID),
			zap.Error(err),
		)
		return nil, err
	}
	r.logger.Info("pipeline loaded",
		zap.String("modality", string(m)),
		zap.String("model", spec.ModelID),
		zap.Duration("took", time.Since(start)),
	)
	return p, nil
}

// Status reports each modality without triggering loads.
func (r *Registry) Status() map[inference.Modality]inference.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[inference.Modality]inference.Status, len(r.entries))
	for m, e := range r.entries {
		switch {
		case !e.done:
			out[m] = inference.StatusPending
		case e.err == nil && e.pipeline != nil:
			out[m] = inference.StatusReady
		default:
			out[m] = inference.StatusFallback
		}
	}
	return out
}

// Initialize loads every modality concurrently and returns the status once
// all loads finish or ctx is done, whichever comes first. Loads still running
// when ctx ends keep going in the background and report not_loaded meanwhile.
func (r *Registry) Initialize(ctx context.Context) map[inference.Modality]inference.Status {
	done := make(chan struct{})
	go func() {
		defer close(done)
		var eg errgroup.Group
		for m := range r.specs {
			eg.Go(func() error {
				r.Get(ctx, m)
				return nil
			})
		}
		_ = eg.Wait()
	}()

	select {
	case <-done:
	case <-ctx.Done():
		r.logger.Debug("model initialize stopped waiting", zap.Error(ctx.Err()))
	}
	return r.Status()
}
