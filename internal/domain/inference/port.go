package inference

import "context"

// Pipeline is a loaded inference handle. Safe for concurrent use.
type Pipeline interface {
	Run(ctx context.Context, in Input) (Output, error)
}

// Loader port (runtime gate + per-modality construction)
type Loader interface {
	// Init prepares the shared runtime. Called at most once per registry.
	Init(ctx context.Context) error
	Load(ctx context.Context, spec Spec) (Pipeline, error)
}
