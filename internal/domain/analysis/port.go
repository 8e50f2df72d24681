package analysis

import (
	"context"

	"github.com/rumera-ai/rumera/internal/domain/ai"
	"github.com/rumera-ai/rumera/internal/domain/inference"
)

// PipelineSource hands out loaded pipelines. ok=false means the modality is
// unavailable and the caller must use its fallback output.
type PipelineSource interface {
	Get(ctx context.Context, m inference.Modality) (inference.Pipeline, bool)
}

// LanguageModel completes a prompt and decodes the JSON object in the reply
// into out. It returns the name of the provider that answered.
type LanguageModel interface {
	CompleteJSON(ctx context.Context, req ai.Request, out any) (string, error)
}

// OCR port (text extraction from images)
type OCR interface {
	Extract(ctx context.Context, data []byte, contentType string) (string, error)
}

// ImageInspector reads image header metadata.
type ImageInspector interface {
	Inspect(data []byte) (ImageMetadata, error)
}

// ArchiveStore port (penyimpanan media yang di-upload)
type ArchiveStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// QuotaLimiter consumes one analysis unit for the principal key.
type QuotaLimiter interface {
	Consume(ctx context.Context, key string) (bool, error)
}

// Recorder counts completed analyses.
type Recorder interface {
	RecordAnalysis(modality Modality, fallback bool)
}
