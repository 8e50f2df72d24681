package hf

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rumera-ai/rumera/internal/domain/inference"
)

// NoTextExtracted is reported when OCR is unavailable or finds nothing.
const NoTextExtracted = "[No text extracted]"

const DefaultOCRModel = "microsoft/trocr-base-printed"

// OCR reads printed text from images through an image-to-text model. The
// model is loaded on first use; a failed load is kept for the process lifetime.
type OCR struct {
	loader      inference.Loader
	spec        inference.Spec
	loadTimeout time.Duration
	logger      *zap.Logger

	once     sync.Once
	pipeline inference.Pipeline
}

func NewOCR(loader inference.Loader, model string, loadTimeout time.Duration, logger *zap.Logger) *OCR {
	if model == "" {
		model = DefaultOCRModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if loadTimeout <= 0 {
		loadTimeout = time.Minute
	}
	return &OCR{
		loader:      loader,
		spec:        inference.Spec{Modality: "ocr", Task: inference.TaskImageToText, ModelID: model},
		loadTimeout: loadTimeout,
		logger:      logger,
	}
}

func (o *OCR) load(ctx context.Context) inference.Pipeline {
	o.once.Do(func() {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.loadTimeout)
		defer cancel()
		if err := o.loader.Init(lctx); err != nil {
			o.logger.Warn("ocr unavailable", zap.Error(err))
			return
		}
		p, err := o.loader.Load(lctx, o.spec)
		if err != nil {
			o.logger.Warn("ocr unavailable", zap.String("model", o.spec.ModelID), zap.Error(err))
			return
		}
		o.pipeline = p
	})
	return o.pipeline
}

// Extract never fails; errors degrade to NoTextExtracted.
func (o *OCR) Extract(ctx context.Context, data []byte, contentType string) (string, error) {
	if o == nil || o.loader == nil {
		return NoTextExtracted, nil
	}
	p := o.load(ctx)
	if p == nil {
		return NoTextExtracted, nil
	}
	out, err := p.Run(ctx, inference.Input{Data: data, ContentType: contentType})
	if err != nil {
		o.logger.Debug("ocr failed", zap.Error(err))
		return NoTextExtracted, nil
	}
	text := strings.TrimSpace(out.Text)
	if text == "" {
		return NoTextExtracted, nil
	}
	return text, nil
}
