package hf

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/rumera-ai/rumera/internal/domain/inference"
)

// Loader builds pipelines backed by the Hugging Face inference API.
type Loader struct {
	cfg    Config
	logger *zap.Logger

	initOnce sync.Once
	initErr  error
	client   *client
}

func NewLoader(cfg Config, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{cfg: cfg, logger: logger}
}

// Init validates the backend configuration once. A failure disables every modality.
func (l *Loader) Init(ctx context.Context) error {
	l.initOnce.Do(func() {
		if !l.cfg.Enabled {
			l.initErr = ErrDisabled
			return
		}
		if l.cfg.Token == "" {
			l.initErr = errors.New("hf api token not configured")
			return
		}
		c, err := newClient(l.cfg)
		if err != nil {
			l.initErr = err
			return
		}
		l.client = c
		l.logger.Info("inference runtime ready", zap.String("endpoint", c.base.String()))
	})
	return l.initErr
}

// Load probes the model and returns a pipeline bound to the spec's task.
func (l *Loader) Load(ctx context.Context, spec inference.Spec) (inference.Pipeline, error) {
	if err := l.Init(ctx); err != nil {
		return nil, err
	}
	if err := l.client.do(ctx, http.MethodGet, spec.ModelID, "", nil, nil); err != nil {
		return nil, fmt.Errorf("load %s: %w", spec.Modality, err)
	}
	switch spec.Task {
	case inference.TaskTextClassification:
		return &textClassifier{c: l.client, model: spec.ModelID}, nil
	case inference.TaskZeroShotImage:
		return &zeroShotImage{c: l.client, model: spec.ModelID}, nil
	case inference.TaskImageClassification:
		return &imageClassifier{c: l.client, model: spec.ModelID}, nil
	case inference.TaskSpeechRecognition:
		return &speechRecognizer{c: l.client, model: spec.ModelID}, nil
	case inference.TaskImageToText:
		return &imageToText{c: l.client, model: spec.ModelID}, nil
	default:
		return nil, fmt.Errorf("load %s: unsupported task %q", spec.Modality, spec.Task)
	}
}
