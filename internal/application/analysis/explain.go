package analysis

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	domain "github.com/rumera-ai/rumera/internal/domain/analysis"
	"github.com/rumera-ai/rumera/internal/infra/ai/prompt"
)

// Explain summarizes analysis results for a non-expert. Any model failure
// yields the default explanation.
func (s *Service) Explain(ctx context.Context, modality string, results json.RawMessage) (domain.Explanation, error) {
	modality = strings.ToLower(strings.TrimSpace(modality))
	switch domain.Modality(modality) {
	case domain.ModalityText, domain.ModalityImage, domain.ModalityAudio, domain.ModalityVideo:
	default:
		return domain.Explanation{}, invalid("Analysis type must be one of text, image, audio, video")
	}
	if s.LLM == nil {
		return domain.DefaultExplanation(), nil
	}

	var out domain.Explanation
	if _, err := s.LLM.CompleteJSON(ctx, prompt.Explain(modality, results), &out); err != nil {
		s.log().Debug("explanation failed, using default", zap.Error(err))
		return domain.DefaultExplanation(), nil
	}
	if out.Summary == "" {
		return domain.DefaultExplanation(), nil
	}
	if out.Recommendations == nil {
		out.Recommendations = []string{}
	}
	return out, nil
}
