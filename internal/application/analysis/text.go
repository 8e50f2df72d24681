package analysis

import (
	"context"
	"strings"

	"go.uber.org/zap"

	domain "github.com/rumera-ai/rumera/internal/domain/analysis"
	"github.com/rumera-ai/rumera/internal/domain/inference"
	"github.com/rumera-ai/rumera/internal/infra/ai/prompt"
)

const (
	backendLocal   = "local"
	backendNeutral = "neutral"

	modelLocalText = "ToxicBERT + DistilBERT"
)

// AnalyzeText scores text with the hosted model, then the local classifiers,
// then a neutral result. The same override policy runs on every outcome.
func (s *Service) AnalyzeText(ctx context.Context, p domain.Principal, text string) (*domain.TextResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalid("Text is required for analysis")
	}
	if err := s.consume(ctx, p); err != nil {
		return nil, err
	}

	input, truncated := truncateRunes(text, domain.MaxTextLength)
	res := s.textViaLLM(ctx, input)
	if res == nil {
		res = s.textViaLocal(ctx, input)
	}
	if res == nil {
		res = &domain.TextResult{
			TrustScore:    50,
			ToxicityLevel: domain.ToxicityLow,
			Backend:       backendNeutral,
			Fallback:      true,
			ModelUsed:     "none",
		}
	}

	domain.EnforceTextPolicy(input, res)
	if res.Details == nil {
		res.Details = map[string]any{}
	}
	res.TextInput = input
	res.Truncated = truncated
	res.AnalyzedAt = s.now()

	s.record(ctx, p, recordArgs{
		modality:       domain.ModalityText,
		trustScore:     res.TrustScore,
		classification: res.Classification,
		summary:        input,
		fallback:       res.Fallback,
		result:         res,
	})
	return res, nil
}

func (s *Service) textViaLLM(ctx context.Context, input string) *domain.TextResult {
	if s.LLM == nil {
		return nil
	}
	var reply prompt.TextReply
	provider, err := s.LLM.CompleteJSON(ctx, prompt.Text(input), &reply)
	if err != nil {
		s.log().Warn("text llm path failed, using local models", zap.Error(err))
		return nil
	}
	return &domain.TextResult{
		TrustScore:     domain.ClampScore(reply.TrustScore),
		Classification: reply.Classification,
		ToxicityLevel:  reply.ToxicityLevel,
		Confidence:     domain.ClampScore(reply.Confidence),
		Flags:          reply.Flags,
		Details:        reply.Details,
		Backend:        "llm:" + provider,
		ModelUsed:      provider,
	}
}

// textViaLocal needs the toxicity pipeline; the general classifier only adds
// the content category.
func (s *Service) textViaLocal(ctx context.Context, input string) *domain.TextResult {
	tox, ok := s.scoreToxicity(ctx, input)
	if !ok {
		return nil
	}
	res := &domain.TextResult{
		TrustScore:         100 - tox.score,
		ToxicityLevel:      domain.ToxicityLevelFor(tox.score),
		ToxicityScore:      tox.score,
		Confidence:         tox.confidence,
		Flags:              tox.flags,
		HateSpeechDetected: tox.score > 50,
		Details:            map[string]any{"toxicity_predictions": tox.predictions},
		Backend:            backendLocal,
		ModelUsed:          modelLocalText,
	}
	if cls, ok := s.Pipelines.Get(ctx, inference.ModalityTextClassifier); ok {
		out, err := cls.Run(ctx, inference.Input{Text: input})
		if err != nil {
			s.log().Debug("text classifier failed", zap.Error(err))
		} else if top, ok := out.Top(); ok {
			res.ContentCategory = top.Label
			res.Details["classification_score"] = domain.Percent(top.Score)
		}
	}
	return res
}

type toxicity struct {
	score       int
	confidence  int
	flags       []string
	predictions []inference.Prediction
}

// scoreToxicity runs the toxicity classifier. ok=false when it is unavailable.
func (s *Service) scoreToxicity(ctx context.Context, text string) (toxicity, bool) {
	p, ok := s.Pipelines.Get(ctx, inference.ModalityToxicity)
	if !ok {
		return toxicity{}, false
	}
	out, err := p.Run(ctx, inference.Input{Text: text})
	if err != nil {
		s.log().Warn("toxicity pipeline failed", zap.Error(err))
		return toxicity{}, false
	}
	t := toxicity{flags: []string{}, predictions: out.Predictions}
	var best float64
	for _, pred := range out.Predictions {
		if !isToxicLabel(pred.Label) {
			continue
		}
		best = max(best, pred.Score)
		if pred.Score > 0.5 {
			t.flags = append(t.flags, strings.ToLower(pred.Label))
		}
	}
	t.score = domain.Percent(best)
	if top, ok := out.Top(); ok {
		t.confidence = domain.Percent(top.Score)
	}
	return t, true
}

var toxicLabels = []string{"toxic", "obscene", "threat", "insult", "hate", "severe"}

func isToxicLabel(label string) bool {
	l := strings.ToLower(label)
	if strings.HasPrefix(l, "non") || strings.HasPrefix(l, "not") {
		return false
	}
	for _, t := range toxicLabels {
		if strings.Contains(l, t) {
			return true
		}
	}
	return false
}
