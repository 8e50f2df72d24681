package analysis

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	domain "github.com/rumera-ai/rumera/internal/domain/analysis"
	"github.com/rumera-ai/rumera/internal/domain/inference"
	"github.com/rumera-ai/rumera/internal/infra/ai/prompt"
)

const (
	modelImage  = "OpenAI CLIP + deepfake proxy classifier"
	ocrExcerpt  = 500
	noOCRResult = "[No text extracted]"
)

// aiGenerationLabels are the zero-shot candidates; the first names AI.
var aiGenerationLabels = []string{
	"AI generated image",
	"photograph",
	"drawing",
	"digital art",
	"real photograph",
}

// AnalyzeImage runs OCR, metadata, AI-generation and deepfake scoring
// concurrently and blends the two scores into one trust score.
func (s *Service) AnalyzeImage(ctx context.Context, p domain.Principal, in domain.ImageInput) (*domain.ImageResult, error) {
	if len(in.Data) == 0 {
		return nil, invalid("Image file is required")
	}
	if err := s.consume(ctx, p); err != nil {
		return nil, err
	}

	res := &domain.ImageResult{
		Filename:    in.Filename,
		FileSize:    len(in.Data),
		ContentType: in.ContentType,
		ModelUsed:   modelImage,
	}

	var g errgroup.Group
	g.Go(func() error {
		res.OCRText = s.extractText(ctx, in)
		return nil
	})
	g.Go(func() error {
		if s.Inspector == nil {
			return nil
		}
		meta, err := s.Inspector.Inspect(in.Data)
		if err != nil {
			s.log().Debug("image metadata unavailable", zap.String("filename", in.Filename), zap.Error(err))
			return nil
		}
		res.ImageMetadata = &meta
		return nil
	})
	g.Go(func() error {
		res.AIGenerationAnalysis = s.scoreAIGeneration(ctx, in)
		return nil
	})
	g.Go(func() error {
		res.DeepfakeAnalysis = s.scoreDeepfake(ctx, in.Data, in.ContentType)
		return nil
	})
	g.Go(func() error {
		res.ArchiveURL = s.archive(ctx, domain.ModalityImage, in.Filename, in.ContentType, in.Data)
		return nil
	})
	_ = g.Wait()

	aiScore := res.AIGenerationAnalysis.AIGenerationScore
	deepfake := res.DeepfakeAnalysis.Likelihood
	res.Fallback = res.AIGenerationAnalysis.Fallback || res.DeepfakeAnalysis.Fallback
	if res.AIGenerationAnalysis.Fallback && res.DeepfakeAnalysis.Fallback {
		if est, ok := s.imageViaLLM(ctx, in, res.OCRText); ok {
			aiScore, deepfake = est.aiScore, est.deepfake
			res.AIGenerationAnalysis.AIGenerationScore = aiScore
			res.AIGenerationAnalysis.IsAIGenerated = aiScore > 50
			res.DeepfakeAnalysis.Likelihood = deepfake
			res.DeepfakeAnalysis.IsDeepfake = deepfake > 60
			res.DeepfakeAnalysis.RiskLevel = domain.DeepfakeRisk(deepfake)
			res.ModelUsed = "llm:" + est.provider
		}
	}

	res.DeepfakeLikelihood = deepfake
	res.TrustScore = domain.ImageTrust(aiScore, deepfake)
	res.AuthenticityBadge = domain.ImageBadge(aiScore, deepfake)
	res.AnalyzedAt = s.now()

	s.record(ctx, p, recordArgs{
		modality:       domain.ModalityImage,
		trustScore:     res.TrustScore,
		classification: res.AuthenticityBadge,
		summary:        in.Filename,
		archiveURL:     res.ArchiveURL,
		fallback:       res.Fallback,
		result:         res,
	})
	return res, nil
}

func (s *Service) extractText(ctx context.Context, in domain.ImageInput) string {
	if s.OCR == nil {
		return noOCRResult
	}
	text, err := s.OCR.Extract(ctx, in.Data, in.ContentType)
	if err != nil || strings.TrimSpace(text) == "" {
		return noOCRResult
	}
	return firstRunes(text, ocrExcerpt)
}

func (s *Service) scoreAIGeneration(ctx context.Context, in domain.ImageInput) domain.AIGenerationAnalysis {
	unavailable := domain.AIGenerationAnalysis{TopPrediction: "unknown", Fallback: true}
	clip, ok := s.Pipelines.Get(ctx, inference.ModalityCLIP)
	if !ok {
		return unavailable
	}
	out, err := clip.Run(ctx, inference.Input{
		Data:            in.Data,
		ContentType:     in.ContentType,
		CandidateLabels: aiGenerationLabels,
	})
	if err != nil {
		s.log().Warn("clip pipeline failed", zap.Error(err))
		unavailable.TopPrediction = "error"
		return unavailable
	}
	score := domain.AIGenerationScore(out.Predictions)
	a := domain.AIGenerationAnalysis{
		AIGenerationScore: score,
		IsAIGenerated:     score > 50,
		TopPrediction:     "unknown",
		AllPredictions:    out.Predictions,
	}
	if top, ok := out.Top(); ok {
		a.Confidence = top.Score
		a.TopPrediction = top.Label
	}
	return a
}

// scoreDeepfake runs the image classifier used as a manipulation proxy.
func (s *Service) scoreDeepfake(ctx context.Context, data []byte, contentType string) domain.DeepfakeAnalysis {
	unavailable := domain.DeepfakeAnalysis{RiskLevel: "unknown", TopPrediction: "unknown", Fallback: true}
	p, ok := s.Pipelines.Get(ctx, inference.ModalityXception)
	if !ok {
		return unavailable
	}
	out, err := p.Run(ctx, inference.Input{Data: data, ContentType: contentType})
	if err != nil {
		s.log().Warn("deepfake proxy failed", zap.Error(err))
		unavailable.TopPrediction = "error"
		return unavailable
	}
	likelihood := domain.DeepfakeLikelihood(out.Predictions)
	d := domain.DeepfakeAnalysis{
		Likelihood:     likelihood,
		IsDeepfake:     likelihood > 60,
		RiskLevel:      domain.DeepfakeRisk(likelihood),
		TopPrediction:  "unknown",
		AllPredictions: out.Predictions,
	}
	if top, ok := out.Top(); ok {
		d.TopPrediction = top.Label
	}
	return d
}

type imageEstimate struct {
	aiScore  int
	deepfake int
	provider string
}

// imageViaLLM estimates from filename, size and OCR text when neither image
// model is available. The result stays marked as fallback.
func (s *Service) imageViaLLM(ctx context.Context, in domain.ImageInput, ocrText string) (imageEstimate, bool) {
	if s.LLM == nil {
		return imageEstimate{}, false
	}
	if ocrText == noOCRResult {
		ocrText = ""
	}
	var reply prompt.ImageReply
	provider, err := s.LLM.CompleteJSON(ctx, prompt.Image(in.Filename, len(in.Data), ocrText), &reply)
	if err != nil {
		s.log().Debug("image llm estimate failed", zap.Error(err))
		return imageEstimate{}, false
	}
	return imageEstimate{
		aiScore:  domain.ClampScore(reply.AIGeneratedProbability),
		deepfake: domain.ClampScore(reply.ManipulationScore),
		provider: provider,
	}, true
}
