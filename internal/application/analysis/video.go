package analysis

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	domain "github.com/rumera-ai/rumera/internal/domain/analysis"
)

const (
	// MaxVideoFrames bounds how many supplied frames are scored per request.
	MaxVideoFrames = 32

	videoTrustPlaceholder = 50
	frameWorkers          = 4
	modelVideo            = "Deepfake proxy classifier (frame-level)"

	videoNote = "For accurate deepfake detection, frame extraction and per-frame analysis is recommended. Upload individual frames for detailed analysis."
)

var videoNextSteps = []string{
	"Extract key frames from video",
	"Analyze each frame individually for deepfake indicators",
	"Submit extracted frames with the video metadata for frame-level scoring",
}

// AnalyzeVideo does not decode video. It reports a placeholder trust score
// unless externally extracted frames are supplied.
func (s *Service) AnalyzeVideo(ctx context.Context, p domain.Principal, in domain.VideoInput) (*domain.VideoResult, error) {
	in.Filename = strings.TrimSpace(in.Filename)
	if in.Filename == "" {
		return nil, invalid("Video filename is required")
	}
	if err := s.consume(ctx, p); err != nil {
		return nil, err
	}

	res := &domain.VideoResult{
		Filename:             in.Filename,
		Duration:             in.Duration,
		Resolution:           in.Resolution,
		FPS:                  in.FPS,
		TrustScore:           videoTrustPlaceholder,
		RequiresFrameExtract: true,
		AnalysisNote:         videoNote,
		RecommendedNextSteps: videoNextSteps,
		ModelUsed:            modelVideo,
	}

	if frames := in.Frames; len(frames) > 0 {
		if len(frames) > MaxVideoFrames {
			frames = frames[:MaxVideoFrames]
		}
		likelihood, analyzed := s.scoreFrames(ctx, frames)
		res.FramesAnalyzed = analyzed
		if analyzed > 0 {
			res.DeepfakeLikelihood = &likelihood
			res.RequiresFrameExtract = false
			if likelihood > 50 {
				res.TrustScore = 100 - likelihood
			}
		} else {
			res.Fallback = true
		}
	}
	res.AnalyzedAt = s.now()

	s.record(ctx, p, recordArgs{
		modality:       domain.ModalityVideo,
		trustScore:     res.TrustScore,
		classification: domain.ClassifyTrust(res.TrustScore),
		summary:        in.Filename,
		fallback:       res.Fallback,
		result:         res,
	})
	return res, nil
}

// scoreFrames returns the highest likelihood over frames the proxy could score.
func (s *Service) scoreFrames(ctx context.Context, frames [][]byte) (int, int) {
	results := make([]domain.DeepfakeAnalysis, len(frames))
	var g errgroup.Group
	g.SetLimit(frameWorkers)
	for i, f := range frames {
		g.Go(func() error {
			if len(f) == 0 {
				results[i] = domain.DeepfakeAnalysis{Fallback: true}
				return nil
			}
			results[i] = s.scoreDeepfake(ctx, f, "")
			return nil
		})
	}
	_ = g.Wait()

	best, analyzed := 0, 0
	for _, r := range results {
		if r.Fallback {
			continue
		}
		analyzed++
		best = max(best, r.Likelihood)
	}
	return best, analyzed
}
