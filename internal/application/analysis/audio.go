package analysis

import (
	"context"
	"strings"

	"go.uber.org/zap"

	domain "github.com/rumera-ai/rumera/internal/domain/analysis"
	"github.com/rumera-ai/rumera/internal/domain/inference"
	"github.com/rumera-ai/rumera/internal/infra/ai/prompt"
)

// TranscriptionUnavailable replaces the transcript when speech recognition fails.
const TranscriptionUnavailable = "[Audio content received - transcription unavailable]"

const (
	modelAudioFile   = "OpenAI Whisper + ToxicBERT"
	modelToxicity    = "ToxicBERT"
	speechUnknown    = "Unknown"
	speechLowRisk    = "Low Risk"
	speechMediumRisk = "Medium Risk"
	speechHighRisk   = "High Risk"
)

// AnalyzeAudioTranscript interprets a client-supplied transcript with the
// hosted model, falling back to toxicity scoring of the transcript.
func (s *Service) AnalyzeAudioTranscript(ctx context.Context, p domain.Principal, transcript, filename string) (*domain.AudioResult, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return nil, invalid("Transcription is required for analysis")
	}
	if err := s.consume(ctx, p); err != nil {
		return nil, err
	}

	input, _ := truncateRunes(transcript, domain.MaxTextLength)
	res := s.audioViaLLM(ctx, input)
	if res == nil {
		res = s.audioViaToxicity(ctx, input)
	}
	res.Filename = filename
	res.Transcription = input
	s.finishAudio(ctx, p, res)
	return res, nil
}

// AnalyzeAudioFile transcribes raw audio and scores the transcript for toxicity.
func (s *Service) AnalyzeAudioFile(ctx context.Context, p domain.Principal, in domain.AudioInput) (*domain.AudioResult, error) {
	if len(in.Data) == 0 {
		return nil, invalid("Audio file is required")
	}
	if err := s.consume(ctx, p); err != nil {
		return nil, err
	}

	transcript, ok := s.transcribe(ctx, in)
	var res *domain.AudioResult
	if ok {
		res = s.audioViaToxicity(ctx, transcript)
		res.ModelUsed = modelAudioFile
	} else {
		transcript = TranscriptionUnavailable
		res = neutralAudio()
	}
	res.Filename = in.Filename
	res.FileSize = len(in.Data)
	res.Transcription = transcript
	res.ArchiveURL = s.archive(ctx, domain.ModalityAudio, in.Filename, in.ContentType, in.Data)
	s.finishAudio(ctx, p, res)
	return res, nil
}

func (s *Service) finishAudio(ctx context.Context, p domain.Principal, res *domain.AudioResult) {
	res.TrustScore = domain.ClampScore(float64(res.TrustScore))
	if res.Classification == "" {
		res.Classification = domain.ClassifyTrust(res.TrustScore)
	}
	if res.DetectedIssues == nil {
		res.DetectedIssues = []string{}
	}
	res.AnalyzedAt = s.now()

	summary := res.Filename
	if summary == "" {
		summary = res.Transcription
	}
	s.record(ctx, p, recordArgs{
		modality:       domain.ModalityAudio,
		trustScore:     res.TrustScore,
		classification: res.Classification,
		summary:        summary,
		archiveURL:     res.ArchiveURL,
		fallback:       res.Fallback,
		result:         res,
	})
}

func (s *Service) transcribe(ctx context.Context, in domain.AudioInput) (string, bool) {
	whisper, ok := s.Pipelines.Get(ctx, inference.ModalityWhisper)
	if !ok {
		return "", false
	}
	out, err := whisper.Run(ctx, inference.Input{Data: in.Data, ContentType: in.ContentType})
	if err != nil {
		s.log().Warn("speech recognition failed", zap.String("filename", in.Filename), zap.Error(err))
		return "", false
	}
	text := strings.TrimSpace(out.Text)
	return text, text != ""
}

func (s *Service) audioViaLLM(ctx context.Context, transcript string) *domain.AudioResult {
	if s.LLM == nil {
		return nil
	}
	var reply prompt.AudioReply
	provider, err := s.LLM.CompleteJSON(ctx, prompt.Audio(transcript), &reply)
	if err != nil {
		s.log().Warn("audio llm path failed, using toxicity model", zap.Error(err))
		return nil
	}
	return &domain.AudioResult{
		TrustScore:         domain.ClampScore(reply.TrustScore),
		Classification:     reply.Classification,
		SpeechAuthenticity: reply.SpeechAuthenticity,
		DetectedIssues:     reply.DetectedIssues,
		Confidence:         domain.ClampScore(reply.Confidence),
		Details:            reply.Details,
		Backend:            "llm:" + provider,
		ModelUsed:          provider,
	}
}

// audioViaToxicity never returns nil: without the toxicity model the result is neutral.
func (s *Service) audioViaToxicity(ctx context.Context, transcript string) *domain.AudioResult {
	tox, ok := s.scoreToxicity(ctx, transcript)
	if !ok {
		return neutralAudio()
	}
	level := domain.ToxicityLevelFor(tox.score)
	return &domain.AudioResult{
		TrustScore:         100 - tox.score,
		ToxicityLevel:      level,
		ToxicityScore:      tox.score,
		HateSpeechDetected: tox.score > 50,
		SpeechAuthenticity: speechRiskFor(level),
		DetectedIssues:     tox.flags,
		Confidence:         tox.confidence,
		Backend:            backendLocal,
		ModelUsed:          modelToxicity,
	}
}

func neutralAudio() *domain.AudioResult {
	return &domain.AudioResult{
		TrustScore:         50,
		ToxicityLevel:      domain.ToxicityLow,
		SpeechAuthenticity: speechUnknown,
		Backend:            backendNeutral,
		Fallback:           true,
		ModelUsed:          "none",
	}
}

func speechRiskFor(level string) string {
	switch level {
	case domain.ToxicityHigh:
		return speechHighRisk
	case domain.ToxicityMedium:
		return speechMediumRisk
	default:
		return speechLowRisk
	}
}
