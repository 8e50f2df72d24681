package analysis

import (
	"time"

	"github.com/rumera-ai/rumera/internal/domain/inference"
)

// Modality of the submitted content.
type Modality string

const (
	ModalityText  Modality = "text"
	ModalityImage Modality = "image"
	ModalityAudio Modality = "audio"
	ModalityVideo Modality = "video"
)

// Classification labels derived from the final trust score.
const (
	ClassAuthentic  = "Authentic"
	ClassMixed      = "Mixed"
	ClassSuspicious = "Suspicious"
)

// Toxicity levels.
const (
	ToxicityLow    = "Low"
	ToxicityMedium = "Medium"
	ToxicityHigh   = "High"
)

// Authenticity badges for images.
const (
	BadgeAIGenerated       = "AI Generated"
	BadgeLikelyManipulated = "Likely Manipulated"
	BadgeLikelyAuthentic   = "Likely Authentic"
)

// MaxTextLength is the canonical truncation limit (in runes) for text input.
const MaxTextLength = 2000

// Principal identifies who submitted an analysis. UserID is empty for anonymous callers.
type Principal struct {
	UserID   string
	ClientIP string
}

// Key used for quota accounting.
func (p Principal) Key() string {
	if p.UserID != "" {
		return "user:" + p.UserID
	}
	return "ip:" + p.ClientIP
}

// ImageInput is an uploaded image.
type ImageInput struct {
	Filename    string
	ContentType string
	Data        []byte
}

// AudioInput is an uploaded audio file.
type AudioInput struct {
	Filename    string
	ContentType string
	Data        []byte
}

// VideoInput carries video metadata and optional externally extracted frames.
type VideoInput struct {
	Filename   string   `json:"filename"`
	Duration   float64  `json:"duration"`
	Resolution string   `json:"resolution"`
	FPS        float64  `json:"fps"`
	Frames     [][]byte `json:"-"`
}

// TextResult of a text analysis.
type TextResult struct {
	TrustScore         int            `json:"trust_score"`
	Classification     string         `json:"classification"`
	ToxicityLevel      string         `json:"toxicity_level"`
	ToxicityScore      int            `json:"toxicity_score"`
	Confidence         int            `json:"confidence"`
	Flags              []string       `json:"flags"`
	Details            map[string]any `json:"details"`
	HateSpeechDetected bool           `json:"hate_speech_detected"`
	ContentCategory    string         `json:"content_category,omitempty"`
	TextInput          string         `json:"text_input"`
	Truncated          bool           `json:"truncated,omitempty"`
	Backend            string         `json:"backend"`
	Fallback           bool           `json:"fallback,omitempty"`
	ModelUsed          string         `json:"model_used"`
	AnalyzedAt         time.Time      `json:"analyzed_at"`
}

// ImageMetadata mirrors what the image inspector can read from the header.
type ImageMetadata struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Format   string `json:"format"`
	HasAlpha bool   `json:"hasAlpha"`
}

// AIGenerationAnalysis is the zero-shot scorer output.
type AIGenerationAnalysis struct {
	AIGenerationScore int                    `json:"aiGenerationScore"`
	IsAIGenerated     bool                   `json:"isAiGenerated"`
	Confidence        float64                `json:"confidence"`
	TopPrediction     string                 `json:"topPrediction"`
	AllPredictions    []inference.Prediction `json:"allPredictions,omitempty"`
	Fallback          bool                   `json:"fallback,omitempty"`
}

// DeepfakeAnalysis is the image-classification proxy output.
type DeepfakeAnalysis struct {
	Likelihood     int                    `json:"deepfakeLikelihood"`
	IsDeepfake     bool                   `json:"isDeepfake"`
	RiskLevel      string                 `json:"riskLevel"`
	TopPrediction  string                 `json:"topPrediction"`
	AllPredictions []inference.Prediction `json:"allPredictions,omitempty"`
	Fallback       bool                   `json:"fallback,omitempty"`
}

// ImageResult of an image analysis.
type ImageResult struct {
	Filename             string               `json:"filename"`
	FileSize             int                  `json:"file_size"`
	ImageMetadata        *ImageMetadata       `json:"image_metadata,omitempty"`
	OCRText              string               `json:"ocr_text"`
	AIGenerationAnalysis AIGenerationAnalysis `json:"ai_generation_analysis"`
	DeepfakeAnalysis     DeepfakeAnalysis     `json:"deepfake_analysis"`
	DeepfakeLikelihood   int                  `json:"deepfake_likelihood"`
	TrustScore           int                  `json:"trust_score"`
	AuthenticityBadge    string               `json:"authenticity_badge"`
	ContentType          string               `json:"content_type"`
	ArchiveURL           string               `json:"archive_url,omitempty"`
	Fallback             bool                 `json:"fallback,omitempty"`
	ModelUsed            string               `json:"model_used"`
	AnalyzedAt           time.Time            `json:"analyzed_at"`
}

// AudioResult of an audio analysis (transcript or file).
type AudioResult struct {
	Filename                string         `json:"filename,omitempty"`
	FileSize                int            `json:"file_size,omitempty"`
	Transcription           string         `json:"transcription,omitempty"`
	TranscriptionConfidence float64        `json:"transcription_confidence,omitempty"`
	TrustScore              int            `json:"trust_score"`
	Classification          string         `json:"classification,omitempty"`
	SpeechAuthenticity      string         `json:"speech_authenticity,omitempty"`
	DetectedIssues          []string       `json:"detected_issues,omitempty"`
	ToxicityLevel           string         `json:"toxicity_level,omitempty"`
	ToxicityScore           int            `json:"toxicity_score"`
	HateSpeechDetected      bool           `json:"hate_speech_detected"`
	Confidence              int            `json:"confidence"`
	Details                 map[string]any `json:"details,omitempty"`
	ArchiveURL              string         `json:"archive_url,omitempty"`
	Backend                 string         `json:"backend"`
	Fallback                bool           `json:"fallback,omitempty"`
	ModelUsed               string         `json:"model_used"`
	AnalyzedAt              time.Time      `json:"analyzed_at"`
}

// VideoResult of a video analysis.
type VideoResult struct {
	Filename             string    `json:"filename"`
	Duration             float64   `json:"duration,omitempty"`
	Resolution           string    `json:"resolution,omitempty"`
	FPS                  float64   `json:"fps,omitempty"`
	TrustScore           int       `json:"trust_score"`
	DeepfakeLikelihood   *int      `json:"deepfake_likelihood,omitempty"`
	FramesAnalyzed       int       `json:"frames_analyzed"`
	RequiresFrameExtract bool      `json:"requires_frame_extraction"`
	AnalysisNote         string    `json:"analysis_note"`
	RecommendedNextSteps []string  `json:"recommended_next_steps"`
	Fallback             bool      `json:"fallback,omitempty"`
	ModelUsed            string    `json:"model_used"`
	AnalyzedAt           time.Time `json:"analyzed_at"`
}

// Explanation is a user-facing summary of an analysis.
type Explanation struct {
	Summary         string   `json:"summary"`
	Explanation     string   `json:"explanation"`
	Recommendations []string `json:"recommendations"`
}

// DefaultExplanation is returned whenever no explanation can be generated.
func DefaultExplanation() Explanation {
	return Explanation{
		Summary:         "Analysis complete",
		Explanation:     "Analysis results are displayed above.",
		Recommendations: []string{},
	}
}
