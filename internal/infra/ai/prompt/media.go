package prompt

import (
	"fmt"
	"strings"

	"github.com/rumera-ai/rumera/internal/domain/ai"
)

const ocrExcerpt = 500

// ImageReply is the JSON shape requested for the metadata-only image estimate.
type ImageReply struct {
	TrustScore             float64        `json:"trust_score"`
	AIGeneratedProbability float64        `json:"ai_generated_probability"`
	ManipulationScore      float64        `json:"manipulation_score"`
	Confidence             float64        `json:"confidence"`
	Details                map[string]any `json:"details"`
}

// Image asks the model for an estimate from what is known about an image
// without its pixels: filename, size and any extracted text.
func Image(filename string, size int, ocrText string) ai.Request {
	var b strings.Builder
	b.WriteString("Analyze the following image for signs of AI generation, deepfakes, or manipulation.\n\n")
	fmt.Fprintf(&b, "Image filename: %s\nImage size: %d bytes\n", filename, size)
	if t := strings.TrimSpace(ocrText); t != "" {
		runes := []rune(t)
		if len(runes) > ocrExcerpt {
			runes = runes[:ocrExcerpt]
		}
		fmt.Fprintf(&b, "\nExtracted text from image:\n%s\n", string(runes))
	}
	b.WriteString(`
Schema:
{
  "trust_score": <number 0-100, higher = more authentic>,
  "ai_generated_probability": <number 0-100>,
  "manipulation_score": <number 0-100, higher = more manipulated>,
  "confidence": <number 0-100>,
  "details": {<object>}
}`)
	return ai.Request{System: moderationSystem, User: b.String(), MaxTokens: 1024, JSON: true}
}

// AudioReply is the JSON shape requested for transcript analysis.
type AudioReply struct {
	TrustScore         float64        `json:"trust_score"`
	Classification     string         `json:"classification"`
	SpeechAuthenticity string         `json:"speech_authenticity"`
	DetectedIssues     []string       `json:"detected_issues"`
	Confidence         float64        `json:"confidence"`
	Details            map[string]any `json:"details"`
}

// Audio builds the request that inspects a transcript for synthesis or spoofing signals.
func Audio(transcript string) ai.Request {
	user := fmt.Sprintf(`Analyze the following audio transcription for signs of speech synthesis, deepfakes, or manipulation.

Transcription: %s

Schema:
{
  "trust_score": <number 0-100>,
  "classification": "<Authentic|Suspicious|Deepfake Risk>",
  "speech_authenticity": "<Low Risk|Medium Risk|High Risk>",
  "detected_issues": [<array of strings>],
  "confidence": <number 0-100>,
  "details": {<object>}
}`, quote(transcript))
	return ai.Request{System: moderationSystem, User: user, MaxTokens: 1024, JSON: true}
}
