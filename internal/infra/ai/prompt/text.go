package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rumera-ai/rumera/internal/domain/ai"
)

const moderationSystem = `You are a content moderation analyst. Reply with one valid JSON object only: no markdown, no commentary, no code fences.`

// TextReply is the JSON shape requested from the model for text analysis.
type TextReply struct {
	TrustScore     float64        `json:"trust_score"`
	Classification string         `json:"classification"`
	ToxicityLevel  string         `json:"toxicity_level"`
	Confidence     float64        `json:"confidence"`
	Flags          []string       `json:"flags"`
	Details        map[string]any `json:"details"`
}

// Text builds the text moderation request.
func Text(text string) ai.Request {
	var b strings.Builder
	b.WriteString("Analyze the following text for toxicity, hate speech, and trustworthiness.\n\n")
	b.WriteString(`CRITICAL SCORING RULES:
- If text contains ANY profanity, curse words, or hate speech: trust_score MUST be 10-30
- If toxicity_level is HIGH: trust_score MUST be 5-25
- If toxicity_level is MEDIUM: trust_score MUST be 20-40
- If toxicity_level is LOW and no profanity: trust_score can be 60+
- If text is clean and authentic: trust_score can be 75-100

Schema:
{
  "trust_score": <number 0-100>,
  "classification": "<Authentic|Mixed|Suspicious>",
  "toxicity_level": "<Low|Medium|High>",
  "confidence": <number 0-100>,
  "flags": [<array of strings>],
  "details": {<object>}
}

`)
	fmt.Fprintf(&b, "Text to analyze: %s", quote(text))
	return ai.Request{System: moderationSystem, User: b.String(), MaxTokens: 1024, JSON: true}
}

// quote renders s as a JSON string literal so embedded quotes cannot break the prompt.
func quote(s string) string {
	raw, _ := json.Marshal(s)
	return string(raw)
}
