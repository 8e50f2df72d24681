package prompt

import (
	"encoding/json"
	"fmt"

	"github.com/rumera-ai/rumera/internal/domain/ai"
)

// Explain asks for a short user-facing explanation of analysis results.
func Explain(modality string, results json.RawMessage) ai.Request {
	if len(results) == 0 {
		results = json.RawMessage("{}")
	}
	user := fmt.Sprintf(`Based on the following %s analysis results, provide a brief, user-friendly explanation of the findings.

Results: %s

Schema:
{
  "summary": "<one-line summary>",
  "explanation": "<2-3 sentences explaining the results>",
  "recommendations": [<array of recommended actions>]
}`, modality, string(results))
	return ai.Request{
		System:    "You explain content moderation results to non-experts. Reply with one valid JSON object only.",
		User:      user,
		MaxTokens: 512,
		JSON:      true,
	}
}
