package analysis

import (
	"math"
	"strings"

	"github.com/rumera-ai/rumera/internal/domain/inference"
)

// Score caps applied by the text policy.
const (
	capProfanity   = 25
	capHigh        = 25
	capMedium      = 40
	capToxicFlag   = 30
	imageSignalMin = 50
	badgeMin       = 60
	deepfakeFloor  = 15
)

// ClampScore rounds v and bounds it to 0..100.
func ClampScore(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	r := int(math.Round(v))
	if r < 0 {
		return 0
	}
	if r > 100 {
		return 100
	}
	return r
}

// Percent converts a 0..1 probability into a 0..100 score.
func Percent(p float64) int {
	return ClampScore(p * 100)
}

// ClassifyTrust derives the classification from a final trust score.
func ClassifyTrust(score int) string {
	switch {
	case score >= 70:
		return ClassAuthentic
	case score >= 45:
		return ClassMixed
	default:
		return ClassSuspicious
	}
}

// ToxicityLevelFor maps a 0..100 toxicity score to a level.
func ToxicityLevelFor(toxicity int) string {
	switch {
	case toxicity > 80:
		return ToxicityHigh
	case toxicity > 50:
		return ToxicityMedium
	default:
		return ToxicityLow
	}
}

// NormalizeToxicityLevel accepts any casing and defaults to Low.
func NormalizeToxicityLevel(level string) string {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "high":
		return ToxicityHigh
	case "medium", "moderate":
		return ToxicityMedium
	default:
		return ToxicityLow
	}
}

// EnforceTextPolicy applies the hard override rules to a text result whatever
// backend produced it, then re-derives the classification from the final score.
func EnforceTextPolicy(text string, r *TextResult) {
	score := r.TrustScore
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	level := NormalizeToxicityLevel(r.ToxicityLevel)

	if ContainsProfanity(text) {
		level = ToxicityHigh
		score = min(score, capProfanity)
		if !hasToxicFlag(r.Flags) {
			r.Flags = append(r.Flags, "profanity")
		}
	} else if level == ToxicityHigh {
		score = min(score, capHigh)
	} else if level == ToxicityMedium {
		score = min(score, capMedium)
	}

	if hasToxicFlag(r.Flags) {
		score = min(score, capToxicFlag)
	}

	if score > 50 && level != ToxicityLow {
		score = min(score, capMedium)
	}

	r.TrustScore = score
	r.ToxicityLevel = level
	r.HateSpeechDetected = r.HateSpeechDetected || level == ToxicityHigh
	r.Classification = ClassifyTrust(score)
	if r.Flags == nil {
		r.Flags = []string{}
	}
}

func labelHas(label string, subs ...string) bool {
	lower := strings.ToLower(label)
	for _, s := range subs {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// AIGenerationScore is the score of the first label naming AI, as 0..100.
func AIGenerationScore(preds []inference.Prediction) int {
	for _, p := range preds {
		for _, w := range strings.Fields(strings.ToLower(p.Label)) {
			if w == "ai" || strings.HasPrefix(w, "ai-") {
				return Percent(p.Score)
			}
		}
	}
	return 0
}

// DeepfakeLikelihood derives a 0..100 manipulation likelihood from generic
// image-classification labels. Ambiguous outputs are floored toward authentic.
func DeepfakeLikelihood(preds []inference.Prediction) int {
	var realScore, fakeScore int
	for _, p := range preds {
		s := Percent(p.Score)
		switch {
		case labelHas(p.Label, "fake", "manipulated"):
			fakeScore = max(fakeScore, s)
		case labelHas(p.Label, "real", "authentic"):
			realScore = max(realScore, s)
		}
	}
	switch {
	case realScore > fakeScore && realScore > imageSignalMin:
		return 100 - realScore
	case fakeScore > imageSignalMin:
		return fakeScore
	default:
		return min(fakeScore, deepfakeFloor)
	}
}

// DeepfakeRisk maps a likelihood to a risk label.
func DeepfakeRisk(likelihood int) string {
	switch {
	case likelihood > 80:
		return "Critical"
	case likelihood > 60:
		return "High"
	case likelihood > 30:
		return "Medium"
	default:
		return "Low"
	}
}

// ImageTrust blends the AI-generation and deepfake scores. Low-signal images
// are floored at 50.
func ImageTrust(aiScore, deepfake int) int {
	switch {
	case aiScore > imageSignalMin:
		return 100 - aiScore
	case deepfake > imageSignalMin:
		return 100 - deepfake
	default:
		return max(50, 100-max(aiScore, deepfake))
	}
}

// ImageBadge picks the authenticity badge.
func ImageBadge(aiScore, deepfake int) string {
	switch {
	case aiScore > badgeMin:
		return BadgeAIGenerated
	case deepfake > badgeMin:
		return BadgeLikelyManipulated
	default:
		return BadgeLikelyAuthentic
	}
}
