package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rumera-ai/rumera/internal/domain/inference"
)

func TestContainsProfanity(t *testing.T) {
	cases := map[string]bool{
		"you are a fucking idiot":      true,
		"MOTHERFUCKER":                 true,
		"what the hell":                true,
		"hello there, shell script":    false,
		"a cocktail and a scrapbook":   false,
		"This is a perfectly fine day": false,
		"Scunthorpe United":            false,
		"shitty weather":               true,
		"this is bullshit":             true,
		"goddamn liar":                 true,
		"total dipshit":                true,
		"horseshit answer":             true,
		"Amsterdam is lovely":          false,
	}
	for text, want := range cases {
		assert.Equal(t, want, ContainsProfanity(text), text)
	}
}

func TestEnforceTextPolicy_ProfanityCapsScore(t *testing.T) {
	for _, raw := range []int{0, 25, 26, 60, 95, 100, 140} {
		r := &TextResult{TrustScore: raw, ToxicityLevel: "low"}
		EnforceTextPolicy("you are a fucking idiot", r)

		assert.LessOrEqual(t, r.TrustScore, 25)
		assert.GreaterOrEqual(t, r.TrustScore, 0)
		assert.Equal(t, ToxicityHigh, r.ToxicityLevel)
		assert.Equal(t, ClassSuspicious, r.Classification)
		assert.Contains(t, r.Flags, "profanity")
	}
}

func TestEnforceTextPolicy_CompoundProfanity(t *testing.T) {
	r := &TextResult{TrustScore: 90, ToxicityLevel: ToxicityLow}
	EnforceTextPolicy("this is bullshit", r)

	assert.LessOrEqual(t, r.TrustScore, 25)
	assert.Equal(t, ToxicityHigh, r.ToxicityLevel)
	assert.Equal(t, ClassSuspicious, r.Classification)
}

func TestEnforceTextPolicy_LevelCaps(t *testing.T) {
	r := &TextResult{TrustScore: 90, ToxicityLevel: "High"}
	EnforceTextPolicy("some words", r)
	assert.Equal(t, 25, r.TrustScore)
	assert.True(t, r.HateSpeechDetected)

	r = &TextResult{TrustScore: 90, ToxicityLevel: "medium"}
	EnforceTextPolicy("some words", r)
	assert.Equal(t, 40, r.TrustScore)
	assert.Equal(t, ToxicityMedium, r.ToxicityLevel)
	assert.Equal(t, ClassSuspicious, r.Classification)
}

func TestEnforceTextPolicy_ToxicFlags(t *testing.T) {
	r := &TextResult{TrustScore: 80, ToxicityLevel: "Low", Flags: []string{"Possible Hate Speech"}}
	EnforceTextPolicy("neutral text", r)
	assert.Equal(t, 30, r.TrustScore)
	assert.Equal(t, ClassSuspicious, r.Classification)
}

func TestEnforceTextPolicy_CleanTextKeepsScore(t *testing.T) {
	r := &TextResult{TrustScore: 82, ToxicityLevel: "Low"}
	EnforceTextPolicy("The meeting is at noon.", r)
	assert.Equal(t, 82, r.TrustScore)
	assert.Equal(t, ClassAuthentic, r.Classification)
	assert.NotNil(t, r.Flags)
}

func TestClassifyTrust(t *testing.T) {
	assert.Equal(t, ClassAuthentic, ClassifyTrust(70))
	assert.Equal(t, ClassMixed, ClassifyTrust(69))
	assert.Equal(t, ClassMixed, ClassifyTrust(45))
	assert.Equal(t, ClassSuspicious, ClassifyTrust(44))
	assert.Equal(t, ClassSuspicious, ClassifyTrust(0))
}

func TestToxicityLevelFor(t *testing.T) {
	assert.Equal(t, ToxicityHigh, ToxicityLevelFor(81))
	assert.Equal(t, ToxicityMedium, ToxicityLevelFor(80))
	assert.Equal(t, ToxicityMedium, ToxicityLevelFor(51))
	assert.Equal(t, ToxicityLow, ToxicityLevelFor(50))
}

func TestDeepfakeLikelihood(t *testing.T) {
	// real dominates and is confident
	assert.Equal(t, 20, DeepfakeLikelihood([]inference.Prediction{
		{Label: "real face", Score: 0.8},
		{Label: "fake face", Score: 0.2},
	}))
	// fake dominates
	assert.Equal(t, 70, DeepfakeLikelihood([]inference.Prediction{
		{Label: "Manipulated", Score: 0.7},
		{Label: "authentic", Score: 0.3},
	}))
	// ambiguous: floored
	assert.Equal(t, 15, DeepfakeLikelihood([]inference.Prediction{
		{Label: "deepfake", Score: 0.4},
		{Label: "real", Score: 0.35},
	}))
	assert.Equal(t, 10, DeepfakeLikelihood([]inference.Prediction{{Label: "fake", Score: 0.1}}))
	// unrelated labels
	assert.Equal(t, 0, DeepfakeLikelihood([]inference.Prediction{{Label: "tabby cat", Score: 0.9}}))
}

func TestAIGenerationScore(t *testing.T) {
	preds := []inference.Prediction{
		{Label: "photograph", Score: 0.3},
		{Label: "AI generated image", Score: 0.62},
		{Label: "drawing", Score: 0.08},
	}
	assert.Equal(t, 62, AIGenerationScore(preds))
	assert.Equal(t, 0, AIGenerationScore([]inference.Prediction{{Label: "painting", Score: 1}}))
}

func TestImageTrustAndBadge(t *testing.T) {
	// both scores low: 100 - max, floored at 50
	for ai := 0; ai <= 50; ai += 10 {
		for df := 0; df <= 50; df += 10 {
			got := ImageTrust(ai, df)
			assert.Equal(t, max(50, 100-max(ai, df)), got)
			assert.GreaterOrEqual(t, got, 50)
		}
	}
	assert.Equal(t, 30, ImageTrust(70, 90))
	assert.Equal(t, 45, ImageTrust(40, 55))

	assert.Equal(t, BadgeAIGenerated, ImageBadge(61, 0))
	assert.Equal(t, BadgeLikelyManipulated, ImageBadge(60, 61))
	assert.Equal(t, BadgeLikelyAuthentic, ImageBadge(60, 60))
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0, ClampScore(-4))
	assert.Equal(t, 100, ClampScore(250))
	assert.Equal(t, 43, ClampScore(42.6))
}
