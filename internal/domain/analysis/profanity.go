package analysis

import (
	"regexp"
	"strings"
)

// Long stems match anywhere in a word ("bullshit", "goddamn", "fucking").
// Short words only match whole, so "hello", "shell" and "cocktail" stay clean.
var profanityPattern = regexp.MustCompile(`(?i)\w*(?:fuck|shit|bitch|piss|bastard|asshole|pussy|damn)\w*|\b(?:hell|arse|dick|cock|crap)\b`)

// ContainsProfanity reports whether text matches the profanity word list.
func ContainsProfanity(text string) bool {
	return profanityPattern.MatchString(text)
}

var toxicFlagMarkers = []string{"profanity", "curse", "hate", "slur", "offensive", "toxic"}

// hasToxicFlag reports whether any flag names toxic content.
func hasToxicFlag(flags []string) bool {
	for _, f := range flags {
		lower := strings.ToLower(f)
		for _, m := range toxicFlagMarkers {
			if strings.Contains(lower, m) {
				return true
			}
		}
	}
	return false
}
