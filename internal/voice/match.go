package voice

import (
	"strings"
	"unicode"
)

// Descriptor is one voice offered by a local engine.
type Descriptor struct {
	ID       string
	Name     string
	Language string
	Gender   string
}

// Match picks the voice for profile and returns its index in voices.
//
// Each voice scores 2 for the profile's gender and 2 for its accent. A British
// accent is a language tag of en-gb or a name mentioning Britain or UK. The
// first highest-scoring voice wins; with no positive score, or no preference,
// the first voice is used.
func Match(profile Profile, voices []Descriptor) int {
	best, bestScore := 0, 0
	for i, v := range voices {
		score := 0
		if profile.Gender != "" && v.Gender == profile.Gender {
			score += 2
		}
		if profile.Accent == AccentBritish && isBritish(v) {
			score += 2
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}

func isBritish(v Descriptor) bool {
	if strings.EqualFold(v.Language, "en-gb") || strings.HasPrefix(strings.ToLower(v.Language), "en-gb-") {
		return true
	}
	for _, word := range strings.FieldsFunc(strings.ToLower(v.Name), notLetter) {
		if word == "uk" || word == "british" || word == "britain" {
			return true
		}
	}
	return false
}

func notLetter(r rune) bool {
	return !unicode.IsLetter(r)
}
