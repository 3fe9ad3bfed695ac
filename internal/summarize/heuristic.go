package summarize

import (
	"regexp"
	"strings"
)

const (
	NoContent = "No content available."

	maxSentences     = 3
	maxSummaryChars  = 300
	rawFallbackChars = 200
	ellipsis         = "..."
)

var sentenceBreak = regexp.MustCompile(`[.!?]+`)

// Heuristic joins the first three sentences of text.
func Heuristic(text string) string {
	if strings.TrimSpace(text) == "" {
		return NoContent
	}

	var sentences []string
	for _, s := range sentenceBreak.Split(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
			if len(sentences) == maxSentences {
				break
			}
		}
	}

	summary := strings.Join(sentences, ". ")
	if summary == "" {
		// only punctuation
		return truncateRunes(text, rawFallbackChars) + ellipsis
	}
	if !strings.HasSuffix(summary, ".") {
		summary += "."
	}
	if truncated := truncateRunes(summary, maxSummaryChars); truncated != summary {
		summary = truncated + ellipsis
	}
	return summary
}
