// Package metrics derives word and turn statistics from an interview
// transcript. Extraction is a pure function with no failure mode: any
// transcript, including an empty one, yields well-defined non-negative
// values.
package metrics

import (
	"strings"

	"github.com/ebalci/oratio/internal/models"
)

// trailing punctuation stripped before uniqueness comparison.
const trimSet = ",.?!"

// TranscriptMetrics are the derived statistics for one transcript. Values
// are computed fresh per evaluation call and never cached.
type TranscriptMetrics struct {
	TotalWords      int     `json:"total_words"`
	UniqueWords     int     `json:"unique_words"`
	AvgWordsPerTurn float64 `json:"avg_words_per_turn"`
	UserTurns       int     `json:"user_turns"`
}

// Compute extracts TranscriptMetrics from a transcript. Only user-role
// messages count; word splitting is on whitespace, and uniqueness is
// case-insensitive with trailing ",.?!" stripped.
func Compute(transcript []models.ChatMessage) TranscriptMetrics {
	users := models.UserMessages(transcript)

	total := 0
	unique := map[string]struct{}{}
	for _, m := range users {
		for _, word := range strings.Fields(m.Content) {
			total++
			normalized := strings.TrimRight(strings.ToLower(word), trimSet)
			unique[normalized] = struct{}{}
		}
	}

	// max(turns, 1) keeps the average defined for empty transcripts.
	denom := len(users)
	if denom < 1 {
		denom = 1
	}

	return TranscriptMetrics{
		TotalWords:      total,
		UniqueWords:     len(unique),
		AvgWordsPerTurn: float64(total) / float64(denom),
		UserTurns:       len(users),
	}
}
