package scoring

import "github.com/ebalci/oratio/internal/models"

// evidenceQuoteCount is fixed: reports always show exactly two quotes.
const evidenceQuoteCount = 2

const minQuoteWords = 4

var quotePlaceholders = []string{
	"No extended learner responses were captured.",
	"Evidence unavailable for this session.",
}

// EvidenceQuotes selects the first two user messages with at least four
// words. A single qualifying message is repeated; none at all yields two
// fixed placeholders. Never fails, always returns exactly two entries.
func EvidenceQuotes(transcript []models.ChatMessage) []string {
	var quotes []string
	for _, m := range models.UserMessages(transcript) {
		if m.WordCount() >= minQuoteWords {
			quotes = append(quotes, m.Content)
			if len(quotes) == evidenceQuoteCount {
				return quotes
			}
		}
	}

	if len(quotes) == 1 {
		return []string{quotes[0], quotes[0]}
	}
	return append([]string(nil), quotePlaceholders...)
}
