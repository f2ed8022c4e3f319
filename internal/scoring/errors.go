package scoring

import (
	"strings"

	"github.com/ebalci/oratio/internal/models"
)

// detector flags one recurring language issue in a single user message.
// Detectors run in order and the first match wins for that message.
type detector struct {
	issue string
	fix   string
	match func(content, lower string) bool
}

var errorDetectors = []detector{
	{
		issue: "Non-standard agreement phrase",
		fix:   "Use 'I agree' instead of 'I am agree'.",
		match: func(_, lower string) bool { return strings.Contains(lower, "i am agree") },
	},
	{
		issue: "Uncountable noun misuse",
		fix:   "'Information' is uncountable; say 'some information'.",
		match: func(_, lower string) bool { return strings.Contains(lower, "a information") },
	},
	{
		issue: "Subject-verb agreement slip",
		fix:   "Use third-person singular 'he goes'.",
		match: func(_, lower string) bool { return strings.Contains(lower, "he go ") },
	},
	{
		issue: "Short response",
		fix:   "Provide fuller answers with supporting details.",
		match: func(content, lower string) bool {
			return len(strings.Fields(content)) < 4 && !strings.HasSuffix(strings.TrimSpace(lower), "?")
		},
	},
	{
		issue: "Question-ended answer",
		fix:   "Answer the prompt directly instead of returning a question.",
		match: func(_, lower string) bool { return strings.HasSuffix(strings.TrimSpace(lower), "?") },
	},
}

// defaultErrorPool backfills detections in priority order until at least
// three entries exist.
var defaultErrorPool = []models.CommonError{
	{Issue: "Limited elaboration", Fix: "Expand answers with clear structure and varied vocabulary."},
	{Issue: "Simple sentence patterns", Fix: "Combine short sentences with linking words such as 'because' and 'although'."},
	{Issue: "Narrow vocabulary range", Fix: "Rehearse topic-specific vocabulary before the interview."},
}

// fillerError stands in when no detector fires at all.
var fillerError = models.CommonError{
	Issue: "Limited elaboration",
	Fix:   "Expand answers with clear structure and varied vocabulary.",
}

const maxDetections = 5

// DetectCommonErrors scans the user messages of a transcript against the
// ordered detector set: up to 5 first-match detections across messages,
// deduplicated by issue label, then backfilled from the default pool until
// at least 3 entries exist or the pool is exhausted. Zero detections yield
// a single fixed filler entry, never an empty list.
func DetectCommonErrors(transcript []models.ChatMessage) []models.CommonError {
	var detected []models.CommonError
	for _, msg := range models.UserMessages(transcript) {
		if len(detected) >= maxDetections {
			break
		}
		lower := strings.ToLower(msg.Content)
		for _, d := range errorDetectors {
			if d.match(msg.Content, lower) {
				detected = append(detected, models.CommonError{Issue: d.issue, Fix: d.fix})
				break
			}
		}
	}

	if len(detected) == 0 {
		return []models.CommonError{fillerError}
	}

	seen := map[string]bool{}
	var out []models.CommonError
	for _, ce := range detected {
		if seen[ce.Issue] {
			continue
		}
		seen[ce.Issue] = true
		out = append(out, ce)
	}

	for _, ce := range defaultErrorPool {
		if len(out) >= 3 {
			break
		}
		if seen[ce.Issue] {
			continue
		}
		seen[ce.Issue] = true
		out = append(out, ce)
	}

	return out
}
