package models

import (
	"strings"
	"time"
)

// Message roles. Chronological order of the message slice is the only
// ordering signal; there are no message ids.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is a single turn in an interview transcript.
type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// WordCount returns the number of whitespace-separated words in the message.
func (m ChatMessage) WordCount() int {
	return len(strings.Fields(m.Content))
}

// TranscriptMetadata carries optional caller-declared facts about a
// transcript. Nil fields mean "not provided"; the orchestrator falls back to
// transcript-derived values.
type TranscriptMetadata struct {
	Lang        string     `json:"lang,omitempty"`
	DurationSec *int       `json:"duration_sec,omitempty"`
	Turns       *int       `json:"turns,omitempty"`
	WordCount   *int       `json:"word_count,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	EndedAt     *time.Time `json:"ended_at,omitempty"`
}

// UserMessages returns the user-role messages of a transcript in order.
func UserMessages(transcript []ChatMessage) []ChatMessage {
	var out []ChatMessage
	for _, m := range transcript {
		if m.Role == RoleUser {
			out = append(out, m)
		}
	}
	return out
}
