// Package conversation supplies the interviewer's side of a session: a
// fixed plan of prompts progressing from warmup questions through
// behavioral and technical prompts to a close, keyed off how many turns
// each side has taken.
package conversation

import "github.com/ebalci/oratio/internal/models"

var warmupPrompts = []string{
	"Hello! I'm your English interview coach. Could you briefly introduce yourself?",
	"Great to meet you. What motivated you to practice your speaking skills today?",
}

var behavioralPrompts = []string{
	"Tell me about a time when you had to solve a challenging problem at work.",
	"Describe a situation where you collaborated with a team to achieve a goal.",
	"Can you share an example of when you had to learn something quickly?",
}

var techPrompts = []string{
	"Imagine you must explain a complex concept from your field to a new colleague. How would you approach it?",
	"What tools or technologies are essential in your day-to-day work?",
}

var followUps = []string{
	"What was the outcome and what did you learn?",
	"How did your colleagues respond?",
	"If you had another chance, what would you do differently?",
}

var closingPrompts = []string{
	"Thanks for sharing those insights. Do you have any questions for me before we wrap up?",
	"It was great speaking with you today. Ready for your feedback?",
}

// NextPrompt returns the interviewer's next question for the given history.
// It is pure; the same history always yields the same prompt.
func NextPrompt(history []models.ChatMessage) string {
	userTurns := 0
	assistantTurns := 0
	for _, m := range history {
		switch m.Role {
		case models.RoleUser:
			userTurns++
		case models.RoleAssistant:
			assistantTurns++
		}
	}

	if assistantTurns == 0 {
		return warmupPrompts[0]
	}

	if userTurns <= 1 && assistantTurns < len(warmupPrompts) {
		return warmupPrompts[assistantTurns]
	}

	if userTurns <= 3 {
		return behavioralPrompts[mod(assistantTurns-len(warmupPrompts), len(behavioralPrompts))]
	}

	if userTurns == 4 {
		return techPrompts[0]
	}

	if userTurns >= 5 && userTurns < 7 {
		return followUps[mod(userTurns-5, len(followUps))]
	}

	return closingPrompts[mod(assistantTurns-userTurns, len(closingPrompts))]
}

// mod is the non-negative remainder.
func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}
