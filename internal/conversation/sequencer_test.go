package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ebalci/oratio/internal/models"
)

func turn(role, content string) models.ChatMessage {
	return models.ChatMessage{Role: role, Content: content}
}

func TestNextPromptProgression(t *testing.T) {
	var history []models.ChatMessage

	// Empty history opens with the first warmup question.
	first := NextPrompt(history)
	assert.Equal(t, warmupPrompts[0], first)
	history = append(history, turn(models.RoleAssistant, first))

	// One user reply still inside the warmup block.
	history = append(history, turn(models.RoleUser, "I am a backend developer from Izmir."))
	second := NextPrompt(history)
	assert.Equal(t, warmupPrompts[1], second)
	history = append(history, turn(models.RoleAssistant, second))

	// Replies two and three draw from the behavioral block.
	history = append(history, turn(models.RoleUser, "I want to prepare for interviews abroad."))
	third := NextPrompt(history)
	assert.Contains(t, behavioralPrompts, third)
	history = append(history, turn(models.RoleAssistant, third))

	history = append(history, turn(models.RoleUser, "Last year our deployment pipeline broke the night before a release."))
	fourth := NextPrompt(history)
	assert.Contains(t, behavioralPrompts, fourth)
	history = append(history, turn(models.RoleAssistant, fourth))

	// Fourth reply switches to the technical block.
	history = append(history, turn(models.RoleUser, "We rebuilt it together and shipped a day late."))
	fifth := NextPrompt(history)
	assert.Equal(t, techPrompts[0], fifth)
	history = append(history, turn(models.RoleAssistant, fifth))

	// Replies five and six get follow-ups.
	history = append(history, turn(models.RoleUser, "I would explain it with a concrete example first."))
	sixth := NextPrompt(history)
	assert.Equal(t, followUps[0], sixth)
	history = append(history, turn(models.RoleAssistant, sixth))

	history = append(history, turn(models.RoleUser, "The outcome was positive and we kept the practice."))
	seventh := NextPrompt(history)
	assert.Equal(t, followUps[1], seventh)
	history = append(history, turn(models.RoleAssistant, seventh))

	// From the seventh reply on the interview closes.
	history = append(history, turn(models.RoleUser, "Nothing else from my side, thank you."))
	assert.Contains(t, closingPrompts, NextPrompt(history))
}

func TestNextPromptDeterministic(t *testing.T) {
	history := []models.ChatMessage{
		turn(models.RoleAssistant, warmupPrompts[0]),
		turn(models.RoleUser, "Hello, nice to meet you."),
	}
	assert.Equal(t, NextPrompt(history), NextPrompt(history))
}
