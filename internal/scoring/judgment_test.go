package scoring

import (
	"context"
	"testing"

	"github.com/ebalci/oratio/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validJudgment() map[string]any {
	return map[string]any{
		"toefl": map[string]any{
			"overall": 3.2,
			"cefr":    "B2",
			"criteria": map[string]any{
				"delivery":     map[string]any{"score": 3.0, "comment": "Steady pacing."},
				"language_use": map[string]any{"score": 3.4, "comment": "Varied structures."},
				"topic_dev":    map[string]any{"score": 3.1, "comment": "Well developed."},
				"task":         map[string]any{"score": 3.2, "comment": "On task."},
			},
		},
		"common_errors": []any{
			map[string]any{"issue": "Article misuse", "example": "a informations", "suggested_fix": "Drop the article before 'information'."},
		},
		"recommendations": []any{
			"Practice linking words.",
			"Record and review answers.",
			"Expand topic vocabulary.",
			"Rehearse timed responses.",
			"Shadow native speakers.",
		},
	}
}

func TestJudgmentScorerMapsSections(t *testing.T) {
	std := loadStandard(t, "toefl")
	in := Input{Judgment: validJudgment()}

	card, err := NewJudgmentScorer().Score(context.Background(), std, in)
	require.NoError(t, err)

	require.Len(t, card.Criteria, 4)
	assert.Equal(t, 3.0, card.Criteria["delivery"].Score)
	assert.Equal(t, "Steady pacing.", card.Criteria["delivery"].Comment)

	require.Len(t, card.CommonErrors, 1)
	assert.Equal(t, "Article misuse", card.CommonErrors[0].Issue)
	assert.Equal(t, "Drop the article before 'information'.", card.CommonErrors[0].Fix)

	assert.Len(t, card.Recommendations, 5)
	assert.Len(t, card.EvidenceQuotes, 2)
}

func TestJudgmentScorerMissingJudgment(t *testing.T) {
	std := loadStandard(t, "toefl")

	_, err := NewJudgmentScorer().Score(context.Background(), std, Input{})
	require.ErrorIs(t, err, ErrInvalidJudgment)
}

func TestJudgmentScorerMissingRequiredField(t *testing.T) {
	std := loadStandard(t, "toefl")
	j := validJudgment()
	delete(j, "recommendations")

	_, err := NewJudgmentScorer().Score(context.Background(), std, Input{Judgment: j})
	require.ErrorIs(t, err, ErrInvalidJudgment)
}

func TestJudgmentScorerArrayBounds(t *testing.T) {
	std := loadStandard(t, "toefl")
	j := validJudgment()
	j["recommendations"] = []any{"only one"}

	_, err := NewJudgmentScorer().Score(context.Background(), std, Input{Judgment: j})
	require.ErrorIs(t, err, ErrInvalidJudgment)
}

func TestJudgmentScorerClampsOutOfScaleScores(t *testing.T) {
	std := loadStandard(t, "toefl")
	j := validJudgment()
	j["toefl"].(map[string]any)["criteria"].(map[string]any)["delivery"] = map[string]any{
		"score": 11.0, "comment": "over scale",
	}

	card, err := NewJudgmentScorer().Score(context.Background(), std, Input{Judgment: j})
	require.NoError(t, err)
	assert.Equal(t, std.ScaleMax, card.Criteria["delivery"].Score)
}

func TestJudgmentScorerQuoteFallback(t *testing.T) {
	std := loadStandard(t, "toefl")
	// No evidence_quotes field in the judgment at all.
	in := Input{
		Judgment: validJudgment(),
		Transcript: []models.ChatMessage{
			userMsg("I led the rollout of our new billing system."),
			userMsg("It failed twice before we found the configuration mistake."),
		},
	}

	card, err := NewJudgmentScorer().Score(context.Background(), std, in)
	require.NoError(t, err)
	// Absent quotes fall back to transcript-derived evidence.
	assert.Equal(t, []string{
		"I led the rollout of our new billing system.",
		"It failed twice before we found the configuration mistake.",
	}, card.EvidenceQuotes)
}
