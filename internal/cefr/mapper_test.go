package cefr

import (
	"testing"

	"github.com/ebalci/oratio/internal/models"
	"github.com/ebalci/oratio/internal/standards"
	"github.com/stretchr/testify/assert"
)

var testBands = []standards.Band{
	{Min: 0, Max: 1, Label: "A1"},
	{Min: 1, Max: 2, Label: "B1"},
	{Min: 2, Max: 3, Label: "B2"},
	{Min: 3, Max: 3.5, Label: "C1"},
	{Min: 3.5, Max: 4, Label: "C2"},
}

func TestMapScoreFirstContainingRangeWins(t *testing.T) {
	// 1.0 sits on the boundary of A1 and B1; the earlier range wins.
	assert.Equal(t, "A1", MapScore(1.0, testBands))
	assert.Equal(t, "B1", MapScore(1.5, testBands))
	assert.Equal(t, "C2", MapScore(4.0, testBands))
}

func TestMapScoreIsTotal(t *testing.T) {
	for _, score := range []float64{-1, 0, 0.5, 2.7, 4, 4.01, 99, -0.0001} {
		label := MapScore(score, testBands)
		assert.NotEmpty(t, label, "score %v", score)
	}
	assert.Equal(t, models.UndeterminedCEFR, MapScore(-0.5, testBands))
	assert.Equal(t, models.UndeterminedCEFR, MapScore(4.5, testBands))
}

func TestMapScoreEmptyTable(t *testing.T) {
	assert.Equal(t, models.UndeterminedCEFR, MapScore(2.0, nil))
}

func TestMapScorePreservesEvaluationOrderForOverlaps(t *testing.T) {
	overlapping := []standards.Band{
		{Min: 0, Max: 4, Label: "B1"},
		{Min: 2, Max: 4, Label: "C1"},
	}
	assert.Equal(t, "B1", MapScore(3.0, overlapping))
}
