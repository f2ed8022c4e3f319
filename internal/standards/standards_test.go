package standards

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedDefaults(t *testing.T) {
	r := NewRegistry()

	for _, id := range Supported {
		std, err := r.Load(id)
		require.NoError(t, err, "standard %s", id)

		assert.Equal(t, id, std.ID)
		assert.NotEmpty(t, std.Label)
		assert.Greater(t, std.ScaleMax, 0.0)
		assert.NotEmpty(t, std.Criteria)
		assert.NotEmpty(t, std.Bands)

		sum := 0.0
		for _, c := range std.Criteria {
			sum += c.Weight
		}
		assert.InDelta(t, 1.0, sum, 1e-6, "weights for %s", id)
	}
}

func TestLoadUnknownStandard(t *testing.T) {
	r := NewRegistry()

	_, err := r.Load("cambridge")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLoadCachesAndInvalidates(t *testing.T) {
	r := NewRegistry()

	first, err := r.Load("toefl")
	require.NoError(t, err)
	second, err := r.Load("toefl")
	require.NoError(t, err)
	assert.Same(t, first, second, "cached load should return the same instance")

	r.Invalidate()
	third, err := r.Load("toefl")
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}

func TestOverrideDirWins(t *testing.T) {
	dir := t.TempDir()
	override := `
id: toefl
label: Custom TOEFL
scale_max: 4
precision: 2
criteria:
  - id: only
    label: Only Criterion
    weight: 1.0
    signals:
      base: 1.0
bands:
  - min: 0.0
    max: 4.0
    label: B1
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "toefl.yaml"), []byte(override), 0o644))

	r := NewRegistry(WithOverrideDir(dir))
	std, err := r.Load("toefl")
	require.NoError(t, err)
	assert.Equal(t, "Custom TOEFL", std.Label)
	require.Len(t, std.Criteria, 1)

	// ids without an override still resolve to the embedded default.
	ielts, err := r.Load("ielts")
	require.NoError(t, err)
	assert.Equal(t, "IELTS Speaking (0-9)", ielts.Label)
}

func TestMalformedDefinitionIsAnError(t *testing.T) {
	dir := t.TempDir()
	bad := `
id: toefl
label: Broken
scale_max: 4
criteria:
  - id: a
    label: A
    weight: 0.4
  - id: b
    label: B
    weight: 0.4
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "toefl.yaml"), []byte(bad), 0o644))

	r := NewRegistry(WithOverrideDir(dir))
	_, err := r.Load("toefl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weights sum")
}

func TestValidateJudgment(t *testing.T) {
	r := NewRegistry()
	std, err := r.Load("toefl")
	require.NoError(t, err)

	valid := map[string]any{
		"toefl": map[string]any{
			"overall": 3.2,
			"cefr":    "B2",
			"criteria": map[string]any{
				"delivery":     map[string]any{"score": 3.0, "comment": "steady"},
				"language_use": map[string]any{"score": 3.4, "comment": "varied"},
				"topic_dev":    map[string]any{"score": 3.1, "comment": "developed"},
				"task":         map[string]any{"score": 3.2, "comment": "complete"},
			},
		},
		"common_errors": []any{
			map[string]any{"issue": "agreement", "suggested_fix": "use 'I agree'"},
		},
		"recommendations": []any{"a", "b", "c", "d", "e"},
	}
	require.NoError(t, std.ValidateJudgment(valid))

	missingCriterion := map[string]any{
		"toefl": map[string]any{
			"criteria": map[string]any{
				"delivery": map[string]any{"score": 3.0, "comment": "steady"},
			},
		},
		"common_errors":   []any{map[string]any{"issue": "x", "suggested_fix": "y"}},
		"recommendations": []any{"a", "b", "c", "d", "e"},
	}
	require.Error(t, std.ValidateJudgment(missingCriterion))

	tooManyErrors := map[string]any{
		"toefl": valid["toefl"],
		"common_errors": []any{
			map[string]any{"issue": "1", "suggested_fix": "f"},
			map[string]any{"issue": "2", "suggested_fix": "f"},
			map[string]any{"issue": "3", "suggested_fix": "f"},
			map[string]any{"issue": "4", "suggested_fix": "f"},
			map[string]any{"issue": "5", "suggested_fix": "f"},
			map[string]any{"issue": "6", "suggested_fix": "f"},
		},
		"recommendations": []any{"a", "b", "c", "d", "e"},
	}
	require.Error(t, std.ValidateJudgment(tooManyErrors))
}
