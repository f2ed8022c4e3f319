package scoring

import (
	"context"
	"math"

	"github.com/ebalci/oratio/internal/models"
	"github.com/ebalci/oratio/internal/standards"
)

// Saturation ceilings for the three heuristic signals. Empirically chosen
// in the original rater and preserved for score compatibility; they are not
// derived from the official rubrics.
const (
	wordCeiling      = 120.0
	diversityCeiling = 80.0
	fluencyCeiling   = 25.0
)

// commentBucket selects a comment by descending score-to-scale ratio;
// first match wins, so the order of the table is load-bearing.
type commentBucket struct {
	minRatio float64
	comment  string
}

var commentBuckets = []commentBucket{
	{0.8, "Strong performance with nuanced expression."},
	{0.6, "Good control overall; refine clarity for top marks."},
	{0.375, "Develop more structure and precise vocabulary."},
	{0, "Focus on building longer, clearer responses."},
}

// HeuristicScorer derives criterion scores from transcript statistics
// alone. It is deterministic and never contacts the network.
type HeuristicScorer struct{}

// NewHeuristicScorer returns the deterministic scorer variant.
func NewHeuristicScorer() *HeuristicScorer {
	return &HeuristicScorer{}
}

// Score implements [Scorer]. It has no failure mode for well-formed
// standard definitions; Recommendations are left for the orchestrator to
// fill once the CEFR band is known.
func (h *HeuristicScorer) Score(_ context.Context, std *standards.Standard, in Input) (*Scorecard, error) {
	m := in.Metrics

	base := saturate(float64(m.TotalWords) / wordCeiling)
	diversity := saturate(float64(m.UniqueWords) / diversityCeiling)
	fluency := saturate(m.AvgWordsPerTurn / fluencyCeiling)

	criteria := make(map[string]models.CriterionAssessment, len(std.Criteria))
	for _, c := range std.Criteria {
		blended := c.Signals.Base*base + c.Signals.Diversity*diversity + c.Signals.Fluency*fluency
		score := clamp(blended*std.ScaleMax, 0, std.ScaleMax)
		if std.HalfPointSnap {
			score = snapHalf(score)
		}
		criteria[c.ID] = models.CriterionAssessment{
			Score:   score,
			Comment: commentFor(score, std.ScaleMax),
		}
	}

	return &Scorecard{
		Criteria:       criteria,
		CommonErrors:   DetectCommonErrors(in.Transcript),
		EvidenceQuotes: EvidenceQuotes(in.Transcript),
	}, nil
}

func commentFor(score, scaleMax float64) string {
	ratio := 0.0
	if scaleMax > 0 {
		ratio = score / scaleMax
	}
	for _, b := range commentBuckets {
		if ratio > b.minRatio {
			return b.comment
		}
	}
	return commentBuckets[len(commentBuckets)-1].comment
}

func saturate(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// snapHalf rounds to the nearest half point; band-based rubrics only score
// in 0.5 increments.
func snapHalf(v float64) float64 {
	return math.Round(v*2) / 2
}

var _ Scorer = (*HeuristicScorer)(nil)
