// Package scoring turns a transcript (or an opaque external judgment) into
// per-criterion assessments for a named standard. Two variants implement
// one capability interface and are selected per deployment, not per
// request: a deterministic heuristic scorer and a judgment-backed scorer
// that maps a pre-computed external evaluation.
package scoring

import (
	"context"

	"github.com/ebalci/oratio/internal/metrics"
	"github.com/ebalci/oratio/internal/models"
	"github.com/ebalci/oratio/internal/standards"
)

// Input carries everything a variant may need. Judgment is only populated
// on the external-judgment path; the heuristic variant ignores it.
type Input struct {
	Transcript []models.ChatMessage
	Metrics    metrics.TranscriptMetrics
	Metadata   models.TranscriptMetadata
	Judgment   map[string]any
}

// Scorecard is the per-standard output of a scorer variant. Recommendations
// may be left empty by variants that cannot know the CEFR band yet; the
// orchestrator fills them from the band table once the band is mapped.
type Scorecard struct {
	Criteria        map[string]models.CriterionAssessment
	CommonErrors    []models.CommonError
	Recommendations []string
	EvidenceQuotes  []string
}

// Scorer produces per-criterion assessments for a standard.
type Scorer interface {
	Score(ctx context.Context, std *standards.Standard, in Input) (*Scorecard, error)
}
