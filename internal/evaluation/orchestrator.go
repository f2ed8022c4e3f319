// Package evaluation drives a full dual-standard assessment of one
// transcript: both supported standards are always attempted, a failure in
// one never aborts the other, and the crosswalk reconciles whatever
// succeeded.
package evaluation

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ebalci/oratio/internal/cefr"
	"github.com/ebalci/oratio/internal/metrics"
	"github.com/ebalci/oratio/internal/models"
	"github.com/ebalci/oratio/internal/scoring"
	"github.com/ebalci/oratio/internal/standards"
)

// Low-evidence thresholds. Sessions below either produce a reliability
// warning on the result.
const (
	minDurationSec = 120
	minTotalWords  = 150
)

const (
	warnShortSession = "Session shorter than 120 seconds; treat scores as low-evidence."
	warnFewWords     = "Transcript contains fewer than 150 words; treat scores as low-evidence."
)

// JudgmentSource fetches one external judgment covering every standard.
// The orchestrator calls it at most once per request and shares the payload
// across standards.
type JudgmentSource interface {
	Evaluate(ctx context.Context, transcript []models.ChatMessage, metadata models.TranscriptMetadata, m metrics.TranscriptMetrics) (map[string]any, error)
}

// Request is one evaluation invocation. SessionID and Metadata are
// optional.
type Request struct {
	SessionID  string
	Transcript []models.ChatMessage
	Metadata   models.TranscriptMetadata
}

// Orchestrator assembles DualEvaluationResults. Construct one per process
// and share it; it holds no per-request state.
type Orchestrator struct {
	registry *standards.Registry
	scorer   scoring.Scorer
	judge    JudgmentSource
	now      func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithJudgmentSource attaches the external judgment fetch used by the
// judgment scorer variant. Leave unset for the heuristic variant.
func WithJudgmentSource(src JudgmentSource) Option {
	return func(o *Orchestrator) { o.judge = src }
}

// WithClock overrides the timestamp source. Tests use this.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New builds an Orchestrator around a standards registry and a scorer
// variant.
func New(registry *standards.Registry, scorer scoring.Scorer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry: registry,
		scorer:   scorer,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Evaluate scores the transcript against every supported standard and
// reconciles the outcome. It returns an error only for malformed requests;
// per-standard failures are downgraded into failed StandardEvaluations on
// the result.
func (o *Orchestrator) Evaluate(ctx context.Context, req Request) (*models.DualEvaluationResult, error) {
	if len(req.Transcript) == 0 {
		return nil, fmt.Errorf("evaluate: transcript is empty")
	}

	in := scoring.Input{
		Transcript: req.Transcript,
		Metrics:    metrics.Compute(req.Transcript),
		Metadata:   req.Metadata,
	}

	// One judgment call covers both standards. A fetch failure fails each
	// standard individually rather than the request.
	var judgeErr error
	if o.judge != nil {
		judgment, err := o.judge.Evaluate(ctx, req.Transcript, req.Metadata, in.Metrics)
		if err != nil {
			judgeErr = err
		} else {
			in.Judgment = judgment
		}
	}

	evals := make([]models.StandardEvaluation, len(standards.Supported))
	defs := make([]*standards.Standard, len(standards.Supported))

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range standards.Supported {
		g.Go(func() error {
			defs[i], evals[i] = o.evaluateStandard(gctx, id, in, judgeErr)
			return nil
		})
	}
	_ = g.Wait()

	crosswalkIn := make([]cefr.Input, len(evals))
	for i := range evals {
		crosswalkIn[i] = cefr.Input{Evaluation: evals[i], Definition: defs[i]}
	}
	crosswalk := cefr.Reconcile(crosswalkIn)

	result := &models.DualEvaluationResult{
		Session:       o.resolveSession(req),
		Standards:     evals,
		Crosswalk:     crosswalk,
		Warnings:      reliabilityWarnings(req.Metadata, in.Metrics),
		SessionID:     req.SessionID,
		ConsensusCEFR: crosswalk.ConsensusCEFR,
		GeneratedAt:   o.now().UTC(),
	}
	return result, nil
}

// evaluateStandard produces one StandardEvaluation. Any failure along the
// way is caught here and becomes a failed evaluation; nothing propagates.
func (o *Orchestrator) evaluateStandard(ctx context.Context, id string, in scoring.Input, judgeErr error) (*standards.Standard, models.StandardEvaluation) {
	std, err := o.registry.Load(id)
	if err != nil {
		return nil, models.FailedStandardEvaluation(id, strings.ToUpper(id), fmt.Errorf("load standard config: %w", err))
	}

	if judgeErr != nil {
		return std, models.FailedStandardEvaluation(std.ID, std.Label, fmt.Errorf("obtain external judgment: %w", judgeErr))
	}

	card, err := o.scorer.Score(ctx, std, in)
	if err != nil {
		return std, models.FailedStandardEvaluation(std.ID, std.Label, err)
	}

	overall := roundTo(weightedOverall(std, card.Criteria), std.Precision)
	band := cefr.MapScore(overall, std.Bands)

	recommendations := card.Recommendations
	if len(recommendations) == 0 {
		recommendations = scoring.RecommendationsFor(band)
	}

	return std, models.StandardEvaluation{
		StandardID:      std.ID,
		Label:           std.Label,
		Overall:         &overall,
		ScaleMax:        std.ScaleMax,
		CEFR:            &band,
		Criteria:        card.Criteria,
		CriterionLabels: std.CriterionLabels(),
		CommonErrors:    card.CommonErrors,
		Recommendations: recommendations,
		EvidenceQuotes:  card.EvidenceQuotes,
		Status:          models.StatusOK,
	}
}

// weightedOverall is the weight-blended criterion score. Criteria the
// scorer skipped contribute zero.
func weightedOverall(std *standards.Standard, criteria map[string]models.CriterionAssessment) float64 {
	total := 0.0
	for _, c := range std.Criteria {
		total += c.Weight * criteria[c.ID].Score
	}
	return total
}

func roundTo(v float64, digits int) float64 {
	shift := math.Pow(10, float64(digits))
	return math.Round(v*shift) / shift
}

// reliabilityWarnings returns nil, never an empty slice, so the warnings
// field disappears from serialized results when nothing applies.
func reliabilityWarnings(metadata models.TranscriptMetadata, m metrics.TranscriptMetrics) []string {
	var warnings []string
	if metadata.DurationSec != nil && *metadata.DurationSec < minDurationSec {
		warnings = append(warnings, warnShortSession)
	}
	if m.TotalWords < minTotalWords {
		warnings = append(warnings, warnFewWords)
	}
	return warnings
}

// resolveSession fills the session descriptor, preferring caller-declared
// metadata, then transcript timestamps, then the clock.
func (o *Orchestrator) resolveSession(req Request) models.SessionInfo {
	now := o.now().UTC()

	started := now
	ended := now
	switch {
	case req.Metadata.StartedAt != nil:
		started = *req.Metadata.StartedAt
	case len(req.Transcript) > 0 && !req.Transcript[0].Timestamp.IsZero():
		started = req.Transcript[0].Timestamp
	}
	switch {
	case req.Metadata.EndedAt != nil:
		ended = *req.Metadata.EndedAt
	case len(req.Transcript) > 0 && !req.Transcript[len(req.Transcript)-1].Timestamp.IsZero():
		ended = req.Transcript[len(req.Transcript)-1].Timestamp
	}

	duration := int(ended.Sub(started).Seconds())
	if req.Metadata.DurationSec != nil {
		duration = *req.Metadata.DurationSec
	}
	if duration < 0 {
		duration = 0
	}

	turns := len(models.UserMessages(req.Transcript))
	if req.Metadata.Turns != nil {
		turns = *req.Metadata.Turns
	}

	return models.SessionInfo{
		ID:          req.SessionID,
		StartedAt:   started,
		EndedAt:     ended,
		DurationSec: duration,
		Turns:       turns,
	}
}
