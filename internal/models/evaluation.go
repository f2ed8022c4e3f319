package models

import "time"

// Evaluation status values for a single standard.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// UndeterminedCEFR is the sentinel band used when no mapping is possible.
// It is never a guessed value.
const UndeterminedCEFR = "Undetermined"

// CriterionAssessment is one criterion's score and comment within a standard.
type CriterionAssessment struct {
	Score   float64 `json:"score"`
	Comment string  `json:"comment"`
}

// CommonError is a detected recurring language issue with a suggested fix.
type CommonError struct {
	Issue string `json:"issue"`
	Fix   string `json:"fix"`
}

// StandardEvaluation is the complete result for one assessment standard.
// It is constructed once per evaluation request and never mutated: either
// fully populated with StatusOK, or carrying only id/label/error with
// StatusFailed.
type StandardEvaluation struct {
	StandardID      string                         `json:"standard_id"`
	Label           string                         `json:"label"`
	Overall         *float64                       `json:"overall"`
	ScaleMax        float64                        `json:"scale_max,omitempty"`
	CEFR            *string                        `json:"cefr"`
	Criteria        map[string]CriterionAssessment `json:"criteria"`
	CriterionLabels map[string]string              `json:"criterion_labels"`
	CommonErrors    []CommonError                  `json:"common_errors"`
	Recommendations []string                       `json:"recommendations"`
	EvidenceQuotes  []string                       `json:"evidence_quotes"`
	Status          string                         `json:"status"`
	Error           string                         `json:"error,omitempty"`
}

// FailedStandardEvaluation builds the minimal failed-state result for a
// standard whose processing raised an error.
func FailedStandardEvaluation(standardID, label string, err error) StandardEvaluation {
	return StandardEvaluation{
		StandardID: standardID,
		Label:      label,
		Status:     StatusFailed,
		Error:      err.Error(),
	}
}

// CrosswalkSummary reconciles the per-standard bands into one consensus.
type CrosswalkSummary struct {
	ConsensusCEFR string   `json:"consensus_cefr"`
	Notes         string   `json:"notes"`
	Strengths     []string `json:"strengths"`
	Focus         []string `json:"focus"`
}

// SessionInfo describes the interview session an evaluation covers.
type SessionInfo struct {
	ID          string    `json:"id"`
	StartedAt   time.Time `json:"started_at"`
	EndedAt     time.Time `json:"ended_at"`
	DurationSec int       `json:"duration_sec"`
	Turns       int       `json:"turns"`
}

// DualEvaluationResult is the full outcome of one /evaluate invocation:
// exactly one StandardEvaluation per supported standard in fixed order, the
// crosswalk, and optional reliability warnings. Immutable once produced.
type DualEvaluationResult struct {
	Session       SessionInfo          `json:"session"`
	Standards     []StandardEvaluation `json:"standards"`
	Crosswalk     CrosswalkSummary     `json:"crosswalk"`
	Warnings      []string             `json:"warnings,omitempty"`
	SessionID     string               `json:"session_id"`
	ConsensusCEFR string               `json:"cefr_level"`
	GeneratedAt   time.Time            `json:"generated_at"`
}
