package scoring

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/ebalci/oratio/internal/models"
	"github.com/ebalci/oratio/internal/standards"
)

// ErrInvalidJudgment marks a judgment document that fails a standard's
// declared schema: a missing required field or an array outside its
// declared item bounds. Hard failure for that standard only.
var ErrInvalidJudgment = errors.New("invalid judgment")

// judgmentDoc is the decoded shape of an external judgment. Sections are
// keyed by standard id at the top level and decoded separately.
type judgmentDoc struct {
	CommonErrors []struct {
		Issue        string `mapstructure:"issue"`
		Example      string `mapstructure:"example"`
		SuggestedFix string `mapstructure:"suggested_fix"`
	} `mapstructure:"common_errors"`
	Recommendations []string `mapstructure:"recommendations"`
	EvidenceQuotes  []string `mapstructure:"evidence_quotes"`
}

type judgmentSection struct {
	Overall  *float64 `mapstructure:"overall"`
	CEFR     string   `mapstructure:"cefr"`
	Criteria map[string]struct {
		Score   float64 `mapstructure:"score"`
		Comment string  `mapstructure:"comment"`
	} `mapstructure:"criteria"`
}

// JudgmentScorer maps a pre-computed external judgment onto the standard
// scorecard shape. The external call itself happens upstream; this variant
// only validates and maps.
type JudgmentScorer struct{}

// NewJudgmentScorer returns the external-judgment scorer variant.
func NewJudgmentScorer() *JudgmentScorer {
	return &JudgmentScorer{}
}

// Score implements [Scorer].
func (j *JudgmentScorer) Score(_ context.Context, std *standards.Standard, in Input) (*Scorecard, error) {
	if in.Judgment == nil {
		return nil, fmt.Errorf("%w: no judgment supplied for standard %s", ErrInvalidJudgment, std.ID)
	}

	if err := std.ValidateJudgment(in.Judgment); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJudgment, err)
	}

	var doc judgmentDoc
	if err := mapstructure.Decode(in.Judgment, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode judgment: %v", ErrInvalidJudgment, err)
	}

	var section judgmentSection
	if err := mapstructure.Decode(in.Judgment[std.ID], &section); err != nil {
		return nil, fmt.Errorf("%w: decode %s section: %v", ErrInvalidJudgment, std.ID, err)
	}

	criteria := make(map[string]models.CriterionAssessment, len(std.Criteria))
	for _, c := range std.Criteria {
		raw, ok := section.Criteria[c.ID]
		if !ok {
			// Unreachable when the schema lists every criterion as required.
			return nil, fmt.Errorf("%w: judgment for %s is missing criterion %s", ErrInvalidJudgment, std.ID, c.ID)
		}
		criteria[c.ID] = models.CriterionAssessment{
			Score:   clamp(raw.Score, 0, std.ScaleMax),
			Comment: raw.Comment,
		}
	}

	commonErrors := make([]models.CommonError, 0, len(doc.CommonErrors))
	for _, ce := range doc.CommonErrors {
		commonErrors = append(commonErrors, models.CommonError{Issue: ce.Issue, Fix: ce.SuggestedFix})
	}

	quotes := doc.EvidenceQuotes
	if len(quotes) != evidenceQuoteCount {
		quotes = EvidenceQuotes(in.Transcript)
	}

	return &Scorecard{
		Criteria:        criteria,
		CommonErrors:    commonErrors,
		Recommendations: doc.Recommendations,
		EvidenceQuotes:  quotes,
	}, nil
}

var _ Scorer = (*JudgmentScorer)(nil)
