package cefr

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ebalci/oratio/internal/models"
	"github.com/ebalci/oratio/internal/standards"
)

// canonical CEFR codes in ascending order; rank = index + 1.
var canonicalBands = []string{"A1", "A2", "B1", "B2", "C1", "C2"}

// noEvaluationsNote is used when there are zero per-standard clauses.
const noEvaluationsNote = "No evaluations completed."

var (
	defaultStrengths = []string{
		"Clear willingness to communicate",
		"Consistent engagement with the prompts",
	}
	defaultFocus = []string{
		"Grammatical accuracy",
		"Response development",
	}
)

// Input pairs one standard's evaluation with its loaded definition. The
// definition is nil when the standard failed before its config resolved.
type Input struct {
	Evaluation models.StandardEvaluation
	Definition *standards.Standard
}

// bandRank maps a band label onto the six-point ordinal scale. Labels
// containing none of the canonical codes have no rank and are excluded from
// averaging.
func bandRank(label string) (int, bool) {
	upper := strings.ToUpper(label)
	for i, code := range canonicalBands {
		if strings.Contains(upper, code) {
			return i + 1, true
		}
	}
	return 0, false
}

// consensusFromRanks picks the band nearest to the mean rank using fixed
// rank-midpoint thresholds.
func consensusFromRanks(ranks []int) string {
	if len(ranks) == 0 {
		return models.UndeterminedCEFR
	}
	sum := 0
	for _, r := range ranks {
		sum += r
	}
	mean := float64(sum) / float64(len(ranks))
	for i := range canonicalBands {
		if mean < float64(i)+1.5 {
			return canonicalBands[i]
		}
	}
	return canonicalBands[len(canonicalBands)-1]
}

// Reconcile combines the per-standard evaluations into a CrosswalkSummary.
// Only StatusOK entries with a band participate in the consensus; if none
// qualify the consensus is the undetermined sentinel, never a guess.
func Reconcile(inputs []Input) models.CrosswalkSummary {
	var ranks []int
	var succeededBands []string
	var clauses []string

	for _, in := range inputs {
		ev := in.Evaluation
		if ev.Status != models.StatusOK || ev.CEFR == nil {
			clauses = append(clauses, fmt.Sprintf("%s unavailable", ev.Label))
			continue
		}

		band := *ev.CEFR
		overall := ""
		if ev.Overall != nil {
			overall = strconv.FormatFloat(*ev.Overall, 'g', -1, 64)
		}
		clauses = append(clauses, fmt.Sprintf("%s %s≈%s", ev.Label, overall, band))
		succeededBands = append(succeededBands, band)

		if r, ok := bandRank(band); ok {
			ranks = append(ranks, r)
		}
	}

	return models.CrosswalkSummary{
		ConsensusCEFR: consensusFromRanks(ranks),
		Notes:         buildNotes(clauses, succeededBands),
		Strengths:     harvestStrengths(inputs),
		Focus:         harvestFocus(inputs),
	}
}

func buildNotes(clauses, succeededBands []string) string {
	if len(clauses) == 0 {
		return noEvaluationsNote
	}

	notes := strings.Join(clauses, ", ")

	allSame := len(succeededBands) > 0
	for _, b := range succeededBands[1:] {
		if b != succeededBands[0] {
			allSame = false
			break
		}
	}

	switch {
	case allSame:
		notes += "; consistent."
	case len(succeededBands) >= 2:
		notes += "; slight variance across standards."
	}
	return notes
}

// harvestStrengths picks the top-scoring criterion labels by score-to-scale
// ratio across successful standards, visited in declaration order, deduped
// and capped at 2.
func harvestStrengths(inputs []Input) []string {
	type rated struct {
		label string
		ratio float64
	}
	var all []rated

	for _, in := range inputs {
		ev := in.Evaluation
		if ev.Status != models.StatusOK || in.Definition == nil || in.Definition.ScaleMax <= 0 {
			continue
		}
		for _, c := range in.Definition.Criteria {
			assessment, ok := ev.Criteria[c.ID]
			if !ok {
				continue
			}
			all = append(all, rated{label: c.Label, ratio: assessment.Score / in.Definition.ScaleMax})
		}
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].ratio > all[j].ratio })

	var out []string
	seen := map[string]bool{}
	for _, r := range all {
		if seen[r.label] {
			continue
		}
		seen[r.label] = true
		out = append(out, r.label)
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return append([]string(nil), defaultStrengths...)
	}
	return out
}

// harvestFocus picks the first distinct common-error issues across
// standards in order, capped at 2.
func harvestFocus(inputs []Input) []string {
	var out []string
	seen := map[string]bool{}
	for _, in := range inputs {
		for _, ce := range in.Evaluation.CommonErrors {
			if seen[ce.Issue] {
				continue
			}
			seen[ce.Issue] = true
			out = append(out, ce.Issue)
			if len(out) == 2 {
				return out
			}
		}
	}
	if len(out) == 0 {
		return append([]string(nil), defaultFocus...)
	}
	return out
}
