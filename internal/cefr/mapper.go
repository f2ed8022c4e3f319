// Package cefr converts numeric rubric scores into CEFR proficiency bands
// and reconciles the bands of multiple standards into one consensus.
package cefr

import (
	"github.com/ebalci/oratio/internal/models"
	"github.com/ebalci/oratio/internal/standards"
)

// MapScore resolves a score against an ordered band table. Ranges are
// inclusive on both ends and the first containing range wins; the table is
// trusted as-is, overlap checking is the config's contract, not ours. A
// score outside every range maps to the undetermined sentinel. Total: never
// returns an error.
func MapScore(score float64, bands []standards.Band) string {
	for _, b := range bands {
		if score >= b.Min && score <= b.Max {
			return b.Label
		}
	}
	return models.UndeterminedCEFR
}
