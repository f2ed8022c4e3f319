package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ebalci/oratio/internal/models"
	"github.com/mattn/go-runewidth"
)

// renderResult prints a dual-standard evaluation as an aligned terminal
// summary: one row per standard, then criterion detail, then the crosswalk.
func renderResult(w io.Writer, result *models.DualEvaluationResult) {
	const colStandard = 18
	const colOverall = 12
	const colCEFR = 6
	const colStatus = 8
	totalWidth := colStandard + colOverall + colCEFR + colStatus + 6 // 6 = 3 gaps × 2 spaces

	fmt.Fprintf(w, "\n")                                      //nolint:errcheck
	fmt.Fprintf(w, "%s\n", strings.Repeat("═", totalWidth))   //nolint:errcheck
	fmt.Fprintf(w, " EVALUATION SUMMARY\n")                   //nolint:errcheck
	fmt.Fprintf(w, "%s\n\n", strings.Repeat("═", totalWidth)) //nolint:errcheck

	fmt.Fprintf(w, "Session %s  (%ds, %d turns)\n\n", //nolint:errcheck
		result.SessionID, result.Session.DurationSec, result.Session.Turns)

	fmt.Fprintf(w, "%s  %s  %s  %s\n", //nolint:errcheck
		padRight("Standard", colStandard),
		padRight("Overall", colOverall),
		padRight("CEFR", colCEFR),
		"Status")
	fmt.Fprintf(w, "%s\n", strings.Repeat("─", totalWidth)) //nolint:errcheck

	for _, std := range result.Standards {
		overall := "—"
		if std.Overall != nil {
			overall = fmt.Sprintf("%.2f", *std.Overall)
		}
		band := "—"
		if std.CEFR != nil {
			band = *std.CEFR
		}
		fmt.Fprintf(w, "%s  %s  %s  %s\n", //nolint:errcheck
			padRight(truncateName(std.Label, colStandard), colStandard),
			padRight(overall, colOverall),
			padRight(band, colCEFR),
			std.Status)
	}

	for _, std := range result.Standards {
		if std.Status != models.StatusOK {
			fmt.Fprintf(w, "\n%s: %s\n", std.Label, std.Error) //nolint:errcheck
			continue
		}
		renderCriteria(w, std)
	}

	fmt.Fprintf(w, "\nConsensus CEFR: %s\n", result.Crosswalk.ConsensusCEFR) //nolint:errcheck
	if result.Crosswalk.Notes != "" {
		fmt.Fprintf(w, "%s\n", result.Crosswalk.Notes) //nolint:errcheck
	}
	for _, s := range result.Crosswalk.Strengths {
		fmt.Fprintf(w, "  + %s\n", s) //nolint:errcheck
	}
	for _, f := range result.Crosswalk.Focus {
		fmt.Fprintf(w, "  ~ %s\n", f) //nolint:errcheck
	}

	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "\n⚠️  %s\n", warning) //nolint:errcheck
	}
	fmt.Fprintf(w, "\n") //nolint:errcheck
}

func renderCriteria(w io.Writer, std models.StandardEvaluation) {
	ids := make([]string, 0, len(std.Criteria))
	nameWidth := len("Criterion")
	for id := range std.Criteria {
		ids = append(ids, id)
		if n := runewidth.StringWidth(criterionLabel(std, id)); n > nameWidth {
			nameWidth = n
		}
	}
	sort.Strings(ids)

	fmt.Fprintf(w, "\n%s\n", std.Label)                       //nolint:errcheck
	fmt.Fprintf(w, "%s\n", strings.Repeat("─", nameWidth+10)) //nolint:errcheck
	for _, id := range ids {
		c := std.Criteria[id]
		fmt.Fprintf(w, "%s  %6.2f  %s\n", //nolint:errcheck
			padRight(criterionLabel(std, id), nameWidth), c.Score, c.Comment)
	}
}

func criterionLabel(std models.StandardEvaluation, id string) string {
	if label, ok := std.CriterionLabels[id]; ok && label != "" {
		return label
	}
	return id
}

// truncateName shortens a name to maxLen runes, replacing the last rune with "…" if needed.
func truncateName(name string, maxLen int) string {
	runes := []rune(name)
	if len(runes) <= maxLen {
		return name
	}
	return string(runes[:maxLen-1]) + "…"
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}
