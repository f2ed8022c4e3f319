// Package report renders a DualEvaluationResult into the styled HTML
// assessment report and persists it under the reports directory.
package report

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ebalci/oratio/internal/models"
)

// Participant identifies who completed the assessment.
type Participant struct {
	FullName string `json:"full_name,omitempty"`
	Email    string `json:"email,omitempty"`
}

// Metadata is optional caller-supplied context rendered into the report.
type Metadata struct {
	Participant       *Participant `json:"participant,omitempty"`
	Summary           string       `json:"summary,omitempty"`
	ReportGeneratedAt string       `json:"report_generated_at,omitempty"`
}

// Renderer builds and persists reports.
type Renderer struct {
	Lang    language.Tag
	BaseURL string
	Dir     string

	now func() time.Time
}

// NewRenderer builds a Renderer writing into dir, linking under baseURL.
func NewRenderer(lang language.Tag, baseURL, dir string) *Renderer {
	return &Renderer{Lang: lang, BaseURL: baseURL, Dir: dir, now: time.Now}
}

type criterionRow struct {
	Label        string
	ScoreCaption string
	Comment      string
}

type standardView struct {
	Label           string
	Failed          bool
	Error           string
	OverallCaption  string
	CEFR            string
	Rows            []criterionRow
	CommonErrors    []models.CommonError
	Recommendations []string
	Quotes          []string
}

type reportView struct {
	Lang                string
	Badges              []string
	ParticipantSentence string
	SessionSummary      string
	ConsensusCEFR       string
	Notes               string
	Strengths           string
	Focus               string
	Warnings            []string
	Standards           []standardView
	Session             models.SessionInfo
	StartedAt           string
	EndedAt             string
	GeneratedDisplay    string
}

// Render produces the full HTML report.
func (r *Renderer) Render(result *models.DualEvaluationResult, meta *Metadata) (string, error) {
	view := r.buildView(result, meta)

	var sb strings.Builder
	if err := reportTemplate.Execute(&sb, view); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return sb.String(), nil
}

// Persist renders the report, writes it under the reports directory with a
// timestamped filename, and returns the HTML plus its download URL.
func (r *Renderer) Persist(result *models.DualEvaluationResult, meta *Metadata) (html, url string, err error) {
	html, err = r.Render(result, meta)
	if err != nil {
		return "", "", err
	}

	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create reports dir: %w", err)
	}

	filename := fmt.Sprintf("report_%s_%s.html", result.Session.ID, r.clock().UTC().Format("20060102150405"))
	if err := os.WriteFile(filepath.Join(r.Dir, filename), []byte(html), 0o644); err != nil {
		return "", "", fmt.Errorf("write report: %w", err)
	}

	return html, strings.TrimRight(r.BaseURL, "/") + "/reports/" + filename, nil
}

func (r *Renderer) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

func (r *Renderer) buildView(result *models.DualEvaluationResult, meta *Metadata) reportView {
	view := reportView{
		Lang:                r.langCode(),
		Badges:              buildBadges(result),
		ParticipantSentence: r.participantSentence(result, meta),
		ConsensusCEFR:       result.Crosswalk.ConsensusCEFR,
		Notes:               result.Crosswalk.Notes,
		Strengths:           strings.Join(result.Crosswalk.Strengths, ", "),
		Focus:               strings.Join(result.Crosswalk.Focus, ", "),
		Warnings:            result.Warnings,
		Session:             result.Session,
		StartedAt:           result.Session.StartedAt.Format(time.RFC3339),
		EndedAt:             result.Session.EndedAt.Format(time.RFC3339),
		GeneratedDisplay:    generatedDisplay(result, meta),
	}

	if meta != nil && strings.TrimSpace(meta.Summary) != "" {
		view.SessionSummary = strings.TrimSpace(meta.Summary)
	}

	for _, std := range result.Standards {
		view.Standards = append(view.Standards, buildStandardView(std))
	}
	return view
}

func (r *Renderer) langCode() string {
	if r.Lang == language.Turkish {
		return "tr"
	}
	return "en"
}

func buildStandardView(std models.StandardEvaluation) standardView {
	if std.Status != models.StatusOK {
		errText := std.Error
		if errText == "" {
			errText = "Unknown error"
		}
		return standardView{Label: std.Label, Failed: true, Error: errText}
	}

	view := standardView{
		Label:           std.Label,
		OverallCaption:  overallCaption(std),
		CEFR:            deref(std.CEFR, "—"),
		CommonErrors:    std.CommonErrors,
		Recommendations: std.Recommendations,
		Quotes:          std.EvidenceQuotes,
	}

	scaleMax := scaleMaxFor(std)

	// Sorted ids keep identical results rendering identical reports.
	ids := make([]string, 0, len(std.Criteria))
	for id := range std.Criteria {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	titler := cases.Title(language.English)
	for _, id := range ids {
		c := std.Criteria[id]
		label := std.CriterionLabels[id]
		if label == "" {
			label = titler.String(strings.ReplaceAll(id, "_", " "))
		}
		view.Rows = append(view.Rows, criterionRow{
			Label:        label,
			ScoreCaption: fmt.Sprintf("%.2f / %g", c.Score, scaleMax),
			Comment:      c.Comment,
		})
	}
	return view
}

// scaleMaxFor prefers the scale the evaluation carries from its standard
// config; results without one fall back to the built-in scales.
func scaleMaxFor(std models.StandardEvaluation) float64 {
	if std.ScaleMax > 0 {
		return std.ScaleMax
	}
	if std.StandardID == "ielts" {
		return 9
	}
	return 4
}

func overallCaption(std models.StandardEvaluation) string {
	if std.Overall == nil {
		return "—"
	}
	if std.StandardID == "ielts" {
		return fmt.Sprintf("Band %.1f", *std.Overall)
	}
	return fmt.Sprintf("%.2f / %g", *std.Overall, scaleMaxFor(std))
}

func buildBadges(result *models.DualEvaluationResult) []string {
	var toefl, ielts *models.StandardEvaluation
	for i := range result.Standards {
		switch result.Standards[i].StandardID {
		case "toefl":
			toefl = &result.Standards[i]
		case "ielts":
			ielts = &result.Standards[i]
		}
	}

	badge := func(std *models.StandardEvaluation, name string) string {
		if std == nil || std.Status != models.StatusOK || std.Overall == nil {
			return name + " unavailable"
		}
		if std.StandardID == "ielts" {
			return fmt.Sprintf("IELTS %.1f/%g (~%s)", *std.Overall, scaleMaxFor(*std), deref(std.CEFR, "—"))
		}
		return fmt.Sprintf("TOEFL %.2f/%g (~%s)", *std.Overall, scaleMaxFor(*std), deref(std.CEFR, "—"))
	}

	return []string{
		badge(toefl, "TOEFL"),
		badge(ielts, "IELTS"),
		"Consensus CEFR: " + result.Crosswalk.ConsensusCEFR,
	}
}

// participantSentence builds the localized attribution line under the
// badges. The timestamp comes from metadata when parseable, otherwise from
// the evaluation itself.
func (r *Renderer) participantSentence(result *models.DualEvaluationResult, meta *Metadata) string {
	ts := result.GeneratedAt
	tzSuffix := " (UTC)"
	if meta != nil && meta.ReportGeneratedAt != "" {
		if parsed, err := time.Parse(time.RFC3339, meta.ReportGeneratedAt); err == nil {
			ts = parsed
			tzSuffix = " (" + parsed.Format("MST") + ")"
		}
	}
	stamp := ts.Format("02.01.2006 15:04") + tzSuffix

	identity := ""
	if meta != nil && meta.Participant != nil {
		name := strings.TrimSpace(meta.Participant.FullName)
		email := strings.TrimSpace(meta.Participant.Email)
		switch {
		case name != "" && email != "":
			identity = name + " (" + email + ")"
		case name != "":
			identity = name
		case email != "":
			identity = email
		}
	}

	if r.Lang == language.Turkish {
		if identity != "" {
			return fmt.Sprintf("Bu rapor %s tarihinde %s tarafından gerçekleştirilen değerlendirmeye aittir.", stamp, identity)
		}
		return fmt.Sprintf("Bu rapor %s tarihinde oluşturuldu.", stamp)
	}
	if identity != "" {
		return fmt.Sprintf("This report belongs to the assessment completed by %s on %s.", identity, stamp)
	}
	return fmt.Sprintf("This report was generated on %s.", stamp)
}

func generatedDisplay(result *models.DualEvaluationResult, meta *Metadata) string {
	ts := result.GeneratedAt
	suffix := " (UTC)"
	if meta != nil && meta.ReportGeneratedAt != "" {
		if parsed, err := time.Parse(time.RFC3339, meta.ReportGeneratedAt); err == nil {
			ts = parsed
			suffix = " (" + parsed.Format("MST") + ")"
		}
	}
	return ts.Format("2006-01-02 15:04:05") + suffix
}

func deref(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}

var reportTemplate = template.Must(template.New("report").Parse(`<html lang="{{.Lang}}">
<head>
    <meta charset="utf-8" />
    <title>Dual Speaking Assessment Report</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 2rem; color: #1f2933; }
        h1, h2, h3 { color: #0f172a; }
        .summary { background: #eef2ff; padding: 1.5rem; border-radius: 0.75rem; margin-bottom: 2rem; }
        .summary .badge { display: inline-block; background: #4338ca; color: #fff; padding: 0.4rem 0.8rem; border-radius: 999px; font-size: 0.9rem; margin-right: 0.5rem; }
        .card { background: #fff; border: 1px solid #cbd5e1; border-radius: 1rem; padding: 1.5rem; margin-bottom: 2rem; box-shadow: 0 10px 30px rgba(15, 23, 42, 0.08); }
        .card-header { display: flex; align-items: baseline; justify-content: space-between; gap: 1rem; margin-bottom: 1rem; }
        table { width: 100%; border-collapse: collapse; margin-bottom: 1rem; }
        th, td { border: 1px solid #e2e8f0; padding: 0.75rem; text-align: left; }
        th { background: #f8fafc; text-transform: uppercase; font-size: 0.75rem; letter-spacing: 0.08em; }
        ul, ol { margin-left: 1.5rem; }
        blockquote { border-left: 4px solid #6366f1; padding-left: 1rem; margin: 0.5rem 0; font-style: italic; color: #4338ca; }
        .alert { padding: 0.75rem 1rem; border-radius: 0.75rem; margin-bottom: 1rem; }
        .alert-warning { background: #fef3c7; color: #92400e; }
        .alert-error { background: #fee2e2; color: #b91c1c; }
        .metadata { font-size: 0.9rem; color: #475569; margin-top: 1rem; }
        .crosswalk { background: #ecfdf5; border-radius: 0.75rem; padding: 1.5rem; border: 1px solid #d1fae5; margin-bottom: 2rem; }
        .crosswalk h2 { margin-top: 0; }
    </style>
</head>
<body>
    <h1>English Speaking Assessment Report</h1>
    <div class="summary">
        <p>{{range .Badges}}<span class="badge">{{.}}</span>{{end}}</p>
        <p class="metadata">{{.ParticipantSentence}}</p>
        {{if .SessionSummary}}<p class="metadata"><strong>Session Summary:</strong> {{.SessionSummary}}</p>{{end}}
        <p><strong>Consensus CEFR:</strong> {{.ConsensusCEFR}}</p>
        <p><strong>Cross-standard note:</strong> {{.Notes}}</p>
    </div>
    {{range .Warnings}}<div class="alert alert-warning">{{.}}</div>{{end}}
    <section class="crosswalk">
        <h2>Crosswalk Insights</h2>
        <p><strong>Strengths:</strong> {{.Strengths}}</p>
        <p><strong>Focus Areas:</strong> {{.Focus}}</p>
    </section>
    {{range .Standards}}
    <section class="card">
        {{if .Failed}}
        <h2>{{.Label}}</h2>
        <div class="alert alert-error">Evaluation failed: {{.Error}}.</div>
        {{else}}
        <div class="card-header">
            <h2>{{.Label}}</h2>
            <div class="score">{{.OverallCaption}}</div>
            <div class="cefr">Approx. CEFR: {{.CEFR}}</div>
        </div>
        <h3>Criteria Breakdown</h3>
        <table>
            <thead>
                <tr><th>Criterion</th><th>Score</th><th>Comment</th></tr>
            </thead>
            <tbody>
                {{range .Rows}}<tr><td>{{.Label}}</td><td>{{.ScoreCaption}}</td><td>{{.Comment}}</td></tr>{{end}}
            </tbody>
        </table>
        <h3>Common Errors</h3>
        <ul>{{range .CommonErrors}}<li><strong>{{.Issue}}:</strong> {{.Fix}}</li>{{end}}</ul>
        <h3>Recommendations</h3>
        <ol>{{range .Recommendations}}<li>{{.}}</li>{{end}}</ol>
        <h3>Evidence Quotes</h3>
        <div class="quotes">{{range .Quotes}}<blockquote>&ldquo;{{.}}&rdquo;</blockquote>{{end}}</div>
        {{end}}
    </section>
    {{end}}
    <h2>Session Notes</h2>
    <p><strong>Session ID:</strong> {{.Session.ID}}</p>
    <p><strong>Started At:</strong> {{.StartedAt}}</p>
    <p><strong>Ended At:</strong> {{.EndedAt}}</p>
    <p><strong>Duration:</strong> {{.Session.DurationSec}} seconds</p>
    <p><strong>Turns:</strong> {{.Session.Turns}}</p>
    <p><strong>Report Generated:</strong> {{.GeneratedDisplay}}</p>
</body>
</html>
`))
