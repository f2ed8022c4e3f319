package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ebalci/oratio/internal/config"
	"github.com/ebalci/oratio/internal/evaluation"
	"github.com/ebalci/oratio/internal/models"
	"github.com/ebalci/oratio/internal/report"
	"github.com/spf13/cobra"
)

// transcriptFile is the accepted on-disk shape: either a bare message array
// or an object carrying the messages plus optional metadata.
type transcriptFile struct {
	SessionID  string                     `json:"session_id"`
	Transcript []models.ChatMessage       `json:"transcript"`
	Metadata   *models.TranscriptMetadata `json:"metadata"`
}

func newEvaluateCommand() *cobra.Command {
	var outputJSON bool
	var reportPath string
	var scorer string
	var standardsDir string

	cmd := &cobra.Command{
		Use:   "evaluate <transcript.json>",
		Short: "Score a saved transcript against both assessment standards",
		Long: `Score a saved transcript against both assessment standards.

The input file is either a JSON array of {role, content, timestamp} messages
or an object of the form {"session_id": ..., "transcript": [...], "metadata":
{...}}. Results print as an aligned summary; use --json for the full result
document, or --report to also write the HTML report.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Get()
			if err != nil {
				return fmt.Errorf("load settings: %w", err)
			}

			// Copy before applying the flag override so the cached
			// settings keep the configured scorer.
			settings := *loaded
			if scorer != "" {
				settings.Scorer = scorer
			}

			in, err := readTranscriptFile(args[0])
			if err != nil {
				return err
			}

			orchestrator, err := buildOrchestrator(settings, standardsDir)
			if err != nil {
				return err
			}

			evalReq := evaluation.Request{
				SessionID:  in.SessionID,
				Transcript: in.Transcript,
			}
			if in.Metadata != nil {
				evalReq.Metadata = *in.Metadata
			}

			result, err := orchestrator.Evaluate(cmd.Context(), evalReq)
			if err != nil {
				return err
			}

			if outputJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(result); err != nil {
					return fmt.Errorf("encode result: %w", err)
				}
			} else {
				renderResult(cmd.OutOrStdout(), result)
			}

			if reportPath != "" {
				renderer := report.NewRenderer(settings.ReportTag(), settings.AppBaseURL, settings.ReportsDir)
				html, err := renderer.Render(result, nil)
				if err != nil {
					return fmt.Errorf("render report: %w", err)
				}
				if err := os.WriteFile(reportPath, []byte(html), 0o644); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", reportPath) //nolint:errcheck
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&outputJSON, "json", false, "Print the full evaluation result as JSON")
	cmd.Flags().StringVar(&reportPath, "report", "", "Also write the HTML report to this path")
	cmd.Flags().StringVar(&scorer, "scorer", "", "Override the configured scorer (heuristic or judge)")
	cmd.Flags().StringVar(&standardsDir, "standards-dir", "", "Directory with standard config overrides (toefl.yaml, ielts.yaml)")

	return cmd
}

func readTranscriptFile(path string) (*transcriptFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}

	var in transcriptFile
	if err := json.Unmarshal(data, &in); err != nil {
		// Fall back to a bare message array.
		var messages []models.ChatMessage
		if arrErr := json.Unmarshal(data, &messages); arrErr != nil {
			return nil, fmt.Errorf("parse transcript %s: %w", path, err)
		}
		in = transcriptFile{Transcript: messages}
	}

	if len(in.Transcript) == 0 {
		return nil, fmt.Errorf("transcript %s contains no messages", path)
	}
	return &in, nil
}
