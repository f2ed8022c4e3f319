package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ebalci/oratio/internal/audio"
	"github.com/ebalci/oratio/internal/config"
	"github.com/ebalci/oratio/internal/evaluation"
	"github.com/ebalci/oratio/internal/judge"
	"github.com/ebalci/oratio/internal/report"
	"github.com/ebalci/oratio/internal/scoring"
	"github.com/ebalci/oratio/internal/session"
	"github.com/ebalci/oratio/internal/standards"
	"github.com/ebalci/oratio/internal/webapi"
	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	var listenAddr string
	var standardsDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the assessment HTTP API",
		Long: `Start the assessment HTTP API.

The server hosts interview sessions, evaluates transcripts against both the
TOEFL Speaking and IELTS Speaking rubrics, renders HTML reports, and sends
report emails. All /api routes require a bearer token (APP_SECRET_TOKEN);
/health is open.

Configuration comes from the environment and the .env file in the working
directory. Run 'oratio init' to create one interactively.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Get()
			if err != nil {
				return fmt.Errorf("load settings: %w", err)
			}

			if listenAddr == "" {
				listenAddr = settings.ListenAddr
			}

			orchestrator, err := buildOrchestrator(*settings, standardsDir)
			if err != nil {
				return err
			}

			deps := webapi.Deps{
				Sessions:     session.NewStore(),
				Orchestrator: orchestrator,
				Renderer:     report.NewRenderer(settings.ReportTag(), settings.AppBaseURL, settings.ReportsDir),
				Blob:         report.BlobArchiver{ContainerURL: settings.BlobContainerURL},
				Audio:        audio.NewStore(settings.AudioDir),
				Archive:      session.Archiver{Dir: settings.TranscriptDir},
			}

			mux := http.NewServeMux()
			webapi.RegisterRoutes(mux, deps, settings.SecretToken)

			server := &http.Server{
				Addr:              listenAddr,
				Handler:           webapi.CORSMiddleware(mux),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				slog.Info("Server listening", "address", listenAddr, "scorer", settings.Scorer)
				errCh <- server.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			slog.Info("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&listenAddr, "addr", "", "Address to listen on (defaults to LISTEN_ADDR or :8000)")
	cmd.Flags().StringVar(&standardsDir, "standards-dir", "", "Directory with standard config overrides (toefl.yaml, ielts.yaml)")

	return cmd
}

// buildOrchestrator wires the scorer selected by ORATIO_SCORER. The judge
// scorer resolves its client settings per request so key changes made through
// the settings API take effect without a restart.
func buildOrchestrator(settings config.Settings, standardsDir string) (*evaluation.Orchestrator, error) {
	registry := standards.NewRegistry(standards.WithOverrideDir(standardsDir))

	switch settings.Scorer {
	case config.ScorerHeuristic, "":
		return evaluation.New(registry, &scoring.HeuristicScorer{}), nil
	case config.ScorerJudge:
		source := judge.NewSource(func() (judge.Config, error) {
			s, err := config.Get()
			if err != nil {
				return judge.Config{}, err
			}
			if s.JudgeAPIKey == "" {
				return judge.Config{}, judge.ErrNotConfigured
			}
			cfg := judge.Config{
				APIKey:  s.JudgeAPIKey,
				BaseURL: s.JudgeBaseURL,
				Model:   s.JudgeModel,
			}
			if s.JudgeTemperature != nil {
				cfg.Temperature = *s.JudgeTemperature
				cfg.HasTemperature = true
			}
			return cfg, nil
		})
		return evaluation.New(registry, &scoring.JudgmentScorer{}, evaluation.WithJudgmentSource(source)), nil
	default:
		return nil, fmt.Errorf("unknown scorer %q (expected %q or %q)", settings.Scorer, config.ScorerHeuristic, config.ScorerJudge)
	}
}
