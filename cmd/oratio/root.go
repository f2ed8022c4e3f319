package main

import (
	"log/slog"

	"github.com/ebalci/oratio/internal/config"
	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "oratio",
		Short: "Oratio - spoken language assessment service",
		Long: `Oratio evaluates conversational English transcripts against the TOEFL
Speaking and IELTS Speaking rubrics, reconciles both onto the CEFR scale,
and produces shareable HTML reports.

It provides an HTTP API for interview sessions, evaluation, reporting, and
email delivery, plus offline commands for scoring saved transcripts.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}

		if err := config.LoadEnvFile(config.EnvFilePath); err != nil {
			slog.Warn("Failed to load env file", "path", config.EnvFilePath, "error", err)
		}
	}

	// Add subcommands
	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newEvaluateCommand())
	cmd.AddCommand(newInitCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
