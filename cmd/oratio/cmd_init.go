package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/ebalci/oratio/internal/config"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactively create or update the .env configuration",
		Long: `Interactively create or update the .env configuration.

Walks through the server, judge, and email settings and writes them to the
.env file in the working directory. Existing values are offered as defaults;
fields left blank are not written.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := runSetupWizard(cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}

			written := 0
			for _, kv := range values {
				if kv.value == "" {
					continue
				}
				if err := config.PersistEnvVar(config.EnvFilePath, kv.key, kv.value); err != nil {
					return fmt.Errorf("write %s: %w", config.EnvFilePath, err)
				}
				written++
			}
			config.Reset()

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d settings to %s\n", written, config.EnvFilePath) //nolint:errcheck
			return nil
		},
	}

	return cmd
}

type envValue struct {
	key   string
	value string
}

// runSetupWizard runs an interactive huh form over the configurable
// environment settings, pre-populated from the current environment.
func runSetupWizard(in io.Reader, out io.Writer) ([]envValue, error) {
	var (
		targetEmail  = os.Getenv("TARGET_EMAIL")
		baseURL      = os.Getenv("APP_BASE_URL")
		secretToken  = os.Getenv("APP_SECRET_TOKEN")
		reportLang   = os.Getenv("REPORT_LANGUAGE")
		scorer       = os.Getenv("ORATIO_SCORER")
		judgeAPIKey  string
		smtpHost     = os.Getenv("SMTP_HOST")
		smtpPort     = os.Getenv("SMTP_PORT")
		smtpUsername = os.Getenv("SMTP_USERNAME")
		smtpPassword string
		sender       = os.Getenv("EMAIL_DEFAULT_SENDER")
	)
	if reportLang == "" {
		reportLang = "en"
	}
	if scorer == "" {
		scorer = config.ScorerHeuristic
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Report recipient").
				Description("Default email address for assessment reports").
				Placeholder("reports@example.com").
				Value(&targetEmail),
			huh.NewInput().
				Title("App base URL").
				Description("Public URL used in report links").
				Placeholder("https://assess.example.com").
				Value(&baseURL),
			huh.NewInput().
				Title("API secret token").
				Description("Bearer token required by /api routes").
				EchoMode(huh.EchoModePassword).
				Value(&secretToken),
			huh.NewSelect[string]().
				Title("Report language").
				Options(
					huh.NewOption("English", "en"),
					huh.NewOption("Türkçe", "tr"),
				).
				Value(&reportLang),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Scorer").
				Description("heuristic scores locally; judge calls an external model").
				Options(
					huh.NewOption("heuristic", config.ScorerHeuristic),
					huh.NewOption("judge", config.ScorerJudge),
				).
				Value(&scorer),
			huh.NewInput().
				Title("Judge API key").
				Description("Required for the judge scorer; leave blank to keep the current key").
				EchoMode(huh.EchoModePassword).
				Value(&judgeAPIKey),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("SMTP host").
				Placeholder("smtp.example.com").
				Value(&smtpHost),
			huh.NewInput().
				Title("SMTP port").
				Placeholder("587").
				Value(&smtpPort).
				Validate(func(s string) error {
					s = strings.TrimSpace(s)
					if s == "" {
						return nil
					}
					if _, err := strconv.Atoi(s); err != nil {
						return fmt.Errorf("port must be numeric")
					}
					return nil
				}),
			huh.NewInput().
				Title("SMTP username").
				Value(&smtpUsername),
			huh.NewInput().
				Title("SMTP password").
				Description("Leave blank to keep the current password").
				EchoMode(huh.EchoModePassword).
				Value(&smtpPassword),
			huh.NewInput().
				Title("Sender address").
				Description("From address for outgoing mail (defaults to the report recipient)").
				Value(&sender),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("setup wizard failed: %w", err)
	}

	return []envValue{
		{"TARGET_EMAIL", strings.TrimSpace(targetEmail)},
		{"APP_BASE_URL", strings.TrimSpace(baseURL)},
		{"APP_SECRET_TOKEN", strings.TrimSpace(secretToken)},
		{"REPORT_LANGUAGE", reportLang},
		{"ORATIO_SCORER", scorer},
		{"JUDGE_API_KEY", strings.TrimSpace(judgeAPIKey)},
		{"SMTP_HOST", strings.TrimSpace(smtpHost)},
		{"SMTP_PORT", strings.TrimSpace(smtpPort)},
		{"SMTP_USERNAME", strings.TrimSpace(smtpUsername)},
		{"SMTP_PASSWORD", smtpPassword},
		{"EMAIL_DEFAULT_SENDER", strings.TrimSpace(sender)},
	}, nil
}
