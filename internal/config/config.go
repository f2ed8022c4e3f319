// Package config reads application settings from the environment, backed
// by an optional .env file that settings updates write back to.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

// Scorer variant names.
const (
	ScorerHeuristic = "heuristic"
	ScorerJudge     = "judge"
)

// EnvFilePath is where settings updates are persisted. Overridable for
// tests and deployments.
var EnvFilePath = ".env"

// EmailSettings is the SMTP delivery configuration.
type EmailSettings struct {
	Provider      string
	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string
	DefaultSender string
}

// MissingFields names the SMTP fields still required before email can be
// sent. Non-smtp providers report nothing.
func (e EmailSettings) MissingFields() []string {
	if strings.ToLower(e.Provider) != "smtp" {
		return nil
	}
	var missing []string
	if e.SMTPHost == "" {
		missing = append(missing, "smtp_host")
	}
	if e.SMTPUsername == "" {
		missing = append(missing, "smtp_username")
	}
	if e.SMTPPassword == "" {
		missing = append(missing, "smtp_password")
	}
	if e.DefaultSender == "" {
		missing = append(missing, "default_sender")
	}
	if e.SMTPPort == 0 {
		missing = append(missing, "smtp_port")
	}
	return missing
}

// Configured reports whether email delivery can proceed.
func (e EmailSettings) Configured() bool { return len(e.MissingFields()) == 0 }

// Settings is the full application configuration.
type Settings struct {
	TargetEmail      string
	AppBaseURL       string
	StoreTranscripts bool
	SecretToken      string
	ReportLang       string
	ReportsDir       string
	AudioDir         string
	TranscriptDir    string
	BlobContainerURL string
	ListenAddr       string
	Scorer           string
	Email            EmailSettings
	JudgeAPIKey      string
	JudgeBaseURL     string
	JudgeModel       string
	JudgeTemperature *float64
}

var reportLangMatcher = language.NewMatcher([]language.Tag{
	language.English,
	language.Turkish,
})

// ReportTag resolves the configured report language against the supported
// set, defaulting to English.
func (s *Settings) ReportTag() language.Tag {
	tag, err := language.Parse(s.ReportLang)
	if err != nil {
		return language.English
	}
	matched, _, _ := reportLangMatcher.Match(tag)
	// Matcher may return an extended tag; collapse to the base language.
	base, _ := matched.Base()
	if base.String() == "tr" {
		return language.Turkish
	}
	return language.English
}

// FromEnv builds Settings from the current environment.
func FromEnv() (*Settings, error) {
	temperature, err := parseTemperature(os.Getenv("JUDGE_TEMPERATURE"))
	if err != nil {
		return nil, err
	}

	sender := os.Getenv("EMAIL_DEFAULT_SENDER")
	if sender == "" {
		sender = os.Getenv("TARGET_EMAIL")
	}

	return &Settings{
		TargetEmail:      os.Getenv("TARGET_EMAIL"),
		AppBaseURL:       getenv("APP_BASE_URL", "http://localhost:5173"),
		StoreTranscripts: strings.ToLower(getenv("STORE_TRANSCRIPTS", "true")) == "true",
		SecretToken:      getenv("APP_SECRET_TOKEN", "dev-secret"),
		ReportLang:       getenv("REPORT_LANGUAGE", "en"),
		ReportsDir:       getenv("REPORTS_DIR", "reports"),
		AudioDir:         getenv("AUDIO_DIR", "protected_audio"),
		TranscriptDir:    os.Getenv("TRANSCRIPT_ARCHIVE_DIR"),
		BlobContainerURL: os.Getenv("REPORT_BLOB_CONTAINER_URL"),
		ListenAddr:       getenv("LISTEN_ADDR", ":8000"),
		Scorer:           getenv("ORATIO_SCORER", ScorerHeuristic),
		Email: EmailSettings{
			Provider:      getenv("EMAIL_PROVIDER", "smtp"),
			SMTPHost:      os.Getenv("SMTP_HOST"),
			SMTPPort:      getenvInt("SMTP_PORT", 587),
			SMTPUsername:  os.Getenv("SMTP_USERNAME"),
			SMTPPassword:  os.Getenv("SMTP_PASSWORD"),
			DefaultSender: sender,
		},
		JudgeAPIKey:      os.Getenv("JUDGE_API_KEY"),
		JudgeBaseURL:     getenv("JUDGE_API_BASE_URL", "https://api.openai.com/v1"),
		JudgeModel:       getenv("JUDGE_MODEL", "gpt-5"),
		JudgeTemperature: temperature,
	}, nil
}

func parseTemperature(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("JUDGE_TEMPERATURE must be a numeric value: %w", err)
	}
	return &v, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

var (
	settingsMu sync.Mutex
	cached     *Settings
)

// Get returns the cached Settings, building them from the environment on
// first use or after Reset.
func Get() (*Settings, error) {
	settingsMu.Lock()
	defer settingsMu.Unlock()

	if cached != nil {
		return cached, nil
	}
	s, err := FromEnv()
	if err != nil {
		return nil, err
	}
	cached = s
	return cached, nil
}

// Reset drops the cached Settings so the next Get re-reads the environment.
func Reset() {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	cached = nil
}

// SetJudgeAPIKey stores the judge API key in the environment and .env file
// and invalidates the cached Settings.
func SetJudgeAPIKey(key string) error {
	if err := os.Setenv("JUDGE_API_KEY", key); err != nil {
		return err
	}
	if err := PersistEnvVar(EnvFilePath, "JUDGE_API_KEY", key); err != nil {
		return err
	}
	Reset()
	return nil
}

// EmailUpdate carries partial email settings; empty fields are left
// unchanged.
type EmailUpdate struct {
	Provider      string
	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string
	DefaultSender string
	TargetEmail   string
}

// UpdateEmailSettings applies the non-empty fields to the environment and
// .env file, then invalidates the cached Settings.
func UpdateEmailSettings(update EmailUpdate) error {
	pairs := []struct{ env, value string }{
		{"EMAIL_PROVIDER", update.Provider},
		{"SMTP_HOST", update.SMTPHost},
		{"SMTP_PORT", update.SMTPPort},
		{"SMTP_USERNAME", update.SMTPUsername},
		{"SMTP_PASSWORD", update.SMTPPassword},
		{"EMAIL_DEFAULT_SENDER", update.DefaultSender},
		{"TARGET_EMAIL", update.TargetEmail},
	}

	updated := false
	for _, p := range pairs {
		if p.value == "" {
			continue
		}
		if err := os.Setenv(p.env, p.value); err != nil {
			return err
		}
		if err := PersistEnvVar(EnvFilePath, p.env, p.value); err != nil {
			return err
		}
		updated = true
	}
	if updated {
		Reset()
	}
	return nil
}
