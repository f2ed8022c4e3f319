package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestFromEnvDefaults(t *testing.T) {
	s, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5173", s.AppBaseURL)
	assert.True(t, s.StoreTranscripts)
	assert.Equal(t, "dev-secret", s.SecretToken)
	assert.Equal(t, "en", s.ReportLang)
	assert.Equal(t, ScorerHeuristic, s.Scorer)
	assert.Equal(t, "protected_audio", s.AudioDir)
	assert.Equal(t, "https://api.openai.com/v1", s.JudgeBaseURL)
	assert.Equal(t, "gpt-5", s.JudgeModel)
	assert.Nil(t, s.JudgeTemperature)
	assert.Equal(t, 587, s.Email.SMTPPort)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("APP_SECRET_TOKEN", "topsecret")
	t.Setenv("ORATIO_SCORER", ScorerJudge)
	t.Setenv("JUDGE_TEMPERATURE", "0.7")
	t.Setenv("SMTP_PORT", "465")

	s, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "topsecret", s.SecretToken)
	assert.Equal(t, ScorerJudge, s.Scorer)
	require.NotNil(t, s.JudgeTemperature)
	assert.InDelta(t, 0.7, *s.JudgeTemperature, 1e-9)
	assert.Equal(t, 465, s.Email.SMTPPort)
}

func TestFromEnvBadTemperature(t *testing.T) {
	t.Setenv("JUDGE_TEMPERATURE", "warm")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JUDGE_TEMPERATURE")
}

func TestDefaultSenderFallsBackToTarget(t *testing.T) {
	t.Setenv("TARGET_EMAIL", "reports@example.com")

	s, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "reports@example.com", s.Email.DefaultSender)
}

func TestMissingFields(t *testing.T) {
	var email EmailSettings
	email.Provider = "smtp"
	email.SMTPPort = 587

	missing := email.MissingFields()
	assert.ElementsMatch(t, []string{"smtp_host", "smtp_username", "smtp_password", "default_sender"}, missing)
	assert.False(t, email.Configured())

	email.SMTPHost = "smtp.example.com"
	email.SMTPUsername = "mailer"
	email.SMTPPassword = "hunter2"
	email.DefaultSender = "noreply@example.com"
	assert.Empty(t, email.MissingFields())
	assert.True(t, email.Configured())

	// Non-smtp providers have no required fields.
	other := EmailSettings{Provider: "log"}
	assert.Empty(t, other.MissingFields())
}

func TestReportTag(t *testing.T) {
	for lang, want := range map[string]language.Tag{
		"en":    language.English,
		"tr":    language.Turkish,
		"tr-TR": language.Turkish,
		"de":    language.English,
		"":      language.English,
		"junk!": language.English,
	} {
		s := &Settings{ReportLang: lang}
		assert.Equal(t, want, s.ReportTag(), "lang %q", lang)
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("# comment\nFOO_FROM_FILE=hello\n\nBAR_FROM_FILE=world\nnot a pair\n"), 0o600))

	t.Setenv("BAR_FROM_FILE", "already-set")
	t.Setenv("FOO_FROM_FILE", "placeholder")
	require.NoError(t, os.Unsetenv("FOO_FROM_FILE"))

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "hello", os.Getenv("FOO_FROM_FILE"))
	// Existing environment wins over the file.
	assert.Equal(t, "already-set", os.Getenv("BAR_FROM_FILE"))

	require.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
}

func TestPersistEnvVarPreservesLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	initial := "# mail settings\nSMTP_HOST=old.example.com\n\nAPP_BASE_URL=http://localhost:5173\n"
	require.NoError(t, os.WriteFile(path, []byte(initial), 0o600))

	require.NoError(t, PersistEnvVar(path, "SMTP_HOST", "new.example.com"))
	require.NoError(t, PersistEnvVar(path, "JUDGE_API_KEY", "sk-test"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# mail settings\nSMTP_HOST=new.example.com\n\nAPP_BASE_URL=http://localhost:5173\n\nJUDGE_API_KEY=sk-test\n", string(raw))
}

func TestPersistEnvVarCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")

	require.NoError(t, PersistEnvVar(path, "TARGET_EMAIL", "a@b.co"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "TARGET_EMAIL=a@b.co\n", string(raw))
}

func TestCachedSettings(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	first, err := Get()
	require.NoError(t, err)
	second, err := Get()
	require.NoError(t, err)
	assert.Same(t, first, second)

	Reset()
	third, err := Get()
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}
