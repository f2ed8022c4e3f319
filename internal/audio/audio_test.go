package audio

import (
	"context"
	"encoding/base64"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebalci/oratio/internal/session"
)

var testDate = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func consentedSession(name string) session.Session {
	granted := testDate
	return session.Session{
		ID:       "abcdef123456",
		UserName: name,
		Consent:  session.Consent{Granted: true, GrantedAt: &granted},
	}
}

func TestSanitizeParticipantName(t *testing.T) {
	cases := map[string]string{
		"Ada Lovelace":  "Ada-Lovelace",
		"  jo!? c@rter": "jo-c-rter",
		"!!!":           "fallback",
		"":              "fallback",
	}
	for in, want := range cases {
		assert.Equal(t, want, sanitizeParticipantName(in, "fallback"), "input %q", in)
	}
}

func TestExtensionFromMIME(t *testing.T) {
	cases := map[string]string{
		"audio/webm":          ".webm",
		"audio/ogg; codecs=x": ".ogg",
		"audio/WAV":           ".wav",
		"audio/mp4":           ".m4a",
		"audio/x-m4a":         ".m4a",
		"":                    ".bin",
		"application/zip":     ".bin",
	}
	for in, want := range cases {
		assert.Equal(t, want, extensionFromMIME(in), "mime %q", in)
	}
}

func TestParseReportDate(t *testing.T) {
	now := testDate

	assert.Equal(t, now, parseReportDate("", now))
	assert.Equal(t, now, parseReportDate("not a date", now))

	parsed := parseReportDate("2026-02-01T08:30:00Z", now)
	assert.Equal(t, 2026, parsed.Year())
	assert.Equal(t, time.February, parsed.Month())
}

func TestBuildFilename(t *testing.T) {
	assert.Equal(t, "Ada-Lovelace-20260314.mp3", buildFilename("Ada Lovelace", "abcdef123456", testDate))
	// No usable name falls back to the session id prefix.
	assert.Equal(t, "abcdef12-20260314.mp3", buildFilename("", "abcdef123456", testDate))
}

func TestSaveRequiresConsent(t *testing.T) {
	store := NewStore(t.TempDir())
	sess := consentedSession("Ada")
	sess.Consent = session.Consent{}

	_, _, err := store.Save(context.Background(), sess, Upload{AudioBase64: "aGk="})
	assert.ErrorIs(t, err, ErrConsentRequired)
}

func TestSaveRejectsBadBase64(t *testing.T) {
	store := NewStore(t.TempDir())

	_, _, err := store.Save(context.Background(), consentedSession("Ada"), Upload{AudioBase64: "%%%"})
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestSaveMP3PassThrough(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	store.now = func() time.Time { return testDate }

	payload := base64.StdEncoding.EncodeToString([]byte("fake mp3 bytes"))

	filename, path, err := store.Save(context.Background(), consentedSession("Ada Lovelace"), Upload{
		AudioBase64: payload,
		MimeType:    "audio/mpeg",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada-Lovelace-20260314.mp3", filename)
	assert.Equal(t, filepath.Join(dir, filename), path)

	// A second upload on the same day gets a collision counter.
	filename2, _, err := store.Save(context.Background(), consentedSession("Ada Lovelace"), Upload{
		AudioBase64: payload,
		MimeType:    "audio/mp3",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada-Lovelace-20260314-1.mp3", filename2)
}
