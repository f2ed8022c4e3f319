// Package audio stores session recordings. Uploads arrive base64-encoded;
// anything that is not already mp3 is transcoded through ffmpeg to mono
// 44.1kHz 128k mp3 before it is written to disk.
package audio

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/ebalci/oratio/internal/session"
)

var (
	// ErrInvalidPayload marks a base64 body that does not decode.
	ErrInvalidPayload = errors.New("invalid audio payload")
	// ErrConsentRequired gates storage on participant consent.
	ErrConsentRequired = errors.New("participant consent is required for this session")
	// ErrConversionFailed wraps ffmpeg transcode failures.
	ErrConversionFailed = errors.New("failed to convert audio to mp3")
)

// Upload is one incoming recording.
type Upload struct {
	AudioBase64 string
	MimeType    string
	ReportDate  string
}

// Store writes recordings under Dir.
type Store struct {
	Dir        string
	FFmpegPath string

	now func() time.Time
}

// NewStore builds a Store writing into dir, using ffmpeg from PATH.
func NewStore(dir string) *Store {
	return &Store{Dir: dir, FFmpegPath: "ffmpeg", now: time.Now}
}

// Save decodes, transcodes, and persists the recording for the session.
// It returns the stored filename and its full path.
func (s *Store) Save(ctx context.Context, sess session.Session, up Upload) (string, string, error) {
	if !sess.Consent.Granted {
		return "", "", ErrConsentRequired
	}

	raw, err := base64.StdEncoding.DecodeString(up.AudioBase64)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	mp3, err := s.ensureMP3(ctx, raw, up.MimeType)
	if err != nil {
		return "", "", err
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create audio dir: %w", err)
	}

	date := parseReportDate(up.ReportDate, s.clock())
	base := strings.TrimSuffix(buildFilename(sess.UserName, sess.ID, date), ".mp3")

	filename := base + ".mp3"
	path := filepath.Join(s.Dir, filename)
	for counter := 1; ; counter++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			break
		}
		filename = fmt.Sprintf("%s-%d.mp3", base, counter)
		path = filepath.Join(s.Dir, filename)
	}

	if err := os.WriteFile(path, mp3, 0o600); err != nil {
		return "", "", fmt.Errorf("write audio file: %w", err)
	}
	return filename, path, nil
}

func (s *Store) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// ensureMP3 passes mp3 payloads through unchanged and transcodes anything
// else via ffmpeg.
func (s *Store) ensureMP3(ctx context.Context, audio []byte, mimeType string) ([]byte, error) {
	lower := strings.ToLower(mimeType)
	if strings.Contains(lower, "mpeg") || strings.Contains(lower, "mp3") {
		return audio, nil
	}

	src, err := os.CreateTemp("", "oratio-audio-*"+extensionFromMIME(mimeType))
	if err != nil {
		return nil, fmt.Errorf("create temp source: %w", err)
	}
	defer os.Remove(src.Name()) //nolint:errcheck
	if _, err := src.Write(audio); err != nil {
		src.Close()
		return nil, fmt.Errorf("write temp source: %w", err)
	}
	if err := src.Close(); err != nil {
		return nil, fmt.Errorf("close temp source: %w", err)
	}

	dst := src.Name() + ".mp3"
	defer os.Remove(dst) //nolint:errcheck

	ffmpeg := s.FFmpegPath
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, ffmpeg,
		"-y",
		"-i", src.Name(),
		"-vn",
		"-ar", "44100",
		"-ac", "1",
		"-b:a", "128k",
		dst,
	)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrConversionFailed, strings.TrimSpace(stderr.String()))
	}

	out, err := os.ReadFile(dst)
	if err != nil {
		return nil, fmt.Errorf("read converted audio: %w", err)
	}
	return out, nil
}

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]+`)

// sanitizeParticipantName reduces a display name to a filesystem-safe
// slug, falling back when nothing survives.
func sanitizeParticipantName(name, fallback string) string {
	if name == "" {
		return fallback
	}
	normalized := strings.Trim(nonAlnum.ReplaceAllString(name, "-"), "- ")
	if normalized == "" {
		return fallback
	}
	return normalized
}

func extensionFromMIME(mimeType string) string {
	mime := strings.ToLower(mimeType)
	switch {
	case strings.Contains(mime, "webm"):
		return ".webm"
	case strings.Contains(mime, "ogg"):
		return ".ogg"
	case strings.Contains(mime, "wav"):
		return ".wav"
	case strings.Contains(mime, "m4a"), strings.Contains(mime, "mp4"):
		return ".m4a"
	default:
		return ".bin"
	}
}

// parseReportDate accepts RFC 3339 timestamps and falls back to now.
func parseReportDate(raw string, now time.Time) time.Time {
	value := strings.TrimSpace(raw)
	if value == "" {
		return now
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed
	}
	return now
}

func buildFilename(participant, sessionID string, date time.Time) string {
	fallback := sessionID
	if len(fallback) > 8 {
		fallback = fallback[:8]
	}
	base := sanitizeParticipantName(participant, fallback)
	return base + "-" + date.Format("20060102") + ".mp3"
}
