package session

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/ebalci/oratio/internal/models"
)

// archivedSession is the on-disk shape of a finished session transcript.
type archivedSession struct {
	SessionID string               `json:"session_id"`
	Mode      string               `json:"mode"`
	UserName  string               `json:"user_name,omitempty"`
	StartedAt string               `json:"started_at"`
	Messages  []models.ChatMessage `json:"messages"`
}

// Archiver writes finished transcripts to disk as zstd-compressed JSON.
// The zero value is disabled; set Dir to enable it.
type Archiver struct {
	Dir string
}

// Enabled reports whether archiving is configured.
func (a Archiver) Enabled() bool { return a.Dir != "" }

// Write persists the session transcript and returns the archive path.
func (a Archiver) Write(s Session) (string, error) {
	if !a.Enabled() {
		return "", fmt.Errorf("transcript archive directory not configured")
	}
	if err := os.MkdirAll(a.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create archive dir: %w", err)
	}

	doc := archivedSession{
		SessionID: s.ID,
		Mode:      s.Mode,
		UserName:  s.UserName,
		StartedAt: s.StartedAt.Format("2006-01-02T15:04:05Z"),
		Messages:  s.Messages,
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal transcript: %w", err)
	}

	path := filepath.Join(a.Dir, s.ID+".json.zst")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create archive file: %w", err)
	}
	defer f.Close() //nolint:errcheck

	enc, err := zstd.NewWriter(f)
	if err != nil {
		return "", fmt.Errorf("init zstd writer: %w", err)
	}
	if _, err := enc.Write(raw); err != nil {
		enc.Close()
		return "", fmt.Errorf("write archive: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("flush archive: %w", err)
	}
	return path, nil
}

// Read loads an archived transcript back. Used by tooling and tests.
func (a Archiver) Read(path string) ([]models.ChatMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close() //nolint:errcheck

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("init zstd reader: %w", err)
	}
	defer dec.Close()

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}

	var doc archivedSession
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode archive: %w", err)
	}
	return doc.Messages, nil
}
