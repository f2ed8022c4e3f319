// Package judge calls an OpenAI-compatible chat-completion API to obtain
// an external dual-rubric judgment for a transcript. The client performs a
// single blocking call per request with a fixed timeout and never retries;
// retry policy belongs to callers.
package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/ebalci/oratio/internal/metrics"
	"github.com/ebalci/oratio/internal/models"
)

// DefaultTimeout bounds one judgment call.
const DefaultTimeout = 30 * time.Second

var (
	// ErrNotConfigured is returned when no API key is set.
	ErrNotConfigured = errors.New("judge API key is not configured")
	// ErrTimeout marks a request that exceeded the configured timeout. It
	// is distinguishable from other transport failures.
	ErrTimeout = errors.New("judge request timed out")
	// ErrBadEnvelope marks a non-2xx status, a non-JSON body, or a
	// response missing the expected completion envelope.
	ErrBadEnvelope = errors.New("unexpected judge response")
)

// Config identifies one judge endpoint. It is comparable; the cache uses
// equality to decide whether a cached client handle is still valid.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Temperature    float64
	HasTemperature bool
	Timeout        time.Duration
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.openai.com/v1"
	}
	if c.Model == "" {
		c.Model = "gpt-5"
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// Client calls the judge endpoint.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient builds a client for the given config.
func NewClient(cfg Config) *Client {
	cfg = cfg.withDefaults()
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

// Evaluate requests a judgment for the transcript and parses the returned
// JSON object. The error taxonomy: ErrNotConfigured, ErrTimeout (distinct
// from other transport errors), ErrBadEnvelope for any malformed response.
func (c *Client) Evaluate(ctx context.Context, transcript []models.ChatMessage, metadata models.TranscriptMetadata, m metrics.TranscriptMetrics) (map[string]any, error) {
	if c.cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}

	userContent, err := json.Marshal(map[string]any{
		"transcript": transcript,
		"metadata":   metadata,
		"metrics":    m,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal judge request: %w", err)
	}

	payload := map[string]any{
		"model": c.cfg.Model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": string(userContent)},
		},
		"response_format": map[string]string{"type": "json_object"},
	}
	if c.cfg.HasTemperature {
		payload["temperature"] = c.cfg.Temperature
	} else {
		payload["temperature"] = 0.2
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal judge payload: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build judge request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w after %.1f seconds; check the judge base URL or network connectivity",
				ErrTimeout, c.cfg.Timeout.Seconds())
		}
		return nil, fmt.Errorf("contact judge API: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read judge response: %w", err)
	}

	if resp.StatusCode >= 400 {
		detail := strings.TrimSpace(string(raw))
		if detail == "" {
			detail = "unknown error"
		}
		return nil, fmt.Errorf("%w: HTTP %d: %s", ErrBadEnvelope, resp.StatusCode, detail)
	}

	content := gjson.GetBytes(raw, "choices.0.message.content")
	if !content.Exists() {
		return nil, fmt.Errorf("%w: missing completion content", ErrBadEnvelope)
	}

	var judgment map[string]any
	if err := json.Unmarshal([]byte(content.String()), &judgment); err != nil {
		return nil, fmt.Errorf("%w: completion content is not a JSON object", ErrBadEnvelope)
	}

	return judgment, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
