package judge

import (
	"context"

	"github.com/ebalci/oratio/internal/metrics"
	"github.com/ebalci/oratio/internal/models"
)

// Source resolves the judge configuration per call and routes through the
// client cache, so settings changes take effect on the next request
// without restarting.
type Source struct {
	cache  Cache
	config func() (Config, error)
}

// NewSource builds a Source around a config lookup.
func NewSource(config func() (Config, error)) *Source {
	return &Source{config: config}
}

// Evaluate fetches one judgment using the current configuration.
func (s *Source) Evaluate(ctx context.Context, transcript []models.ChatMessage, metadata models.TranscriptMetadata, m metrics.TranscriptMetrics) (map[string]any, error) {
	cfg, err := s.config()
	if err != nil {
		return nil, err
	}
	return s.cache.Get(cfg).Evaluate(ctx, transcript, metadata, m)
}
