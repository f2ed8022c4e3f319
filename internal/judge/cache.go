package judge

import "sync"

// Cache hands out a client for the current judge settings, rebuilding it
// only when the settings change. Settings updates call Invalidate so the
// next request picks up the new endpoint.
type Cache struct {
	mu     sync.Mutex
	cfg    Config
	client *Client
}

// Get returns a client for cfg, reusing the cached one when cfg matches.
func (c *Cache) Get(cfg Config) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil && c.cfg == cfg {
		return c.client
	}
	c.cfg = cfg
	c.client = NewClient(cfg)
	return c.client
}

// Invalidate drops the cached client.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.client = nil
	c.cfg = Config{}
}
