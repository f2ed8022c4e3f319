package standards

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Registry resolves standard ids to loaded definitions. Built-in
// definitions are embedded; a directory can be layered on top to override
// them. Loaded standards are cached by id and invalidated wholesale, never
// per entry.
type Registry struct {
	overrideDir string

	mu    sync.RWMutex
	cache map[string]*Standard
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithOverrideDir layers a directory of <id>.yaml files over the embedded
// defaults.
func WithOverrideDir(dir string) RegistryOption {
	return func(r *Registry) {
		r.overrideDir = dir
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{cache: make(map[string]*Standard)}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Load returns the definition for a standard id, reading and caching it on
// first use. A missing definition yields ErrNotFound; a malformed one
// yields a parse error. Both are recoverable, per-standard conditions.
func (r *Registry) Load(id string) (*Standard, error) {
	r.mu.RLock()
	if std, ok := r.cache[id]; ok {
		r.mu.RUnlock()
		return std, nil
	}
	r.mu.RUnlock()

	data, err := r.read(id)
	if err != nil {
		return nil, err
	}

	std, err := parse(id, data)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Another goroutine may have loaded it meanwhile; keep the first copy so
	// callers always share one immutable instance.
	if existing, ok := r.cache[id]; ok {
		return existing, nil
	}
	r.cache[id] = std
	return std, nil
}

// Invalidate drops every cached definition. The next Load re-reads from
// disk or the embedded defaults.
func (r *Registry) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]*Standard)
}

func (r *Registry) read(id string) ([]byte, error) {
	name := id + ".yaml"

	if r.overrideDir != "" {
		data, err := os.ReadFile(filepath.Join(r.overrideDir, name))
		if err == nil {
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read standard %s: %w", id, err)
		}
	}

	data, err := defaultsFS.ReadFile("defaults/" + name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return data, nil
}
