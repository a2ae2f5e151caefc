package adapters

import (
	"fmt"
	"sync"

	"github.com/brettbedarf/filetree"
)

// SourceConfig is the manifest representation of a content source.
// Which fields apply depends on Type:
//
//	http: URL, Headers
//	file: Path
type SourceConfig struct {
	Type    string            `json:"type" yaml:"type"`
	URL     string            `json:"url,omitempty" yaml:"url,omitempty"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Path    string            `json:"path,omitempty" yaml:"path,omitempty"`
}

// Provider validates a SourceConfig and builds the source it describes
type Provider interface {
	NewSource(cfg SourceConfig) (filetree.ContentSource, error)
}

// Registry maps source types to providers
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

func NewRegistry() *Registry {
	return &Registry{providers: map[string]Provider{}}
}

// Register ties a provider to a "type" key, replacing any previous one.
// Should be called for each source type during app init
func (r *Registry) Register(sourceType string, p Provider) {
	r.mu.Lock()
	r.providers[sourceType] = p
	r.mu.Unlock()
}

func (r *Registry) GetProvider(sourceType string) (Provider, error) {
	r.mu.RLock()
	p, ok := r.providers[sourceType]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no provider for source type %q", sourceType)
	}
	return p, nil
}

// NewSource picks the provider based on cfg.Type.
// All expected source types should be registered before calling this.
func (r *Registry) NewSource(cfg SourceConfig) (filetree.ContentSource, error) {
	p, err := r.GetProvider(cfg.Type)
	if err != nil {
		return nil, err
	}
	return p.NewSource(cfg)
}

var defaultRegistry = NewRegistry()

// Register adds a provider to the default registry
func Register(sourceType string, p Provider) {
	defaultRegistry.Register(sourceType, p)
}

// NewSource builds a source from the default registry
func NewSource(cfg SourceConfig) (filetree.ContentSource, error) {
	return defaultRegistry.NewSource(cfg)
}
