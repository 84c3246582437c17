package platform

import (
	"fmt"
	"net/http"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/obralink/backend/internal/domain/integration"
	"github.com/obralink/backend/internal/infrastructure/config"
)

// Registry holds one adapter per configured platform
type Registry struct {
	mu       sync.RWMutex
	adapters map[integration.PlatformCode]integration.PlatformAdapter
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[integration.PlatformCode]integration.PlatformAdapter)}
}

// NewRegistryFromConfig builds HTTP adapters for every configured platform.
// The shared client may be nil.
func NewRegistryFromConfig(platforms map[string]config.PlatformConfig, client *http.Client, logger *zap.Logger) (*Registry, error) {
	registry := NewRegistry()
	for raw, cfg := range platforms {
		code, err := integration.ParsePlatformCode(raw)
		if err != nil {
			return nil, fmt.Errorf("platform %q: %w", raw, err)
		}
		adapter, err := NewHTTPAdapter(code, SettingsFromConfig(cfg), client, logger)
		if err != nil {
			return nil, err
		}
		registry.Register(adapter)
	}
	return registry, nil
}

// Register adds or replaces the adapter of a platform
func (r *Registry) Register(adapter integration.PlatformAdapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[adapter.Platform()] = adapter
}

// Get returns the adapter for the platform
func (r *Registry) Get(code integration.PlatformCode) (integration.PlatformAdapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	adapter, ok := r.adapters[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", integration.ErrPlatformNotConfigured, code)
	}
	return adapter, nil
}

// Platforms returns the registered platform codes in sorted order
func (r *Registry) Platforms() []integration.PlatformCode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	codes := make([]integration.PlatformCode, 0, len(r.adapters))
	for code := range r.adapters {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

var _ integration.PlatformAdapterRegistry = (*Registry)(nil)
