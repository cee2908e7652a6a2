package llm

import (
	"fmt"
	"sync"

	domainllm "fundscope/internal/domain/services/llm"
)

// ProviderRegistry routes model identifiers to the provider that serves
// them. Providers are registered once at startup; lookup is by
// SupportsModel, so new models route without config changes.
type ProviderRegistry struct {
	mu        sync.RWMutex
	providers []domainllm.Provider
}

// NewProviderRegistry creates an empty provider registry.
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{}
}

// Register adds a provider to the registry.
func (r *ProviderRegistry) Register(p domainllm.Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers = append(r.providers, p)
}

// ProviderForModel returns the first registered provider that supports
// the given model.
func (r *ProviderRegistry) ProviderForModel(model string) (domainllm.Provider, error) {
	if model == "" {
		return nil, fmt.Errorf("model cannot be empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.providers {
		if p.SupportsModel(model) {
			return p, nil
		}
	}

	return nil, fmt.Errorf("no provider supports model '%s'", model)
}

// Validate checks that at least one provider is registered.
// Should be called at startup to fail fast if misconfigured.
func (r *ProviderRegistry) Validate() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.providers) == 0 {
		return fmt.Errorf("no providers registered")
	}
	return nil
}
