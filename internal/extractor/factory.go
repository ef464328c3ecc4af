package extractor

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"voxform/internal/config"
	"voxform/internal/observe"
	"voxform/internal/port"
)

// Deps are shared collaborators a provider factory may use.
type Deps struct {
	Metrics *observe.Metrics
	// Learned is the pattern cache provider, if one was built.
	Learned port.FieldExtractor
}

// ProviderFactory creates a FieldExtractor from application config.
type ProviderFactory func(cfg *config.Config, deps Deps) (port.FieldExtractor, error)

var (
	registryMu sync.RWMutex
	providers  = map[string]ProviderFactory{}
)

// RegisterProvider registers a provider factory under one or more identifiers.
func RegisterProvider(factory ProviderFactory, names ...string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	for _, n := range names {
		providers[strings.ToLower(n)] = factory
	}
}

// Registered lists every registered identifier, sorted.
func Registered() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(providers))
	for n := range providers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NewExtractor builds one provider by identifier. Unknown identifiers are an error;
// missing credentials are not, since the provider then reports itself unavailable.
func NewExtractor(name string, cfg *config.Config, deps Deps) (port.FieldExtractor, error) {
	registryMu.RLock()
	factory, ok := providers[strings.ToLower(name)]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown extraction provider: %s", name)
	}
	return factory(cfg, deps)
}

// BuildExtractors builds providers in the given order.
func BuildExtractors(names []string, cfg *config.Config, deps Deps) ([]port.FieldExtractor, error) {
	out := make([]port.FieldExtractor, 0, len(names))
	for _, n := range names {
		e, err := NewExtractor(n, cfg, deps)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
