package llm

import (
	"fmt"
	"sync"

	"github.com/arclight-ai/arclight/internal/settings"
)

// Factory builds one provider variant from its static configuration.
type Factory func(cfg ProviderConfig, store settings.Store) (Provider, error)

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

// Register installs a factory for a provider type. Vendor packages call this
// from init(); importing the package is what makes the type available.
func Register(providerType string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := factories[providerType]; exists {
		panic(fmt.Sprintf("provider factory %s already registered", providerType))
	}
	factories[providerType] = f
}

// Get looks up the factory for a provider type.
func Get(providerType string) (Factory, error) {
	mu.RLock()
	defer mu.RUnlock()
	f, ok := factories[providerType]
	if !ok {
		return nil, fmt.Errorf("provider factory not found for type: %s", providerType)
	}
	return f, nil
}
