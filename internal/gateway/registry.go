package gateway

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/arclight-ai/arclight/internal/llm"
	"github.com/arclight-ai/arclight/pkg/api"
)

// registry maps public model ids to the provider that serves them and the
// vendor-side model id. It is thread-safe.
type registry struct {
	mu     sync.RWMutex
	routes map[string]route
}

type route struct {
	ProviderID string
	UpstreamID string
	Name       string
	Image      bool
}

func newRegistry() *registry {
	return &registry{routes: make(map[string]route)}
}

func (r *registry) addModels(providerID string, models []llm.ModelConfig, image bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range models {
		r.routes[m.ID] = route{
			ProviderID: providerID,
			UpstreamID: m.Upstream(),
			Name:       m.Name,
			Image:      image,
		}
	}
}

// resolve returns the provider id and upstream model id for a public model.
func (r *registry) resolve(modelID string) (route, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if rt, ok := r.routes[modelID]; ok {
		return rt, nil
	}
	return route{}, fmt.Errorf("model not found: %s", modelID)
}

func (r *registry) list(filter api.ModelFilter) []api.Model {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []api.Model
	for id, rt := range r.routes {
		if filter.Provider != "" && !strings.EqualFold(rt.ProviderID, filter.Provider) {
			continue
		}
		if filter.ID != "" && !strings.Contains(strings.ToLower(id), strings.ToLower(filter.ID)) {
			continue
		}
		results = append(results, api.Model{
			ID:       id,
			Object:   "model",
			Name:     rt.Name,
			Provider: rt.ProviderID,
			OwnedBy:  "system",
		})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results
}
