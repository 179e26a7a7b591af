// Package settings is the runtime key-value source behind credential and
// endpoint-tier resolution. Provider API keys and per-provider flags live in
// the same namespace, so one lookup primitive serves both.
package settings

import (
	"context"
	"os"
	"strings"
	"sync"
)

// Store resolves a string value by name. The boolean reports whether the key
// is configured at all; an absent key is not an error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
}

// Bool reads a key and interprets it as a flag. Absent or unparseable values
// are false; store errors surface to the caller.
func Bool(ctx context.Context, s Store, key string) (bool, error) {
	val, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "1", "true", "yes", "on":
		return true, nil
	}
	return false, nil
}

// MemoryStore is a mutable in-process store. It backs tests and the static
// values loaded from configuration at startup.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore(values map[string]string) *MemoryStore {
	m := &MemoryStore{values: make(map[string]string, len(values))}
	for k, v := range values {
		m.values[k] = v
	}
	return m
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

func (m *MemoryStore) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
}

// EnvStore resolves keys from process environment variables. Dots in keys map
// to underscores, uppercased: "provider.kimi.api_key" → "PROVIDER_KIMI_API_KEY".
type EnvStore struct{}

func (EnvStore) Get(_ context.Context, key string) (string, bool, error) {
	name := strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return "", false, nil
	}
	return v, true, nil
}

// Chain consults stores in order and returns the first hit. A store error
// stops the chain; absence falls through to the next store.
type Chain []Store

func (c Chain) Get(ctx context.Context, key string) (string, bool, error) {
	for _, s := range c {
		v, ok, err := s.Get(ctx, key)
		if err != nil {
			return "", false, err
		}
		if ok {
			return v, true, nil
		}
	}
	return "", false, nil
}
