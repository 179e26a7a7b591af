package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arclight-ai/arclight/internal/settings"
)

func TestResolveEndpoint_TrailingSlashStripped(t *testing.T) {
	cfg := &ProviderConfig{ID: "p", BaseURL: "https://api.example.com/v1/"}
	url, err := ResolveEndpoint(context.Background(), cfg, settings.NewMemoryStore(nil))
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/v1", url)
}

func TestResolveEndpoint_TierPrecedence(t *testing.T) {
	cfg := &ProviderConfig{
		ID:                    "kimi",
		BaseURL:               "https://default/",
		CodingBaseURL:         "https://coding/",
		InternationalBaseURL:  "https://intl/",
		SupportsCodingPlan:    true,
		SupportsInternational: true,
	}

	// No flags enabled: default wins.
	store := settings.NewMemoryStore(nil)
	url, err := ResolveEndpoint(context.Background(), cfg, store)
	require.NoError(t, err)
	assert.Equal(t, "https://default", url)

	// International flag alone.
	store.Set("provider.kimi.use_international_endpoint", "true")
	url, err = ResolveEndpoint(context.Background(), cfg, store)
	require.NoError(t, err)
	assert.Equal(t, "https://intl", url)

	// Coding flag beats international when both are on.
	store.Set("provider.kimi.use_coding_endpoint", "true")
	url, err = ResolveEndpoint(context.Background(), cfg, store)
	require.NoError(t, err)
	assert.Equal(t, "https://coding", url)
}

func TestResolveEndpoint_FlagWithoutCapabilityIgnored(t *testing.T) {
	cfg := &ProviderConfig{
		ID:            "p",
		BaseURL:       "https://default",
		CodingBaseURL: "https://coding",
		// SupportsCodingPlan deliberately false
	}
	store := settings.NewMemoryStore(map[string]string{
		"provider.p.use_coding_endpoint": "true",
	})

	url, err := ResolveEndpoint(context.Background(), cfg, store)
	require.NoError(t, err)
	assert.Equal(t, "https://default", url)
}

func TestResolveEndpoint_NoURLConfigured(t *testing.T) {
	cfg := &ProviderConfig{ID: "p"}
	_, err := ResolveEndpoint(context.Background(), cfg, settings.NewMemoryStore(nil))
	require.Error(t, err)
	assert.True(t, IsKind(err, KindEndpointUnresolved))
}
