package llm

import (
	"context"
	"strings"

	"github.com/arclight-ai/arclight/internal/settings"
)

// Settings keys flipping a vendor onto an alternate endpoint tier.
func codingEndpointKey(providerID string) string {
	return "provider." + providerID + ".use_coding_endpoint"
}

func internationalEndpointKey(providerID string) string {
	return "provider." + providerID + ".use_international_endpoint"
}

// ResolveEndpoint deterministically picks one base URL for a vendor call.
// Tier precedence is fixed: coding plan, then international, then the
// default base URL. A tier is eligible only when its URL is configured, its
// capability flag is set, and its runtime flag is enabled in the store.
func ResolveEndpoint(ctx context.Context, cfg *ProviderConfig, store settings.Store) (string, error) {
	if cfg.SupportsCodingPlan && cfg.CodingBaseURL != "" {
		enabled, err := settings.Bool(ctx, store, codingEndpointKey(cfg.ID))
		if err != nil {
			return "", TransportError(cfg.ID, err)
		}
		if enabled {
			return strings.TrimRight(cfg.CodingBaseURL, "/"), nil
		}
	}

	if cfg.SupportsInternational && cfg.InternationalBaseURL != "" {
		enabled, err := settings.Bool(ctx, store, internationalEndpointKey(cfg.ID))
		if err != nil {
			return "", TransportError(cfg.ID, err)
		}
		if enabled {
			return strings.TrimRight(cfg.InternationalBaseURL, "/"), nil
		}
	}

	if cfg.BaseURL != "" {
		return strings.TrimRight(cfg.BaseURL, "/"), nil
	}

	return "", EndpointUnresolvedError(cfg.ID)
}
