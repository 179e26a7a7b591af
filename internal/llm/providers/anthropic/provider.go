// Package anthropic binds Anthropic's messages API. Authentication goes in
// the x-api-key header rather than a bearer token.
package anthropic

import (
	"github.com/arclight-ai/arclight/internal/llm"
	"github.com/arclight-ai/arclight/internal/llm/protocol"
	"github.com/arclight-ai/arclight/internal/settings"
)

func init() {
	llm.Register("anthropic", New)
}

type Provider struct {
	llm.BaseProvider
}

func New(cfg llm.ProviderConfig, store settings.Store) (llm.Provider, error) {
	if cfg.Protocol == "" {
		cfg.Protocol = llm.ProtocolAnthropic
	}
	if cfg.AuthType == "" {
		cfg.AuthType = llm.AuthAPIKeyHeader
	}
	return &Provider{
		BaseProvider: llm.NewBaseProvider(cfg, store, protocol.Anthropic{}),
	}, nil
}
