// Package kimi binds Moonshot's Kimi coding-plan endpoint. It speaks the
// shared OpenAI dialect; the only deviation is the fixed client
// identification header the coding-plan endpoint requires.
package kimi

import (
	"context"

	"github.com/arclight-ai/arclight/internal/llm"
	"github.com/arclight-ai/arclight/internal/llm/protocol"
	"github.com/arclight-ai/arclight/internal/settings"
)

const codingUserAgent = "KimiCLI/1.3"

func init() {
	llm.Register("kimi-coding", New)
}

type Provider struct {
	llm.BaseProvider
}

func New(cfg llm.ProviderConfig, store settings.Store) (llm.Provider, error) {
	if cfg.Protocol == "" {
		cfg.Protocol = llm.ProtocolOpenAI
	}
	return &Provider{
		BaseProvider: llm.NewBaseProvider(cfg, store, protocol.OpenAI{}),
	}, nil
}

// AddProviderHeaders sets the KimiCLI User-Agent the coding-plan endpoint
// expects. It runs last, so it wins over any dialect or config default.
func (p *Provider) AddProviderHeaders(_ context.Context, headers map[string]string) error {
	headers["User-Agent"] = codingUserAgent
	return nil
}
