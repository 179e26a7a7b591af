// Package openaicompat is the generic binding for vendors speaking the
// OpenAI chat/completions dialect. OpenAI, DeepSeek, Volcengine, Zhipu and
// similar vendors all use this type and differ only in configuration.
package openaicompat

import (
	"github.com/arclight-ai/arclight/internal/llm"
	"github.com/arclight-ai/arclight/internal/llm/protocol"
	"github.com/arclight-ai/arclight/internal/settings"
)

func init() {
	llm.Register("openai-compatible", New)
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
