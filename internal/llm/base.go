package llm

import (
	"context"

	"github.com/arclight-ai/arclight/internal/llm/protocol"
	"github.com/arclight-ai/arclight/internal/settings"
	"github.com/arclight-ai/arclight/pkg/api"
)

// BaseProvider is the shared behavior every vendor binding composes: config
// ownership, endpoint and credential resolution, and delegation to the wire
// dialect. Vendor packages embed it and override only what their vendor
// actually deviates on.
type BaseProvider struct {
	cfg      ProviderConfig
	store    settings.Store
	protocol protocol.Strategy
}

func NewBaseProvider(cfg ProviderConfig, store settings.Store, strategy protocol.Strategy) BaseProvider {
	if cfg.AuthType == "" {
		cfg.AuthType = AuthBearer
	}
	return BaseProvider{cfg: cfg, store: store, protocol: strategy}
}

func (b *BaseProvider) ID() string   { return b.cfg.ID }
func (b *BaseProvider) Name() string { return b.cfg.Name }

func (b *BaseProvider) ProtocolType() ProtocolType { return b.cfg.Protocol }

func (b *BaseProvider) Config() *ProviderConfig { return &b.cfg }

func (b *BaseProvider) ResolveBaseURL(ctx context.Context) (string, error) {
	return ResolveEndpoint(ctx, &b.cfg, b.store)
}

func (b *BaseProvider) Credentials(ctx context.Context) (Credentials, error) {
	if b.cfg.APIKeyName == "" {
		return NoCredentials(), CredentialMissingError(b.cfg.ID, "(unset)")
	}
	token, ok, err := b.store.Get(ctx, b.cfg.APIKeyName)
	if err != nil {
		return NoCredentials(), TransportError(b.cfg.ID, err)
	}
	if !ok || token == "" {
		return NoCredentials(), CredentialMissingError(b.cfg.ID, b.cfg.APIKeyName)
	}
	return TokenCredentials(token), nil
}

func (b *BaseProvider) ApplyAuth(headers map[string]string, creds Credentials) {
	if creds.Kind != CredentialToken {
		return
	}
	switch b.cfg.AuthType {
	case AuthAPIKeyHeader:
		headers["x-api-key"] = creds.Token
	default:
		headers["Authorization"] = "Bearer " + creds.Token
	}
}

// AddProviderHeaders is a no-op by default; vendor bindings with special
// header requirements shadow it.
func (b *BaseProvider) AddProviderHeaders(_ context.Context, _ map[string]string) error {
	return nil
}

func (b *BaseProvider) ChatPath() string { return b.protocol.ChatPath() }

func (b *BaseProvider) BuildProtocolHeaders() map[string]string {
	return b.protocol.BuildHeaders(protocol.HeaderContext{ExtraHeaders: b.cfg.Headers})
}

func (b *BaseProvider) BuildProtocolRequest(model string, req *api.ChatRequest, stream bool) ([]byte, error) {
	body, err := b.protocol.BuildRequest(protocol.RequestContext{
		Model:     model,
		Request:   req,
		Stream:    stream,
		ExtraBody: b.cfg.ExtraBody,
	})
	if err != nil {
		return nil, RequestBuildError(b.cfg.ID, "%v", err)
	}
	return body, nil
}

func (b *BaseProvider) ParseProtocolResponse(body []byte) (*api.ChatResponse, error) {
	resp, err := b.protocol.ParseResponse(body)
	if err != nil {
		return nil, ResponseParseError(b.cfg.ID, err)
	}
	return resp, nil
}

func (b *BaseProvider) ParseProtocolStreamEvent(chunk []byte, state *protocol.ParseState) (*api.StreamEvent, error) {
	return b.protocol.ParseStreamEvent(chunk, state)
}
