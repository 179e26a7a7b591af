// Package llm holds the provider abstraction: the capability interface each
// vendor binding implements, the shared endpoint/credential resolution, and
// the typed errors the dispatcher maps outward.
package llm

import (
	"context"

	"github.com/arclight-ai/arclight/internal/llm/protocol"
	"github.com/arclight-ai/arclight/pkg/api"
)

// Provider binds one vendor's configuration, its wire dialect, and any
// vendor-specific overrides into a single callable unit. The set of
// implementations is closed and constructed once at startup from static
// configuration.
type Provider interface {
	ID() string
	Name() string
	ProtocolType() ProtocolType
	Config() *ProviderConfig

	// ResolveBaseURL picks the base URL for this call, honoring endpoint
	// tiers enabled in the settings store.
	ResolveBaseURL(ctx context.Context) (string, error)

	// Credentials resolves this vendor's secret. A missing secret is a
	// vendor-attributed CredentialMissing error, never a transport failure.
	Credentials(ctx context.Context) (Credentials, error)

	// ApplyAuth attaches the credential to the outgoing headers according to
	// the configured auth scheme.
	ApplyAuth(headers map[string]string, creds Credentials)

	// AddProviderHeaders mutates headers with vendor-specific overrides.
	// It runs after the shared dialect defaults and after auth, so a vendor
	// override always wins on key collision.
	AddProviderHeaders(ctx context.Context, headers map[string]string) error

	// Pass-through delegation to the bound wire dialect.
	ChatPath() string
	BuildProtocolHeaders() map[string]string
	BuildProtocolRequest(model string, req *api.ChatRequest, stream bool) ([]byte, error)
	ParseProtocolResponse(body []byte) (*api.ChatResponse, error)
	ParseProtocolStreamEvent(chunk []byte, state *protocol.ParseState) (*api.StreamEvent, error)
}
