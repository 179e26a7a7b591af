// Package protocol implements the wire dialects shared by vendors that speak
// the same request/header/stream shape. A Strategy is stateless and reusable;
// all per-stream state lives in the ParseState the caller threads through
// successive ParseStreamEvent calls.
package protocol

import (
	"github.com/arclight-ai/arclight/pkg/api"
)

// HeaderContext carries the vendor-level inputs to header construction.
// Authentication is not built here; the provider layers it on afterwards.
type HeaderContext struct {
	// ExtraHeaders are vendor-level default headers from configuration.
	// They override dialect-fixed headers on key collision.
	ExtraHeaders map[string]string
}

// RequestContext carries the normalized request plus vendor-level overrides
// into body construction.
type RequestContext struct {
	Model   string
	Request *api.ChatRequest
	Stream  bool

	// ExtraBody fields are merged into the dialect body last, so a vendor
	// override always wins.
	ExtraBody map[string]interface{}
}

// Strategy is one wire dialect. Implementations must be safe for concurrent
// use by multiple providers; they hold no mutable state.
type Strategy interface {
	Name() string

	// ChatPath is the path appended to the resolved base URL for chat calls.
	ChatPath() string

	// BuildHeaders returns the dialect-fixed headers merged with the vendor
	// defaults from ctx. No authentication.
	BuildHeaders(ctx HeaderContext) map[string]string

	// BuildRequest maps the normalized request into the dialect body.
	BuildRequest(ctx RequestContext) ([]byte, error)

	// ParseResponse normalizes a non-streaming vendor response body.
	ParseResponse(body []byte) (*api.ChatResponse, error)

	// ParseStreamEvent consumes one chunk of raw stream input, mutates state,
	// and returns at most one normalized event. Callers drain buffered events
	// by calling again with an empty chunk until nil is returned. In-band
	// vendor errors come back as error-kind events, not Go errors.
	ParseStreamEvent(chunk []byte, state *ParseState) (*api.StreamEvent, error)
}

func mergeHeaders(base map[string]string, extra map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
