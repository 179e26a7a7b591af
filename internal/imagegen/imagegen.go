// Package imagegen holds the image-generation adapters. Image APIs are
// request/response rather than streamed, so adapters here do not use the
// chat wire dialects, but they follow the same base-URL and credential
// resolution contract as the chat providers.
package imagegen

import (
	"context"

	"github.com/arclight-ai/arclight/pkg/api"
)

// Client generates images for one vendor.
type Client interface {
	ID() string
	Generate(ctx context.Context, model string, req *api.ImageRequest) ([]api.GeneratedImage, error)
}
