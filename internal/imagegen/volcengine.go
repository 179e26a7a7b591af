package imagegen

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/arclight-ai/arclight/internal/httpclient"
	"github.com/arclight-ai/arclight/internal/llm"
	"github.com/arclight-ai/arclight/internal/llm/protocol"
	"github.com/arclight-ai/arclight/internal/settings"
	"github.com/arclight-ai/arclight/pkg/api"
)

// volcengineImageRequest follows the OpenAI-compatible image generation
// shape Volcengine/ByteDance Seedream exposes.
type volcengineImageRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	Size           string `json:"size,omitempty"`
	Quality        string `json:"quality,omitempty"`
	N              int    `json:"n,omitempty"`
	ResponseFormat string `json:"response_format,omitempty"`
}

type volcengineImageResponse struct {
	Data []volcengineImageData `json:"data"`
}

type volcengineImageData struct {
	B64JSON       *string `json:"b64_json"`
	URL           *string `json:"url"`
	RevisedPrompt *string `json:"revised_prompt"`
}

// Volcengine generates images through the Seedream endpoint. Endpoint and
// credential resolution reuse the shared provider base, so tier flags and
// key names behave exactly like they do for chat.
type Volcengine struct {
	base   llm.BaseProvider
	client httpclient.HTTPClient
}

func NewVolcengine(cfg llm.ProviderConfig, store settings.Store) *Volcengine {
	return &Volcengine{
		base:   llm.NewBaseProvider(cfg, store, protocol.OpenAI{}),
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

// WithHTTPClient swaps the transport, for tests.
func (v *Volcengine) WithHTTPClient(client httpclient.HTTPClient) *Volcengine {
	v.client = client
	return v
}

func (v *Volcengine) ID() string { return v.base.ID() }

func (v *Volcengine) Generate(ctx context.Context, model string, req *api.ImageRequest) ([]api.GeneratedImage, error) {
	// Credentials first: a misconfigured vendor must fail attributably
	// before any network traffic.
	creds, err := v.base.Credentials(ctx)
	if err != nil {
		return nil, err
	}

	baseURL, err := v.base.ResolveBaseURL(ctx)
	if err != nil {
		return nil, err
	}
	url := baseURL + "/images/generations"

	body, err := json.Marshal(volcengineImageRequest{
		Model:          model,
		Prompt:         req.Prompt,
		Size:           req.Size,
		Quality:        req.Quality,
		N:              req.N,
		ResponseFormat: req.ResponseFormat,
	})
	if err != nil {
		return nil, llm.RequestBuildError(v.base.ID(), "%v", err)
	}

	headers := map[string]string{"Content-Type": "application/json"}
	v.base.ApplyAuth(headers, creds)

	respBody, err := httpclient.SendRequest(ctx, v.client, http.MethodPost, url, headers, body)
	if err != nil {
		var upstream *httpclient.UpstreamError
		if errors.As(err, &upstream) {
			return nil, llm.UpstreamStatusError(v.base.ID(), upstream.StatusCode, upstream.Body)
		}
		return nil, llm.TransportError(v.base.ID(), err)
	}

	var payload volcengineImageResponse
	if err := json.Unmarshal(respBody, &payload); err != nil {
		return nil, llm.ResponseParseError(v.base.ID(), err)
	}

	images := make([]api.GeneratedImage, 0, len(payload.Data))
	for _, item := range payload.Data {
		images = append(images, api.GeneratedImage{
			B64JSON:       item.B64JSON,
			URL:           item.URL,
			MimeType:      "image/png",
			RevisedPrompt: item.RevisedPrompt,
		})
	}

	return images, nil
}
