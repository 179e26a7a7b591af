// Package gateway routes normalized requests to the provider serving the
// requested model and drives the full call lifecycle: endpoint resolution,
// credentials, header assembly, transport, and response normalization.
package gateway

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arclight-ai/arclight/internal/analytics"
	"github.com/arclight-ai/arclight/internal/httpclient"
	"github.com/arclight-ai/arclight/internal/imagegen"
	"github.com/arclight-ai/arclight/internal/llm"
	"github.com/arclight-ai/arclight/internal/llm/protocol"
	"github.com/arclight-ai/arclight/internal/store/model"
	"github.com/arclight-ai/arclight/pkg/api"
)

var (
	ErrProviderNotFound = errors.New("provider not found")
	ErrRouteNotFound    = errors.New("no provider configured for this model")
)

// Service defines the business logic for routing requests.
type Service interface {
	// RegisterProvider installs a chat provider and its model routes.
	RegisterProvider(p llm.Provider, models []llm.ModelConfig) error
	// RegisterImageClient installs an image-generation client and its model routes.
	RegisterImageClient(c imagegen.Client, models []llm.ModelConfig) error

	GetProviderForModel(modelID string) (llm.Provider, string, error)
	ListAllModels(filter api.ModelFilter) []api.Model

	Chat(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error)
	StreamChat(ctx context.Context, req *api.ChatRequest) (<-chan api.StreamResult, error)
	GenerateImage(ctx context.Context, req *api.ImageRequest) (*api.ImageResponse, error)
}

type service struct {
	logger   *zap.Logger
	ingestor analytics.Ingestor
	client   httpclient.HTTPClient

	mu           sync.RWMutex
	providers    map[string]llm.Provider
	imageClients map[string]imagegen.Client
	registry     *registry
}

func NewService(logger *zap.Logger, ingestor analytics.Ingestor, client httpclient.HTTPClient) Service {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}
	return &service{
		logger:       logger,
		ingestor:     ingestor,
		client:       client,
		providers:    make(map[string]llm.Provider),
		imageClients: make(map[string]imagegen.Client),
		registry:     newRegistry(),
	}
}

func (s *service) RegisterProvider(p llm.Provider, models []llm.ModelConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.providers[p.ID()]; exists {
		return fmt.Errorf("provider %s already registered", p.ID())
	}
	s.providers[p.ID()] = p
	s.registry.addModels(p.ID(), models, false)
	return nil
}

func (s *service) RegisterImageClient(c imagegen.Client, models []llm.ModelConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.imageClients[c.ID()]; exists {
		return fmt.Errorf("image client %s already registered", c.ID())
	}
	s.imageClients[c.ID()] = c
	s.registry.addModels(c.ID(), models, true)
	return nil
}

// GetProviderForModel finds the provider for a model id and returns the
// provider and the vendor-side model id.
func (s *service) GetProviderForModel(modelID string) (llm.Provider, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rt, err := s.registry.resolve(modelID)
	if err != nil || rt.Image {
		return nil, "", api.BadRequestError(fmt.Sprintf("no chat provider configured for model '%s'", modelID))
	}

	if p, exists := s.providers[rt.ProviderID]; exists {
		return p, rt.UpstreamID, nil
	}
	return nil, "", api.ProviderError(fmt.Sprintf("provider '%s' configured but not active/loaded", rt.ProviderID), nil)
}

func (s *service) ListAllModels(filter api.ModelFilter) []api.Model {
	return s.registry.list(filter)
}

// prepare runs the provider-agnostic call setup: base URL, credentials,
// header assembly, request body. Header precedence is dialect defaults,
// then auth, then vendor overrides, so a vendor always wins on collision.
func (s *service) prepare(ctx context.Context, p llm.Provider, upstreamID string, req *api.ChatRequest, stream bool) (url string, headers map[string]string, body []byte, err error) {
	baseURL, err := p.ResolveBaseURL(ctx)
	if err != nil {
		return "", nil, nil, err
	}

	creds, err := p.Credentials(ctx)
	if err != nil {
		return "", nil, nil, err
	}

	headers = p.BuildProtocolHeaders()
	p.ApplyAuth(headers, creds)
	if err := p.AddProviderHeaders(ctx, headers); err != nil {
		return "", nil, nil, err
	}

	body, err = p.BuildProtocolRequest(upstreamID, req, stream)
	if err != nil {
		return "", nil, nil, err
	}

	return baseURL + p.ChatPath(), headers, body, nil
}

func (s *service) Chat(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error) {
	provider, upstreamID, err := s.GetProviderForModel(req.Model)
	if err != nil {
		return nil, err
	}

	start := time.Now()

	url, headers, body, err := s.prepare(ctx, provider, upstreamID, req, false)
	if err != nil {
		s.logChat(provider.ID(), req.Model, upstreamID, nil, start, err)
		return nil, err
	}

	respBody, err := httpclient.SendRequest(ctx, s.client, http.MethodPost, url, headers, body)
	if err != nil {
		err = mapTransportErr(provider.ID(), err)
		s.logChat(provider.ID(), req.Model, upstreamID, nil, start, err)
		return nil, err
	}

	resp, err := provider.ParseProtocolResponse(respBody)
	if err != nil {
		s.logChat(provider.ID(), req.Model, upstreamID, nil, start, err)
		return nil, err
	}

	// The caller asked for the public model id, not the vendor's.
	resp.Model = req.Model
	if resp.ID == "" {
		resp.ID = "chatcmpl-" + uuid.NewString()
	}

	s.logChat(provider.ID(), req.Model, upstreamID, resp, start, nil)
	return resp, nil
}

func (s *service) StreamChat(ctx context.Context, req *api.ChatRequest) (<-chan api.StreamResult, error) {
	provider, upstreamID, err := s.GetProviderForModel(req.Model)
	if err != nil {
		return nil, err
	}

	start := time.Now()

	url, headers, body, err := s.prepare(ctx, provider, upstreamID, req, true)
	if err != nil {
		s.logChat(provider.ID(), req.Model, upstreamID, nil, start, err)
		return nil, err
	}

	outChan := make(chan api.StreamResult)

	go func() {
		defer close(outChan)

		state := protocol.NewParseState()
		var ttft *time.Duration
		var usage *api.ResponseUsage
		var finishReason string

		send := func(res api.StreamResult) bool {
			select {
			case outChan <- res:
				return true
			case <-ctx.Done():
				return false
			}
		}

		emit := func(ev *api.StreamEvent) error {
			if ttft == nil {
				d := time.Since(start)
				ttft = &d
			}
			switch ev.Type {
			case api.EventDone:
				finishReason = ev.FinishReason
				usage = ev.Usage
			case api.EventError:
				finishReason = "error"
			}
			if !send(api.StreamResult{Event: ev}) {
				return ctx.Err()
			}
			return nil
		}

		streamErr := httpclient.StreamRequest(ctx, s.client, http.MethodPost, url, headers, body, func(chunk []byte) error {
			next := chunk
			for {
				ev, perr := provider.ParseProtocolStreamEvent(next, state)
				if perr != nil {
					return llm.StreamProtocolError(provider.ID(), perr)
				}
				if ev == nil {
					return nil
				}
				if err := emit(ev); err != nil {
					return err
				}
				// Drain events already buffered from this chunk.
				next = nil
			}
		})

		if streamErr != nil {
			streamErr = mapTransportErr(provider.ID(), streamErr)
			send(api.StreamResult{Err: streamErr})
			s.streamLog(provider.ID(), req.Model, upstreamID, start, ttft, usage, finishReason, streamErr)
			return
		}

		// The connection closed without a terminal sentinel; synthesize the
		// done event so consumers always observe a terminal.
		if !state.Done() {
			if finishReason == "" {
				finishReason = "stop"
			}
			_ = emit(&api.StreamEvent{Type: api.EventDone, FinishReason: finishReason, Usage: usage})
		}

		s.streamLog(provider.ID(), req.Model, upstreamID, start, ttft, usage, finishReason, nil)
	}()

	return outChan, nil
}

func (s *service) GenerateImage(ctx context.Context, req *api.ImageRequest) (*api.ImageResponse, error) {
	s.mu.RLock()
	rt, err := s.registry.resolve(req.Model)
	var client imagegen.Client
	if err == nil && rt.Image {
		client = s.imageClients[rt.ProviderID]
	}
	s.mu.RUnlock()

	if err != nil || !rt.Image {
		return nil, api.BadRequestError(fmt.Sprintf("no image provider configured for model '%s'", req.Model))
	}
	if client == nil {
		return nil, api.ProviderError(fmt.Sprintf("image client '%s' configured but not active/loaded", rt.ProviderID), nil)
	}

	start := time.Now()
	images, err := client.Generate(ctx, rt.UpstreamID, req)

	log := &model.RequestLog{
		ID:              "img-" + uuid.NewString(),
		Kind:            "image",
		ProviderID:      rt.ProviderID,
		ModelID:         req.Model,
		UpstreamModelID: rt.UpstreamID,
		StatusCode:      http.StatusOK,
		LatencyMs:       time.Since(start).Milliseconds(),
		CreatedAt:       time.Now(),
	}
	if err != nil {
		log.StatusCode = statusForError(err)
		log.ErrorKind = errorKind(err)
	}
	s.ingest(log)

	if err != nil {
		return nil, err
	}

	return &api.ImageResponse{
		Created: time.Now().Unix(),
		Data:    images,
	}, nil
}

func (s *service) ingest(log *model.RequestLog) {
	if s.ingestor != nil {
		s.ingestor.Log(log)
	}
}

func (s *service) logChat(providerID, modelID, upstreamID string, resp *api.ChatResponse, start time.Time, err error) {
	log := &model.RequestLog{
		ID:              "req-" + uuid.NewString(),
		Kind:            "chat",
		ProviderID:      providerID,
		ModelID:         modelID,
		UpstreamModelID: upstreamID,
		StatusCode:      http.StatusOK,
		LatencyMs:       time.Since(start).Milliseconds(),
		CreatedAt:       time.Now(),
	}
	if resp != nil {
		if resp.ID != "" {
			log.ID = resp.ID
		}
		if len(resp.Choices) > 0 {
			log.FinishReason = sql.NullString{String: resp.Choices[0].FinishReason, Valid: true}
		}
		if resp.Usage != nil {
			log.InputTokens = resp.Usage.PromptTokens
			log.OutputTokens = resp.Usage.CompletionTokens
		}
	}
	if err != nil {
		log.StatusCode = statusForError(err)
		log.ErrorKind = errorKind(err)
	}
	s.ingest(log)
}

func (s *service) streamLog(providerID, modelID, upstreamID string, start time.Time, ttft *time.Duration, usage *api.ResponseUsage, finishReason string, err error) {
	log := &model.RequestLog{
		ID:              "req-" + uuid.NewString(),
		Kind:            "chat",
		ProviderID:      providerID,
		ModelID:         modelID,
		UpstreamModelID: upstreamID,
		StatusCode:      http.StatusOK,
		LatencyMs:       time.Since(start).Milliseconds(),
		IsStreamed:      true,
		CreatedAt:       time.Now(),
	}
	if ttft != nil {
		log.TTFTMs = sql.NullInt64{Int64: ttft.Milliseconds(), Valid: true}
	}
	if finishReason != "" {
		log.FinishReason = sql.NullString{String: finishReason, Valid: true}
	}
	if usage != nil {
		log.InputTokens = usage.PromptTokens
		log.OutputTokens = usage.CompletionTokens
	}
	if err != nil {
		log.StatusCode = statusForError(err)
		log.ErrorKind = errorKind(err)
	}
	s.ingest(log)
}

// mapTransportErr lifts raw transport failures into vendor-attributed errors.
// Errors already classified pass through untouched.
func mapTransportErr(providerID string, err error) error {
	var gwErr *llm.Error
	if errors.As(err, &gwErr) {
		return err
	}
	var upstream *httpclient.UpstreamError
	if errors.As(err, &upstream) {
		return llm.UpstreamStatusError(providerID, upstream.StatusCode, upstream.Body)
	}
	return llm.TransportError(providerID, err)
}

func errorKind(err error) sql.NullString {
	var gwErr *llm.Error
	if errors.As(err, &gwErr) {
		return sql.NullString{String: string(gwErr.Kind), Valid: true}
	}
	return sql.NullString{String: "internal", Valid: true}
}

func statusForError(err error) int {
	var gwErr *llm.Error
	if errors.As(err, &gwErr) {
		switch gwErr.Kind {
		case llm.KindUpstreamError:
			if gwErr.Status != 0 {
				return gwErr.Status
			}
			return http.StatusBadGateway
		case llm.KindCredentialMissing, llm.KindEndpointUnresolved, llm.KindRequestBuildFailed:
			return http.StatusBadRequest
		default:
			return http.StatusBadGateway
		}
	}
	return http.StatusInternalServerError
}
