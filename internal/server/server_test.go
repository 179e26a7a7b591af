package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arclight-ai/arclight/internal/config"
	"github.com/arclight-ai/arclight/internal/gateway"
	"github.com/arclight-ai/arclight/internal/llm"
	"github.com/arclight-ai/arclight/internal/llm/providers/openaicompat"
	"github.com/arclight-ai/arclight/internal/server"
	"github.com/arclight-ai/arclight/internal/settings"
	"github.com/arclight-ai/arclight/pkg/api"
)

func newTestServer(t *testing.T, apiKeys []string, upstream http.HandlerFunc) *server.Server {
	t.Helper()

	svc := gateway.NewService(zap.NewNop(), nil, nil)
	if upstream != nil {
		ts := httptest.NewServer(upstream)
		t.Cleanup(ts.Close)

		store := settings.NewMemoryStore(map[string]string{"test_api_key": "sk-test"})
		p, err := openaicompat.New(llm.ProviderConfig{
			ID: "testvendor", BaseURL: ts.URL, APIKeyName: "test_api_key",
		}, store)
		require.NoError(t, err)
		require.NoError(t, svc.RegisterProvider(p, []llm.ModelConfig{
			{ID: "testvendor/small", UpstreamID: "small-v2", Name: "Small"},
		}))
	}

	cfg := &config.Config{}
	cfg.Server.APIKeys = apiKeys
	cfg.RateLimit.RequestsPerSecond = 100
	cfg.RateLimit.Burst = 100
	return server.New(cfg, zap.NewNop(), svc, nil, "test")
}

func TestHealthIsPublic(t *testing.T) {
	srv := newTestServer(t, []string{"secret"}, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status"`)
}

func TestAuthRequiredOnV1(t *testing.T) {
	srv := newTestServer(t, []string{"secret"}, func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/models", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/models", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListModels(t *testing.T) {
	srv := newTestServer(t, nil, func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/models", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var list api.ModelList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, "list", list.Object)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "testvendor/small", list.Data[0].ID)
}

func TestChatCompletion_EndToEnd(t *testing.T) {
	srv := newTestServer(t, []string{"secret"}, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"model": "small-v2",
			"choices": [{"index":0,"message":{"role":"assistant","content":"Hi!"},"finish_reason":"stop"}],
			"usage": {"prompt_tokens":1,"completion_tokens":1,"total_tokens":2}
		}`))
	})

	body := `{"model":"testvendor/small","messages":[{"role":"user","content":"Hello"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp api.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "testvendor/small", resp.Model)
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "Hi!", resp.Choices[0].Message.Content.Text)
}

func TestChatCompletion_ValidationProblem(t *testing.T) {
	srv := newTestServer(t, nil, func(w http.ResponseWriter, r *http.Request) {})

	// Missing messages entirely.
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(`{"model":"x"}`))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")
}

func TestChatCompletion_UnknownModelProblem(t *testing.T) {
	srv := newTestServer(t, nil, func(w http.ResponseWriter, r *http.Request) {})

	body := `{"model":"nobody/none","messages":[{"role":"user","content":"Hello"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// closeNotifyRecorder adds the CloseNotify method gin's Context.Stream
// requires; plain httptest recorders lack it, while real server response
// writers always have it.
type closeNotifyRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func newCloseNotifyRecorder() *closeNotifyRecorder {
	return &closeNotifyRecorder{httptest.NewRecorder(), make(chan bool, 1)}
}

func (c *closeNotifyRecorder) CloseNotify() <-chan bool { return c.closed }

func TestStreamingCompletion_SSE(t *testing.T) {
	srv := newTestServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, line := range []string{
			`data: {"choices":[{"delta":{"content":"Hey"}}]}`,
			`data: {"choices":[{"delta":{},"finish_reason":"stop"}]}`,
			`data: [DONE]`,
		} {
			_, _ = w.Write([]byte(line + "\n\n"))
		}
	})

	body := `{"model":"testvendor/small","stream":true,"messages":[{"role":"user","content":"Hello"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := newCloseNotifyRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/event-stream")

	out := rec.Body.String()
	assert.Contains(t, out, `"content":"Hey"`)
	assert.Contains(t, out, `"finish_reason":"stop"`)
	assert.True(t, strings.Contains(out, "data: [DONE]"), "stream must end with the DONE sentinel")
}
