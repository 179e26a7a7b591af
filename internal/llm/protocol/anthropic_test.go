package protocol_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arclight-ai/arclight/internal/llm/protocol"
	"github.com/arclight-ai/arclight/pkg/api"
)

const anthropicTranscript = "event: message_start\n" +
	"data: {\"type\":\"message_start\",\"message\":{\"usage\":{\"input_tokens\":10,\"output_tokens\":0}}}\n\n" +
	"event: content_block_delta\n" +
	"data: {\"type\":\"content_block_delta\",\"index\":0,\"delta\":{\"type\":\"text_delta\",\"text\":\"Hi \"}}\n\n" +
	"data: {\"type\":\"content_block_delta\",\"index\":0,\"delta\":{\"type\":\"text_delta\",\"text\":\"there\"}}\n\n" +
	"data: {\"type\":\"message_delta\",\"delta\":{\"stop_reason\":\"end_turn\"},\"usage\":{\"output_tokens\":4}}\n\n" +
	"data: {\"type\":\"message_stop\"}\n\n"

func TestAnthropicStream_Basic(t *testing.T) {
	state := protocol.NewParseState()
	events := drain(t, protocol.Anthropic{}, state, []byte(anthropicTranscript))

	require.Len(t, events, 3)
	assert.Equal(t, "Hi ", events[0].Content)
	assert.Equal(t, "there", events[1].Content)

	done := events[2]
	assert.Equal(t, api.EventDone, done.Type)
	assert.Equal(t, "stop", done.FinishReason, "end_turn normalizes to stop")
	require.NotNil(t, done.Usage)
	assert.Equal(t, 10, done.Usage.PromptTokens)
	assert.Equal(t, 4, done.Usage.CompletionTokens)
	assert.True(t, state.Done())
}

func TestAnthropicStream_ChunkBoundaryInvariance(t *testing.T) {
	whole := drain(t, protocol.Anthropic{}, protocol.NewParseState(), []byte(anthropicTranscript))

	state := protocol.NewParseState()
	var bytewise []*api.StreamEvent
	for i := 0; i < len(anthropicTranscript); i++ {
		bytewise = append(bytewise, drain(t, protocol.Anthropic{}, state, []byte{anthropicTranscript[i]})...)
	}

	require.Equal(t, len(whole), len(bytewise))
	var a, b strings.Builder
	for i := range whole {
		a.WriteString(whole[i].Content)
		b.WriteString(bytewise[i].Content)
		assert.Equal(t, whole[i].Type, bytewise[i].Type)
	}
	assert.Equal(t, a.String(), b.String())
}

func TestAnthropicStream_MessageStopThenSilence(t *testing.T) {
	state := protocol.NewParseState()
	events := drain(t, protocol.Anthropic{}, state, []byte("data: {\"type\":\"message_stop\"}\n\n"))

	require.Len(t, events, 1)
	assert.Equal(t, api.EventDone, events[0].Type)
	assert.True(t, state.Done())

	after := drain(t, protocol.Anthropic{}, state,
		[]byte("data: {\"type\":\"content_block_delta\",\"index\":0,\"delta\":{\"type\":\"text_delta\",\"text\":\"late\"}}\n\n"))
	assert.Empty(t, after)
}

func TestAnthropicStream_ThinkingDelta(t *testing.T) {
	state := protocol.NewParseState()
	events := drain(t, protocol.Anthropic{}, state,
		[]byte("data: {\"type\":\"content_block_delta\",\"index\":0,\"delta\":{\"type\":\"thinking_delta\",\"thinking\":\"hmm\"}}\n\n"))

	require.Len(t, events, 1)
	assert.Equal(t, api.EventContentDelta, events[0].Type)
	assert.Equal(t, "hmm", events[0].Reasoning)
	assert.Empty(t, events[0].Content)
}

func TestAnthropicStream_ToolUse(t *testing.T) {
	state := protocol.NewParseState()
	transcript := "data: {\"type\":\"content_block_start\",\"index\":1,\"content_block\":{\"type\":\"tool_use\",\"id\":\"toolu_1\",\"name\":\"lookup\"}}\n\n" +
		"data: {\"type\":\"content_block_delta\",\"index\":1,\"delta\":{\"type\":\"input_json_delta\",\"partial_json\":\"{\\\"q\\\":1}\"}}\n\n"

	events := drain(t, protocol.Anthropic{}, state, []byte(transcript))
	require.Len(t, events, 2)

	assert.Equal(t, "toolu_1", events[0].ToolCall.ID)
	assert.Equal(t, "lookup", events[0].ToolCall.Name)

	// Argument fragments inherit the id and name captured at block start.
	assert.Equal(t, "toolu_1", events[1].ToolCall.ID)
	assert.Equal(t, "lookup", events[1].ToolCall.Name)
	assert.Equal(t, `{"q":1}`, events[1].ToolCall.Arguments)
}

func TestAnthropicStream_InBandError(t *testing.T) {
	state := protocol.NewParseState()
	ev, err := protocol.Anthropic{}.ParseStreamEvent(
		[]byte("data: {\"type\":\"error\",\"error\":{\"type\":\"overloaded_error\",\"message\":\"Overloaded\"}}\n\n"), state)

	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, api.EventError, ev.Type)
	assert.Equal(t, "Overloaded", ev.Err.Message)
	assert.Equal(t, "overloaded_error", ev.Err.Code)
}

func TestAnthropicBuildRequest(t *testing.T) {
	body, err := protocol.Anthropic{}.BuildRequest(protocol.RequestContext{
		Model: "claude-test",
		Request: &api.ChatRequest{
			MaxTokens: 100,
			Messages: []api.ChatMessage{
				{Role: "system", Content: api.Content{Text: "Be brief."}},
				{Role: "user", Content: api.Content{Text: "Hi"}},
				{Role: "tool", ToolCallID: "toolu_1", Content: api.Content{Text: "42"}},
			},
		},
	})
	require.NoError(t, err)

	var decoded struct {
		Model     string `json:"model"`
		System    string `json:"system"`
		MaxTokens int    `json:"max_tokens"`
		Messages  []struct {
			Role    string            `json:"role"`
			Content []json.RawMessage `json:"content"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(body, &decoded))

	assert.Equal(t, "claude-test", decoded.Model)
	assert.Equal(t, "Be brief.", decoded.System, "system messages lift into the system field")
	assert.Equal(t, 100, decoded.MaxTokens)
	require.Len(t, decoded.Messages, 2)
	assert.Equal(t, "user", decoded.Messages[0].Role)
	assert.Equal(t, "user", decoded.Messages[1].Role, "tool results come back as user turns")
}

func TestAnthropicBuildRequest_DefaultMaxTokens(t *testing.T) {
	body, err := protocol.Anthropic{}.BuildRequest(protocol.RequestContext{
		Model: "claude-test",
		Request: &api.ChatRequest{
			Messages: []api.ChatMessage{{Role: "user", Content: api.Content{Text: "Hi"}}},
		},
	})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, float64(4096), decoded["max_tokens"])
}

func TestAnthropicParseResponse(t *testing.T) {
	body := `{
		"id": "msg_1",
		"model": "claude-test",
		"stop_reason": "tool_use",
		"content": [
			{"type": "text", "text": "Using a tool."},
			{"type": "tool_use", "id": "toolu_1", "name": "lookup", "input": {"q": 1}}
		],
		"usage": {"input_tokens": 7, "output_tokens": 3}
	}`

	resp, err := protocol.Anthropic{}.ParseResponse([]byte(body))
	require.NoError(t, err)

	require.Len(t, resp.Choices, 1)
	choice := resp.Choices[0]
	assert.Equal(t, "tool_calls", choice.FinishReason)
	assert.Equal(t, "tool_use", choice.NativeFinishReason)
	assert.Equal(t, "Using a tool.", choice.Message.Content.Text)
	require.Len(t, choice.Message.ToolCalls, 1)
	assert.Equal(t, "lookup", choice.Message.ToolCalls[0].Function.Name)
	assert.Equal(t, 10, resp.Usage.TotalTokens)
}

func TestAnthropicHeaders(t *testing.T) {
	headers := protocol.Anthropic{}.BuildHeaders(protocol.HeaderContext{
		ExtraHeaders: map[string]string{"anthropic-beta": "output-128k"},
	})
	assert.Equal(t, "2023-06-01", headers["anthropic-version"])
	assert.Equal(t, "application/json", headers["Content-Type"])
	assert.Equal(t, "output-128k", headers["anthropic-beta"])
}
