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

// drain feeds chunks to the parser and collects every event, calling back
// with empty input until the parser has nothing buffered.
func drain(t *testing.T, p protocol.Strategy, state *protocol.ParseState, chunks ...[]byte) []*api.StreamEvent {
	t.Helper()
	var events []*api.StreamEvent
	for _, c := range chunks {
		ev, err := p.ParseStreamEvent(c, state)
		require.NoError(t, err)
		for ev != nil {
			events = append(events, ev)
			ev, err = p.ParseStreamEvent(nil, state)
			require.NoError(t, err)
		}
	}
	return events
}

const openAITranscript = "data: {\"choices\":[{\"delta\":{\"content\":\"Hello\"}}]}\n\n" +
	"data: {\"choices\":[{\"delta\":{\"content\":\" world\"}}]}\n\n" +
	"data: {\"choices\":[{\"delta\":{},\"finish_reason\":\"stop\"}],\"usage\":{\"prompt_tokens\":5,\"completion_tokens\":2}}\n\n" +
	"data: [DONE]\n\n"

func TestOpenAIStream_Basic(t *testing.T) {
	state := protocol.NewParseState()
	events := drain(t, protocol.OpenAI{}, state, []byte(openAITranscript))

	require.Len(t, events, 3)
	assert.Equal(t, api.EventContentDelta, events[0].Type)
	assert.Equal(t, "Hello", events[0].Content)
	assert.Equal(t, " world", events[1].Content)

	done := events[2]
	assert.Equal(t, api.EventDone, done.Type)
	assert.Equal(t, "stop", done.FinishReason)
	require.NotNil(t, done.Usage)
	assert.Equal(t, 5, done.Usage.PromptTokens)
	assert.Equal(t, 2, done.Usage.CompletionTokens)
	assert.Equal(t, 7, done.Usage.TotalTokens)
	assert.True(t, state.Done())
}

func TestOpenAIStream_ChunkBoundaryInvariance(t *testing.T) {
	whole := drain(t, protocol.OpenAI{}, protocol.NewParseState(), []byte(openAITranscript))

	// Feed the identical transcript one byte at a time; the event sequence
	// must not change.
	state := protocol.NewParseState()
	var bytewise []*api.StreamEvent
	for i := 0; i < len(openAITranscript); i++ {
		bytewise = append(bytewise, drain(t, protocol.OpenAI{}, state, []byte{openAITranscript[i]})...)
	}

	concat := func(events []*api.StreamEvent) (string, string) {
		var content strings.Builder
		finish := ""
		for _, ev := range events {
			content.WriteString(ev.Content)
			if ev.Type == api.EventDone {
				finish = ev.FinishReason
			}
		}
		return content.String(), finish
	}

	wholeContent, wholeFinish := concat(whole)
	bytewiseContent, bytewiseFinish := concat(bytewise)
	assert.Equal(t, wholeContent, bytewiseContent)
	assert.Equal(t, wholeFinish, bytewiseFinish)
	assert.True(t, state.Done())
}

func TestOpenAIStream_DoneSentinelThenSilence(t *testing.T) {
	state := protocol.NewParseState()
	events := drain(t, protocol.OpenAI{}, state, []byte("data: [DONE]\n\n"))

	require.Len(t, events, 1)
	assert.Equal(t, api.EventDone, events[0].Type)
	assert.True(t, state.Done())

	// Input after the sentinel yields nothing, ever.
	after := drain(t, protocol.OpenAI{}, state, []byte("data: {\"choices\":[{\"delta\":{\"content\":\"late\"}}]}\n\n"))
	assert.Empty(t, after)
}

func TestOpenAIStream_InBandError(t *testing.T) {
	state := protocol.NewParseState()
	transcript := "data: {\"error\":{\"message\":\"rate limited\",\"code\":429}}\n\n"

	ev, err := protocol.OpenAI{}.ParseStreamEvent([]byte(transcript), state)
	require.NoError(t, err, "in-band vendor errors are events, not Go errors")
	require.NotNil(t, ev)
	assert.Equal(t, api.EventError, ev.Type)
	require.NotNil(t, ev.Err)
	assert.Equal(t, "rate limited", ev.Err.Message)
}

func TestOpenAIStream_ToolCallDeltas(t *testing.T) {
	state := protocol.NewParseState()
	transcript := "data: {\"choices\":[{\"delta\":{\"tool_calls\":[{\"index\":0,\"id\":\"call_1\",\"function\":{\"name\":\"get_weather\",\"arguments\":\"\"}}]}}]}\n\n" +
		"data: {\"choices\":[{\"delta\":{\"tool_calls\":[{\"index\":0,\"function\":{\"arguments\":\"{\\\"city\\\":\"}}]}}]}\n\n" +
		"data: {\"choices\":[{\"delta\":{\"tool_calls\":[{\"index\":0,\"function\":{\"arguments\":\"\\\"Oslo\\\"}\"}}]}}]}\n\n"

	events := drain(t, protocol.OpenAI{}, state, []byte(transcript))
	require.Len(t, events, 3)

	first := events[0]
	assert.Equal(t, api.EventToolCallDelta, first.Type)
	assert.Equal(t, "call_1", first.ToolCall.ID)
	assert.Equal(t, "get_weather", first.ToolCall.Name)

	// Later fragments only carry argument bytes on the wire; the parser
	// re-attaches the id and name from its per-index draft.
	var args strings.Builder
	for _, ev := range events {
		assert.Equal(t, "call_1", ev.ToolCall.ID)
		assert.Equal(t, "get_weather", ev.ToolCall.Name)
		args.WriteString(ev.ToolCall.Arguments)
	}
	assert.Equal(t, `{"city":"Oslo"}`, args.String())
}

func TestOpenAIStream_ThinkTagsSplitAcrossChunks(t *testing.T) {
	state := protocol.NewParseState()
	chunks := [][]byte{
		[]byte("data: {\"choices\":[{\"delta\":{\"content\":\"<thi\"}}]}\n\n"),
		[]byte("data: {\"choices\":[{\"delta\":{\"content\":\"nk>plan</think>answer\"}}]}\n\n"),
	}

	events := drain(t, protocol.OpenAI{}, state, chunks...)

	var content, reasoning strings.Builder
	for _, ev := range events {
		content.WriteString(ev.Content)
		reasoning.WriteString(ev.Reasoning)
	}
	assert.Equal(t, "answer", content.String())
	assert.Equal(t, "plan", reasoning.String())
}

func TestOpenAIStream_SkipsCommentsAndGarbage(t *testing.T) {
	state := protocol.NewParseState()
	transcript := ": heartbeat\n\n" +
		"event: message\n" +
		"data: not-json\n\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"ok\"}}]}\n\n"

	events := drain(t, protocol.OpenAI{}, state, []byte(transcript))
	require.Len(t, events, 1)
	assert.Equal(t, "ok", events[0].Content)
}

func TestOpenAIBuildRequest(t *testing.T) {
	body, err := protocol.OpenAI{}.BuildRequest(protocol.RequestContext{
		Model: "gpt-test",
		Request: &api.ChatRequest{
			Model:    "public-name",
			Messages: []api.ChatMessage{{Role: "user", Content: api.Content{Text: "Hi"}}},
		},
		Stream:    true,
		ExtraBody: map[string]interface{}{"thinking": true},
	})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "gpt-test", decoded["model"], "vendor model id replaces the public one")
	assert.Equal(t, true, decoded["stream"])
	assert.Contains(t, decoded, "stream_options")
	assert.Equal(t, true, decoded["thinking"], "extra_body merges into the request")
}

func TestOpenAIBuildRequest_RequiresMessages(t *testing.T) {
	_, err := protocol.OpenAI{}.BuildRequest(protocol.RequestContext{
		Model:   "gpt-test",
		Request: &api.ChatRequest{},
	})
	assert.Error(t, err)
}

func TestOpenAIParseResponse_NoChoices(t *testing.T) {
	_, err := protocol.OpenAI{}.ParseResponse([]byte(`{"id":"x"}`))
	assert.Error(t, err)
}
