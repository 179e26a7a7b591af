package protocol

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/arclight-ai/arclight/pkg/api"
)

// OpenAI is the chat/completions SSE dialect. It is shared by every vendor
// exposing an OpenAI-compatible API: OpenAI itself, DeepSeek, Moonshot,
// Volcengine, Zhipu and others differ only in configuration.
type OpenAI struct{}

func (OpenAI) Name() string { return "openai" }

func (OpenAI) ChatPath() string { return "/chat/completions" }

func (OpenAI) BuildHeaders(ctx HeaderContext) map[string]string {
	return mergeHeaders(map[string]string{
		"Content-Type": "application/json",
	}, ctx.ExtraHeaders)
}

func (OpenAI) BuildRequest(ctx RequestContext) ([]byte, error) {
	if ctx.Request == nil || ctx.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if len(ctx.Request.Messages) == 0 {
		return nil, fmt.Errorf("messages are required")
	}

	// The normalized request already speaks this dialect; round-trip through
	// a map so vendor extra_body fields can be merged on top.
	raw, err := json.Marshal(ctx.Request)
	if err != nil {
		return nil, err
	}
	body := make(map[string]interface{})
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, err
	}

	body["model"] = ctx.Model
	if ctx.Stream {
		body["stream"] = true
		body["stream_options"] = map[string]interface{}{"include_usage": true}
	} else {
		delete(body, "stream")
		delete(body, "stream_options")
	}

	for k, v := range ctx.ExtraBody {
		body[k] = v
	}

	return json.Marshal(body)
}

func (OpenAI) ParseResponse(body []byte) (*api.ChatResponse, error) {
	var resp api.ChatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 && resp.Error == nil {
		return nil, fmt.Errorf("response has no choices")
	}
	return &resp, nil
}

// openAIChunk mirrors one streamed chat.completion.chunk payload. Vendors
// split tool-call arguments over many chunks; only the first fragment for an
// index carries the id and function name.
type openAIChunk struct {
	ID      string `json:"id"`
	Choices []struct {
		Index int `json:"index"`
		Delta struct {
			Content          string `json:"content"`
			ReasoningContent string `json:"reasoning_content"`
			Reasoning        string `json:"reasoning"`
			ToolCalls        []struct {
				Index    int    `json:"index"`
				ID       string `json:"id"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string      `json:"message"`
		Type    string      `json:"type"`
		Code    interface{} `json:"code"`
	} `json:"error"`
}

func (p OpenAI) ParseStreamEvent(chunk []byte, state *ParseState) (*api.StreamEvent, error) {
	state.feed(chunk)

	if state.done {
		return nil, nil
	}
	if ev := state.pop(); ev != nil {
		return ev, nil
	}

	for {
		line, ok := state.nextLine()
		if !ok {
			return nil, nil
		}
		text := strings.TrimSpace(string(line))
		if text == "" || strings.HasPrefix(text, ":") || !strings.HasPrefix(text, "data:") {
			// Heartbeats, comments and event-name lines carry no payload.
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(text, "data:"))

		if data == "[DONE]" {
			return state.terminalEvent("stop"), nil
		}

		var payload openAIChunk
		if err := json.Unmarshal([]byte(data), &payload); err != nil {
			// Tolerate garbage frames the way upstream clients do.
			continue
		}

		state.push(p.chunkEvents(&payload, state)...)
		if ev := state.pop(); ev != nil {
			return ev, nil
		}
	}
}

func (OpenAI) chunkEvents(payload *openAIChunk, state *ParseState) []*api.StreamEvent {
	if payload.Error != nil {
		return []*api.StreamEvent{{
			Type: api.EventError,
			Err: &api.ErrorResponse{
				Code:    payload.Error.Code,
				Message: payload.Error.Message,
			},
		}}
	}

	var events []*api.StreamEvent

	if payload.Usage != nil {
		state.addUsage(payload.Usage.PromptTokens, payload.Usage.CompletionTokens)
	}

	for _, choice := range payload.Choices {
		if choice.FinishReason != nil && *choice.FinishReason != "" {
			state.finishReason = *choice.FinishReason
		}

		reasoning := choice.Delta.ReasoningContent + choice.Delta.Reasoning
		content := ""
		if choice.Delta.Content != "" {
			var split string
			content, split = state.thinking.Split(choice.Delta.Content)
			reasoning += split
		}
		if content != "" || reasoning != "" {
			events = append(events, &api.StreamEvent{
				Type:      api.EventContentDelta,
				Content:   content,
				Reasoning: reasoning,
			})
		}

		for _, tc := range choice.Delta.ToolCalls {
			draft := state.draft(tc.Index)
			if tc.ID != "" {
				draft.ID = tc.ID
			}
			if tc.Function.Name != "" {
				draft.Name = tc.Function.Name
			}
			events = append(events, &api.StreamEvent{
				Type: api.EventToolCallDelta,
				ToolCall: &api.ToolCallDelta{
					Index:     tc.Index,
					ID:        draft.ID,
					Name:      draft.Name,
					Arguments: tc.Function.Arguments,
				},
			})
		}
	}

	return events
}
