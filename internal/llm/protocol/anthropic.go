package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/arclight-ai/arclight/pkg/api"
)

// Anthropic is the messages SSE event dialect.
type Anthropic struct{}

const anthropicVersion = "2023-06-01"

func (Anthropic) Name() string { return "anthropic" }

func (Anthropic) ChatPath() string { return "/messages" }

func (Anthropic) BuildHeaders(ctx HeaderContext) map[string]string {
	return mergeHeaders(map[string]string{
		"Content-Type":      "application/json",
		"anthropic-version": anthropicVersion,
	}, ctx.ExtraHeaders)
}

type anthropicMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"` // string or []anthropicContent
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`

	Source *anthropicImageSource `json:"source,omitempty"`

	// tool_use blocks
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`

	// tool_result blocks
	ToolUseID string `json:"tool_use_id,omitempty"`
	Content   string `json:"content,omitempty"`
}

type anthropicImageSource struct {
	Type      string `json:"type"`                 // "base64" or "url"
	MediaType string `json:"media_type,omitempty"` // "image/jpeg"
	Data      string `json:"data,omitempty"`
	URL       string `json:"url,omitempty"`
}

type anthropicTool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	InputSchema map[string]interface{} `json:"input_schema"`
}

type anthropicRequest struct {
	Model         string             `json:"model"`
	Messages      []anthropicMessage `json:"messages"`
	System        string             `json:"system,omitempty"`
	MaxTokens     int                `json:"max_tokens"`
	Stream        bool               `json:"stream,omitempty"`
	Temperature   float64            `json:"temperature,omitempty"`
	TopP          float64            `json:"top_p,omitempty"`
	TopK          int                `json:"top_k,omitempty"`
	StopSequences []string           `json:"stop_sequences,omitempty"`
	Tools         []anthropicTool    `json:"tools,omitempty"`
}

func (Anthropic) BuildRequest(ctx RequestContext) ([]byte, error) {
	if ctx.Request == nil || ctx.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if len(ctx.Request.Messages) == 0 {
		return nil, fmt.Errorf("messages are required")
	}
	req := ctx.Request

	ar := anthropicRequest{
		Model:       ctx.Model,
		MaxTokens:   req.MaxTokens,
		Stream:      ctx.Stream,
		Temperature: req.Temperature,
		TopP:        req.TopP,
		TopK:        req.TopK,
	}
	if ar.MaxTokens == 0 {
		ar.MaxTokens = 4096
	}
	if req.Stop != nil {
		ar.StopSequences = req.Stop.Val
	}
	for _, t := range req.Tools {
		ar.Tools = append(ar.Tools, anthropicTool{
			Name:        t.Function.Name,
			Description: t.Function.Description,
			InputSchema: t.Function.Parameters,
		})
	}

	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			ar.System += m.Content.Text + "\n"
		case "tool":
			ar.Messages = append(ar.Messages, anthropicMessage{
				Role: "user",
				Content: []anthropicContent{{
					Type:      "tool_result",
					ToolUseID: m.ToolCallID,
					Content:   m.Content.Text,
				}},
			})
		default:
			parts, err := anthropicParts(m)
			if err != nil {
				return nil, err
			}
			if len(parts) > 0 {
				ar.Messages = append(ar.Messages, anthropicMessage{Role: m.Role, Content: parts})
			}
		}
	}
	ar.System = strings.TrimSpace(ar.System)

	if len(ctx.ExtraBody) == 0 {
		return json.Marshal(ar)
	}

	raw, err := json.Marshal(ar)
	if err != nil {
		return nil, err
	}
	body := make(map[string]interface{})
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, err
	}
	for k, v := range ctx.ExtraBody {
		body[k] = v
	}
	return json.Marshal(body)
}

func anthropicParts(m api.ChatMessage) ([]anthropicContent, error) {
	var parts []anthropicContent

	if m.Content.Text != "" && len(m.Content.Parts) == 0 {
		parts = append(parts, anthropicContent{Type: "text", Text: m.Content.Text})
	}

	for _, part := range m.Content.Parts {
		switch {
		case part.Type == "text":
			parts = append(parts, anthropicContent{Type: "text", Text: part.Text})
		case part.Type == "image_url" && part.ImageURL != nil:
			if strings.HasPrefix(part.ImageURL.URL, "data:") {
				img, err := parseDataURI(part.ImageURL.URL)
				if err != nil {
					return nil, fmt.Errorf("image part: %w", err)
				}
				parts = append(parts, anthropicContent{
					Type: "image",
					Source: &anthropicImageSource{
						Type:      "base64",
						MediaType: img.MediaType,
						Data:      img.Data,
					},
				})
			} else {
				parts = append(parts, anthropicContent{
					Type:   "image",
					Source: &anthropicImageSource{Type: "url", URL: part.ImageURL.URL},
				})
			}
		}
	}

	// Assistant turns that called tools replay as tool_use blocks.
	for _, tc := range m.ToolCalls {
		args := tc.Function.Arguments
		if args == "" {
			args = "{}"
		}
		parts = append(parts, anthropicContent{
			Type:  "tool_use",
			ID:    tc.ID,
			Name:  tc.Function.Name,
			Input: json.RawMessage(args),
		})
	}

	return parts, nil
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type anthropicResponse struct {
	ID         string             `json:"id"`
	Model      string             `json:"model"`
	StopReason string             `json:"stop_reason"`
	Content    []anthropicContent `json:"content"`
	Usage      anthropicUsage     `json:"usage"`
}

func (Anthropic) ParseResponse(body []byte) (*api.ChatResponse, error) {
	var resp anthropicResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	if resp.ID == "" && len(resp.Content) == 0 {
		return nil, fmt.Errorf("response has no content")
	}

	msg := &api.ChatMessage{Role: "assistant"}
	fullText := ""
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			fullText += block.Text
		case "thinking":
			msg.Reasoning += block.Text
		case "tool_use":
			msg.ToolCalls = append(msg.ToolCalls, api.ToolCall{
				ID:   block.ID,
				Type: "function",
				Function: api.FunctionCall{
					Name:      block.Name,
					Arguments: string(block.Input),
				},
			})
		}
	}
	content, reasoning := splitThinking(fullText)
	msg.Content = api.Content{Text: content}
	msg.Reasoning += reasoning

	return &api.ChatResponse{
		ID:      resp.ID,
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   resp.Model,
		Choices: []api.Choice{{
			Index:              0,
			Message:            msg,
			FinishReason:       mapAnthropicStopReason(resp.StopReason),
			NativeFinishReason: resp.StopReason,
		}},
		Usage: &api.ResponseUsage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		},
	}, nil
}

func mapAnthropicStopReason(reason string) string {
	switch reason {
	case "end_turn", "stop_sequence":
		return "stop"
	case "max_tokens":
		return "length"
	case "tool_use":
		return "tool_calls"
	default:
		return reason
	}
}

// anthropicStreamEvent covers every event type the messages stream emits.
// The event-name line is redundant with the payload's type field, so only
// data lines are decoded.
type anthropicStreamEvent struct {
	Type  string `json:"type"`
	Index int    `json:"index"`

	Message *struct {
		Usage anthropicUsage `json:"usage"`
	} `json:"message"` // message_start

	ContentBlock *struct {
		Type string `json:"type"`
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"content_block"` // content_block_start

	Delta *struct {
		Type        string `json:"type"`
		Text        string `json:"text"`
		Thinking    string `json:"thinking"`
		PartialJSON string `json:"partial_json"`
		StopReason  string `json:"stop_reason"`
	} `json:"delta"` // content_block_delta, message_delta

	Usage *anthropicUsage `json:"usage"` // message_delta

	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (p Anthropic) ParseStreamEvent(chunk []byte, state *ParseState) (*api.StreamEvent, error) {
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
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(text, "data:"))

		var payload anthropicStreamEvent
		if err := json.Unmarshal([]byte(data), &payload); err != nil {
			continue
		}

		if payload.Type == "message_stop" {
			return state.terminalEvent("stop"), nil
		}

		state.push(p.streamEvents(&payload, state)...)
		if ev := state.pop(); ev != nil {
			return ev, nil
		}
	}
}

func (Anthropic) streamEvents(payload *anthropicStreamEvent, state *ParseState) []*api.StreamEvent {
	switch payload.Type {
	case "error":
		msg := "unknown stream error"
		if payload.Error != nil {
			msg = payload.Error.Message
		}
		var code interface{}
		if payload.Error != nil {
			code = payload.Error.Type
		}
		return []*api.StreamEvent{{
			Type: api.EventError,
			Err:  &api.ErrorResponse{Code: code, Message: msg},
		}}

	case "message_start":
		if payload.Message != nil {
			state.addUsage(payload.Message.Usage.InputTokens, payload.Message.Usage.OutputTokens)
		}
		return nil

	case "content_block_start":
		if payload.ContentBlock == nil || payload.ContentBlock.Type != "tool_use" {
			return nil
		}
		draft := state.draft(payload.Index)
		draft.ID = payload.ContentBlock.ID
		draft.Name = payload.ContentBlock.Name
		return []*api.StreamEvent{{
			Type: api.EventToolCallDelta,
			ToolCall: &api.ToolCallDelta{
				Index: payload.Index,
				ID:    draft.ID,
				Name:  draft.Name,
			},
		}}

	case "content_block_delta":
		if payload.Delta == nil {
			return nil
		}
		switch payload.Delta.Type {
		case "text_delta":
			content, reasoning := state.thinking.Split(payload.Delta.Text)
			if content == "" && reasoning == "" {
				return nil
			}
			return []*api.StreamEvent{{
				Type:      api.EventContentDelta,
				Content:   content,
				Reasoning: reasoning,
			}}
		case "thinking_delta":
			if payload.Delta.Thinking == "" {
				return nil
			}
			return []*api.StreamEvent{{
				Type:      api.EventContentDelta,
				Reasoning: payload.Delta.Thinking,
			}}
		case "input_json_delta":
			draft := state.draft(payload.Index)
			return []*api.StreamEvent{{
				Type: api.EventToolCallDelta,
				ToolCall: &api.ToolCallDelta{
					Index:     payload.Index,
					ID:        draft.ID,
					Name:      draft.Name,
					Arguments: payload.Delta.PartialJSON,
				},
			}}
		}
		return nil

	case "message_delta":
		if payload.Delta != nil && payload.Delta.StopReason != "" {
			state.finishReason = mapAnthropicStopReason(payload.Delta.StopReason)
		}
		if payload.Usage != nil {
			state.addUsage(payload.Usage.InputTokens, payload.Usage.OutputTokens)
		}
		return nil
	}

	// ping and unknown event types carry nothing.
	return nil
}
