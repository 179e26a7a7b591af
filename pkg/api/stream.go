package api

import "time"

// StreamEventType enumerates the normalized streaming outcomes. The set is
// closed: a parser yields deltas while the vendor is talking, exactly one
// done event when it stops, or an error event when the vendor reports a
// failure in-band.
type StreamEventType string

const (
	EventContentDelta  StreamEventType = "content_delta"
	EventToolCallDelta StreamEventType = "tool_call_delta"
	EventDone          StreamEventType = "done"
	EventError         StreamEventType = "error"
)

// StreamEvent is one normalized unit of streamed output, independent of the
// vendor wire dialect that produced it.
type StreamEvent struct {
	Type StreamEventType

	// Set for content_delta events.
	Content   string
	Reasoning string

	// Set for tool_call_delta events.
	ToolCall *ToolCallDelta

	// Set for the done event.
	FinishReason string
	Usage        *ResponseUsage

	// Set for error events (in-band vendor errors).
	Err *ErrorResponse
}

// ToolCallDelta carries one incremental fragment of a tool call. The id and
// name arrive on the first fragment for an index; later fragments for the
// same index carry only argument bytes.
type ToolCallDelta struct {
	Index     int
	ID        string
	Name      string
	Arguments string
}

// StreamResult pairs an event with a transport-level error. Exactly one of
// the two fields is set.
type StreamResult struct {
	Event *StreamEvent
	Err   error
}

// Chunk renders the event as an OpenAI-style completion chunk for the
// outward-facing SSE surface.
func (e *StreamEvent) Chunk(id, model string) *ChatResponse {
	resp := &ChatResponse{
		ID:      id,
		Object:  "chat.completion.chunk",
		Created: time.Now().Unix(),
		Model:   model,
	}

	switch e.Type {
	case EventContentDelta:
		resp.Choices = []Choice{{
			Delta: &ChatMessage{
				Role:      "assistant",
				Content:   Content{Text: e.Content},
				Reasoning: e.Reasoning,
			},
		}}
	case EventToolCallDelta:
		resp.Choices = []Choice{{
			Delta: &ChatMessage{
				Role: "assistant",
				ToolCalls: []ToolCall{{
					Index: e.ToolCall.Index,
					ID:    e.ToolCall.ID,
					Type:  "function",
					Function: FunctionCall{
						Name:      e.ToolCall.Name,
						Arguments: e.ToolCall.Arguments,
					},
				}},
			},
		}}
	case EventDone:
		resp.Choices = []Choice{{
			Delta:        &ChatMessage{},
			FinishReason: e.FinishReason,
		}}
		resp.Usage = e.Usage
	case EventError:
		resp.Choices = []Choice{{
			FinishReason: "error",
			Error:        e.Err,
		}}
	}

	return resp
}
