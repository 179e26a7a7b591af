package protocol

import (
	"bytes"

	"github.com/arclight-ai/arclight/pkg/api"
)

// ParseState is the mutable accumulator for one in-flight stream. It is owned
// exclusively by the caller driving that stream and must never be shared
// across concurrent streams. Dropping it mid-stream is always safe; nothing
// here spawns background work.
type ParseState struct {
	// buf holds raw bytes that do not yet form a complete frame. Network
	// chunk boundaries fall anywhere, including inside a JSON payload.
	buf []byte

	// pending holds events already decoded from a frame that produced more
	// than one. ParseStreamEvent hands them out one per call.
	pending []*api.StreamEvent

	// toolCalls tracks partially-assembled tool calls by index: the id and
	// name arrive once, argument fragments accumulate over many frames.
	toolCalls map[int]*toolCallDraft

	// thinking splits <think> blocks out of content deltas, tolerating tags
	// broken across frames.
	thinking thinkFilter

	// usage and finishReason accumulate across frames; vendors scatter them
	// over several events before the terminal frame.
	usage        *api.ResponseUsage
	finishReason string

	done bool
}

type toolCallDraft struct {
	ID   string
	Name string
}

func NewParseState() *ParseState {
	return &ParseState{toolCalls: make(map[int]*toolCallDraft)}
}

// Done reports whether the vendor's end-of-stream sentinel has been seen.
// Once set, further input yields no events.
func (s *ParseState) Done() bool {
	return s.done
}

func (s *ParseState) feed(chunk []byte) {
	if len(chunk) > 0 {
		s.buf = append(s.buf, chunk...)
	}
}

// nextLine pops one complete line from the buffer, stripping the trailing
// newline and any carriage return. Partial lines stay buffered until more
// input arrives.
func (s *ParseState) nextLine() ([]byte, bool) {
	i := bytes.IndexByte(s.buf, '\n')
	if i < 0 {
		return nil, false
	}
	line := s.buf[:i]
	s.buf = s.buf[i+1:]
	return bytes.TrimSuffix(line, []byte("\r")), true
}

func (s *ParseState) push(events ...*api.StreamEvent) {
	s.pending = append(s.pending, events...)
}

func (s *ParseState) pop() *api.StreamEvent {
	if len(s.pending) == 0 {
		return nil
	}
	ev := s.pending[0]
	s.pending = s.pending[1:]
	return ev
}

func (s *ParseState) draft(index int) *toolCallDraft {
	d, ok := s.toolCalls[index]
	if !ok {
		d = &toolCallDraft{}
		s.toolCalls[index] = d
	}
	return d
}

// terminalEvent marks the state done and builds the single done event from
// the accumulated finish reason and usage.
func (s *ParseState) terminalEvent(fallbackReason string) *api.StreamEvent {
	s.done = true
	reason := s.finishReason
	if reason == "" {
		reason = fallbackReason
	}
	return &api.StreamEvent{
		Type:         api.EventDone,
		FinishReason: reason,
		Usage:        s.usage,
	}
}

func (s *ParseState) addUsage(prompt, completion int) {
	if s.usage == nil {
		s.usage = &api.ResponseUsage{}
	}
	if prompt > 0 {
		s.usage.PromptTokens = prompt
	}
	if completion > 0 {
		s.usage.CompletionTokens = completion
	}
	s.usage.TotalTokens = s.usage.PromptTokens + s.usage.CompletionTokens
}
