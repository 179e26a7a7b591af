package protocol

import "strings"

const (
	thinkStart = "<think>"
	thinkEnd   = "</think>"
)

// thinkFilter separates <think>...</think> reasoning blocks from answer text
// in a stream of deltas. Tags can arrive broken across frames, so a suffix
// that could be the start of a tag is held back until the next delta decides.
type thinkFilter struct {
	inBlock bool
	carry   string
}

// Split consumes one text delta and returns the content and reasoning parts.
func (f *thinkFilter) Split(input string) (content string, reasoning string) {
	text := f.carry + input
	f.carry = ""

	var contentB strings.Builder
	var reasoningB strings.Builder

	cursor := 0
	length := len(text)

	for cursor < length {
		tag := thinkStart
		out := &contentB
		if f.inBlock {
			tag = thinkEnd
			out = &reasoningB
		}

		idx := strings.Index(text[cursor:], tag)
		if idx != -1 {
			real := cursor + idx
			out.WriteString(text[cursor:real])
			cursor = real + len(tag)
			f.inBlock = !f.inBlock
			continue
		}

		// No full tag. Hold back a trailing partial tag, if any, and emit
		// the rest.
		held := 0
		maxPartial := len(tag) - 1
		if length-cursor < maxPartial {
			maxPartial = length - cursor
		}
		for i := maxPartial; i > 0; i-- {
			if strings.HasPrefix(tag, text[length-i:]) {
				held = i
				break
			}
		}

		out.WriteString(text[cursor : length-held])
		f.carry = text[length-held:]
		cursor = length
	}

	return contentB.String(), reasoningB.String()
}

// splitThinking separates reasoning from content in one complete string. An
// unterminated block counts as reasoning, matching what vendors emit when a
// model is cut off mid-thought.
func splitThinking(text string) (content string, reasoning string) {
	var f thinkFilter
	content, reasoning = f.Split(text)
	if f.carry != "" {
		if f.inBlock {
			reasoning += f.carry
		} else {
			content += f.carry
		}
	}
	return content, reasoning
}
