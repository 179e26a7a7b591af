package protocol

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThinkFilter_TagBrokenAcrossDeltas(t *testing.T) {
	var f thinkFilter

	deltas := []string{"<th", "ink>rea", "soning</th", "ink>ans", "wer"}
	var content, reasoning strings.Builder
	for _, d := range deltas {
		c, r := f.Split(d)
		content.WriteString(c)
		reasoning.WriteString(r)
	}

	assert.Equal(t, "answer", content.String())
	assert.Equal(t, "reasoning", reasoning.String())
}

func TestThinkFilter_NoTags(t *testing.T) {
	var f thinkFilter
	c, r := f.Split("plain text")
	assert.Equal(t, "plain text", c)
	assert.Empty(t, r)
}

func TestThinkFilter_AngleBracketNotATag(t *testing.T) {
	var f thinkFilter

	// A trailing "<th" could start a tag so it is held, then released once
	// the next delta rules a tag out.
	c1, _ := f.Split("a <th")
	assert.Equal(t, "a ", c1)
	c2, _ := f.Split("at")
	assert.Equal(t, "<that", c2)
}

func TestSplitThinking_UnterminatedBlock(t *testing.T) {
	content, reasoning := splitThinking("<think>cut off mid-thought")
	assert.Empty(t, content)
	assert.Equal(t, "cut off mid-thought", reasoning)
}

func TestSplitThinking_Complete(t *testing.T) {
	content, reasoning := splitThinking("<think>plan</think>result")
	assert.Equal(t, "result", content)
	assert.Equal(t, "plan", reasoning)
}
