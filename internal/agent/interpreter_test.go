package agent

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chris/tablemate/internal/llm"
)

func TestAccumulatorToolCall(t *testing.T) {
	acc := newStreamAccumulator()
	for _, f := range []llm.Fragment{
		toolFrag(0, "1", "get_weather", ""),
		toolFrag(0, "", "", `{"location"`),
		toolFrag(0, "", "", `:"SF"}`),
	} {
		acc.add(f, nil)
	}
	msg := acc.build()
	require.Len(t, msg.ToolCalls, 1)
	assert.Equal(t, llm.ToolCall{ID: "1", Name: "get_weather", Arguments: `{"location":"SF"}`}, msg.ToolCalls[0])

	args, err := llm.ParseArguments(msg.ToolCalls[0].Arguments)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"location": "SF"}, args)
}

func TestAccumulatorOrdersByIndex(t *testing.T) {
	acc := newStreamAccumulator()
	acc.add(toolFrag(3, "c", "third", ""), nil)
	acc.add(toolFrag(1, "a", "first", ""), nil)
	msg := acc.build()
	require.Len(t, msg.ToolCalls, 2)
	assert.Equal(t, "first", msg.ToolCalls[0].Name)
	assert.Equal(t, "third", msg.ToolCalls[1].Name)
}

func TestInterpretNonStreaming(t *testing.T) {
	tr := interpret(Response{Message: &llm.Message{Role: llm.RoleAssistant, Content: "hi"}}, nil)
	assert.Nil(t, tr.call)
	assert.Equal(t, "hi", tr.text)

	tr = interpret(Response{Message: &llm.Message{
		Role:      llm.RoleAssistant,
		Content:   "let me check",
		ToolCalls: []llm.ToolCall{{ID: "1", Name: "get_time"}},
	}}, nil)
	require.NotNil(t, tr.call)
	assert.Equal(t, "let me check", tr.call.Content)
}

func TestInterpretFallback(t *testing.T) {
	tr := interpret(fallbackResponse(), nil)
	assert.True(t, tr.fallback)
	assert.Equal(t, FallbackContent, tr.text)
}

func TestInterpretStreamErrorWithToolCall(t *testing.T) {
	s := &fakeStream{
		frags: []llm.Fragment{toolFrag(0, "1", "get_weather", `{"loc`)},
		err:   errors.New("reset"),
		pos:   -1,
	}
	tr := interpret(Response{Stream: s}, nil)
	assert.True(t, tr.fallback)
	assert.Nil(t, tr.call)
	assert.True(t, s.closed)
}
