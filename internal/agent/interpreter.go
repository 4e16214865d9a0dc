package agent

import (
	"sort"
	"strings"

	"github.com/chris/tablemate/internal/llm"
)

// turn is the interpreted outcome of one response cycle: either final text,
// or an assistant message whose tool calls must be executed.
type turn struct {
	text     string
	call     *llm.Message
	fallback bool
}

// interpret classifies resp. Streams are drained completely and closed;
// onText sees each text fragment in arrival order.
func interpret(resp Response, onText func(string)) turn {
	if resp.Fallback {
		return turn{text: resp.Message.Content, fallback: true}
	}
	if resp.Stream == nil {
		msg := resp.Message
		if len(msg.ToolCalls) > 0 {
			call := *msg
			call.Role = llm.RoleAssistant
			return turn{call: &call}
		}
		return turn{text: msg.Content}
	}

	defer resp.Stream.Close()
	acc := newStreamAccumulator()
	for resp.Stream.Next() {
		acc.add(resp.Stream.Current(), onText)
	}
	if resp.Stream.Err() != nil {
		return interpret(fallbackResponse(), nil)
	}

	msg := acc.build()
	if len(msg.ToolCalls) > 0 {
		return turn{call: &msg}
	}
	return turn{text: msg.Content}
}

// streamAccumulator collects fragments into a complete assistant message.
// Tool calls are keyed by fragment index: the first fragment for an index
// carries the ID and name, later ones append argument text.
type streamAccumulator struct {
	content strings.Builder
	calls   map[int]*llm.ToolCall
}

func newStreamAccumulator() *streamAccumulator {
	return &streamAccumulator{calls: map[int]*llm.ToolCall{}}
}

func (a *streamAccumulator) add(f llm.Fragment, onText func(string)) {
	if f.Empty() {
		return
	}
	if f.Content != "" {
		a.content.WriteString(f.Content)
		if onText != nil {
			onText(f.Content)
		}
	}
	if tc := f.ToolCall; tc != nil {
		existing, ok := a.calls[tc.Index]
		if !ok {
			existing = &llm.ToolCall{}
			a.calls[tc.Index] = existing
		}
		if tc.ID != "" {
			existing.ID = tc.ID
		}
		if tc.Name != "" {
			existing.Name = tc.Name
		}
		existing.Arguments += tc.Arguments
	}
}

func (a *streamAccumulator) build() llm.Message {
	msg := llm.Message{Role: llm.RoleAssistant, Content: a.content.String()}
	if len(a.calls) == 0 {
		return msg
	}
	indexes := make([]int, 0, len(a.calls))
	for i := range a.calls {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)
	for _, i := range indexes {
		msg.ToolCalls = append(msg.ToolCalls, *a.calls[i])
	}
	return msg
}
