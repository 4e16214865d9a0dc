package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/chris/tablemate/internal/llm"
)

// resultKey is the single key under which tool results are shown to the model.
const resultKey = "result"

// executeToolCalls runs every tool call of assistant, in order, and returns
// the messages to append: assistant followed by one tool message per call.
// Nothing is returned unless all calls succeed, so a failure leaves the
// conversation as it was.
func (a *Agent) executeToolCalls(ctx context.Context, assistant llm.Message) ([]llm.Message, error) {
	out := make([]llm.Message, 0, len(assistant.ToolCalls)+1)
	out = append(out, assistant)
	for _, tc := range assistant.ToolCalls {
		args, err := llm.ParseArguments(tc.Arguments)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedToolArguments, tc.Name, err)
		}
		result, err := a.registry.Call(ctx, tc.Name, args)
		if err != nil {
			return nil, fmt.Errorf("calling %s: %w", tc.Name, err)
		}
		content := encodeResult(result)
		a.logger.Debug("tool result", "tool", tc.Name, "id", tc.ID, "result", truncate(content, 200))
		out = append(out, llm.Message{
			Role:       llm.RoleTool,
			Content:    content,
			ToolCallID: tc.ID,
		})
	}
	return out, nil
}

func encodeResult(v any) string {
	b, err := json.Marshal(map[string]any{resultKey: v})
	if err != nil {
		b, _ = json.Marshal(map[string]string{resultKey: fmt.Sprint(v)}) // a map of strings always marshals
	}
	return string(b)
}

// truncate shortens s to at most n bytes, cutting on a rune boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
