package llm

import (
	"context"
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"
)

const anthropicMaxTokens = 4096

type AnthropicClient struct {
	client anthropic.Client
	model  string
}

func NewAnthropicClient(apiKey, authToken, model string) *AnthropicClient {
	var opts []option.RequestOption
	if authToken != "" {
		opts = append(opts,
			option.WithAuthToken(authToken),
			option.WithHeader("anthropic-beta", "oauth-2025-04-20"),
		)
	} else if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	return &AnthropicClient{client: anthropic.NewClient(opts...), model: model}
}

func (c *AnthropicClient) Name() string { return "anthropic" }

func (c *AnthropicClient) Complete(ctx context.Context, req Request) (*Message, error) {
	resp, err := c.client.Messages.New(ctx, c.params(req))
	if err != nil {
		return nil, &TransportError{Provider: c.Name(), Err: err}
	}

	result := &Message{Role: RoleAssistant}
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			result.Content += block.AsText().Text
		case "tool_use":
			tu := block.AsToolUse()
			result.ToolCalls = append(result.ToolCalls, ToolCall{
				ID:        tu.ID,
				Name:      tu.Name,
				Arguments: string(tu.Input),
			})
		}
	}
	return result, nil
}

func (c *AnthropicClient) Stream(ctx context.Context, req Request) (Stream, error) {
	s := c.client.Messages.NewStreaming(ctx, c.params(req))
	if err := s.Err(); err != nil {
		s.Close()
		return nil, &TransportError{Provider: c.Name(), Err: err}
	}
	return &anthropicStream{stream: s}, nil
}

func (c *AnthropicClient) params(req Request) anthropic.MessageNewParams {
	model := req.Model
	if model == "" {
		model = c.model
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: anthropicMaxTokens,
		Messages:  toAnthropicMessages(req.Messages),
	}
	system := req.System
	for _, m := range req.Messages {
		if m.Role == RoleSystem {
			system = joinNonEmpty(system, m.Content)
		}
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if len(req.Tools) > 0 {
		params.Tools = toAnthropicTools(req.Tools)
	}
	return params
}

func toAnthropicTools(tools []Tool) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, len(tools))
	for i, t := range tools {
		props, _ := t.Parameters["properties"].(map[string]any)
		if props == nil {
			props = map[string]any{}
		}
		var required []string
		switch req := t.Parameters["required"].(type) {
		case []string:
			required = req
		case []any:
			for _, r := range req {
				if s, ok := r.(string); ok {
					required = append(required, s)
				}
			}
		}
		out[i] = anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        t.Name,
				Description: anthropic.String(t.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: props,
					Required:   required,
				},
			},
		}
	}
	return out
}

// toAnthropicMessages maps the conversation onto Anthropic's two-role model.
// System messages move to the request's system field, and consecutive tool
// results are merged into a single user turn.
func toAnthropicMessages(messages []Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))
	var results []anthropic.ContentBlockParamUnion
	flush := func() {
		if len(results) > 0 {
			out = append(out, anthropic.NewUserMessage(results...))
			results = nil
		}
	}
	for _, m := range messages {
		if m.Role == RoleTool || (m.Role == RoleUser && m.ToolCallID != "") {
			results = append(results, anthropic.NewToolResultBlock(m.ToolCallID, m.Content, false))
			continue
		}
		flush()
		switch m.Role {
		case RoleUser:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		case RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion
			if m.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(m.Content))
			}
			for _, tc := range m.ToolCalls {
				input := json.RawMessage(tc.Arguments)
				if isBlank(tc.Arguments) {
					input = json.RawMessage("{}")
				}
				blocks = append(blocks, anthropic.ContentBlockParamUnion{
					OfToolUse: &anthropic.ToolUseBlockParam{
						ID:    tc.ID,
						Name:  tc.Name,
						Input: input,
					},
				})
			}
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		}
	}
	flush()
	return out
}

// anthropicStream turns message stream events into fragments. Tool calls are
// keyed by content-block index.
type anthropicStream struct {
	stream  *ssestream.Stream[anthropic.MessageStreamEventUnion]
	current Fragment
	err     error
}

func (s *anthropicStream) Next() bool {
	if !s.stream.Next() {
		if err := s.stream.Err(); err != nil {
			s.err = &TransportError{Provider: "anthropic", Err: err}
		}
		return false
	}
	s.current = Fragment{}
	switch ev := s.stream.Current().AsAny().(type) {
	case anthropic.ContentBlockStartEvent:
		if ev.ContentBlock.Type == "tool_use" {
			s.current.ToolCall = &ToolCallFragment{
				Index: int(ev.Index),
				ID:    ev.ContentBlock.ID,
				Name:  ev.ContentBlock.Name,
			}
		}
	case anthropic.ContentBlockDeltaEvent:
		switch d := ev.Delta.AsAny().(type) {
		case anthropic.TextDelta:
			s.current.Content = d.Text
		case anthropic.InputJSONDelta:
			s.current.ToolCall = &ToolCallFragment{
				Index:     int(ev.Index),
				Arguments: d.PartialJSON,
			}
		}
	}
	return true
}

func (s *anthropicStream) Current() Fragment { return s.current }
func (s *anthropicStream) Err() error        { return s.err }
func (s *anthropicStream) Close() error      { return s.stream.Close() }

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + "\n\n" + b
	}
}
