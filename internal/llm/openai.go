package llm

import (
	"context"

	"github.com/google/uuid"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/ssestream"
)

// OpenAIClient talks to any OpenAI-compatible chat-completions endpoint.
// DeepSeek, Kimi and Ollama are reached through the same client with a
// different base URL.
type OpenAIClient struct {
	name   string
	client openai.Client
	model  string
}

// NewOpenAIClient builds a client for the provider called name. Only the
// openai provider may fall back to OPENAI_API_KEY and OPENAI_BASE_URL from
// the environment; every other provider sends exactly apiKey, even when it
// is empty, so an OpenAI key never reaches a third-party endpoint.
func NewOpenAIClient(name, apiKey, model, baseURL string) *OpenAIClient {
	if name == "" {
		name = ProviderOpenAI
	}
	client := openai.NewClient(openAIOptions(name == ProviderOpenAI, apiKey, baseURL)...)
	if model == "" {
		model = string(openai.ChatModelGPT4o)
	}
	return &OpenAIClient{name: name, client: client, model: model}
}

func openAIOptions(envFallback bool, apiKey, baseURL string) []option.RequestOption {
	var opts []option.RequestOption
	if apiKey != "" || !envFallback {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return opts
}

func (c *OpenAIClient) Name() string { return c.name }

func (c *OpenAIClient) Complete(ctx context.Context, req Request) (*Message, error) {
	resp, err := c.client.Chat.Completions.New(ctx, c.params(req))
	if err != nil {
		return nil, &TransportError{Provider: c.name, Err: err}
	}

	result := &Message{Role: RoleAssistant}
	if len(resp.Choices) == 0 {
		return result, nil
	}

	choice := resp.Choices[0]
	result.Content = choice.Message.Content
	for _, tc := range choice.Message.ToolCalls {
		ftc := tc.AsFunction()
		id := ftc.ID
		if id == "" {
			id = newToolCallID()
		}
		result.ToolCalls = append(result.ToolCalls, ToolCall{
			ID:        id,
			Name:      ftc.Function.Name,
			Arguments: ftc.Function.Arguments,
		})
	}
	return result, nil
}

func (c *OpenAIClient) Stream(ctx context.Context, req Request) (Stream, error) {
	s := c.client.Chat.Completions.NewStreaming(ctx, c.params(req))
	if err := s.Err(); err != nil {
		s.Close()
		return nil, &TransportError{Provider: c.name, Err: err}
	}
	return &openAIStream{provider: c.name, stream: s, seen: map[int]bool{}}, nil
}

func (c *OpenAIClient) params(req Request) openai.ChatCompletionNewParams {
	model := req.Model
	if model == "" {
		model = c.model
	}
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: toOpenAIMessages(req.System, req.Messages),
	}
	if len(req.Tools) > 0 {
		params.Tools = toOpenAITools(req.Tools)
	}
	return params
}

func toOpenAITools(tools []Tool) []openai.ChatCompletionToolUnionParam {
	out := make([]openai.ChatCompletionToolUnionParam, len(tools))
	for i, t := range tools {
		out[i] = openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        t.Name,
			Description: openai.String(t.Description),
			Parameters:  openai.FunctionParameters(t.Parameters),
		})
	}
	return out
}

func toOpenAIMessages(system string, messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)+1)
	if system != "" {
		out = append(out, openai.SystemMessage(system))
	}
	for _, m := range messages {
		out = append(out, toOpenAIMessage(m))
	}
	return out
}

func toOpenAIMessage(m Message) openai.ChatCompletionMessageParamUnion {
	switch m.Role {
	case RoleSystem:
		return openai.SystemMessage(m.Content)
	case RoleTool:
		return openai.ToolMessage(m.Content, m.ToolCallID)
	case RoleUser:
		if m.ToolCallID != "" {
			return openai.ToolMessage(m.Content, m.ToolCallID)
		}
		return openai.UserMessage(m.Content)
	default:
		if len(m.ToolCalls) == 0 {
			return openai.AssistantMessage(m.Content)
		}
		asst := openai.ChatCompletionAssistantMessageParam{}
		if m.Content != "" {
			asst.Content.OfString = openai.String(m.Content)
		}
		asst.ToolCalls = make([]openai.ChatCompletionMessageToolCallUnionParam, len(m.ToolCalls))
		for i, tc := range m.ToolCalls {
			args := tc.Arguments
			if isBlank(args) {
				args = "{}"
			}
			asst.ToolCalls[i] = openai.ChatCompletionMessageToolCallUnionParam{
				OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
					ID: tc.ID,
					Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
						Name:      tc.Name,
						Arguments: args,
					},
				},
			}
		}
		return openai.ChatCompletionMessageParamUnion{OfAssistant: &asst}
	}
}

// openAIStream flattens chat-completion chunks into fragments. One chunk can
// carry text and several tool-call deltas at once, so fragments are queued.
type openAIStream struct {
	provider string
	stream   *ssestream.Stream[openai.ChatCompletionChunk]
	pending  []Fragment
	current  Fragment
	seen     map[int]bool
	err      error
}

func (s *openAIStream) Next() bool {
	for len(s.pending) == 0 {
		if !s.stream.Next() {
			if err := s.stream.Err(); err != nil {
				s.err = &TransportError{Provider: s.provider, Err: err}
			}
			return false
		}
		s.pending = s.chunkFragments(s.stream.Current())
	}
	s.current = s.pending[0]
	s.pending = s.pending[1:]
	return true
}

func (s *openAIStream) chunkFragments(chunk openai.ChatCompletionChunk) []Fragment {
	var out []Fragment
	for _, choice := range chunk.Choices {
		if choice.Delta.Content != "" {
			out = append(out, Fragment{Content: choice.Delta.Content})
		}
		for _, tc := range choice.Delta.ToolCalls {
			idx := int(tc.Index)
			frag := &ToolCallFragment{
				Index:     idx,
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			}
			if !s.seen[idx] {
				s.seen[idx] = true
				if frag.ID == "" {
					frag.ID = newToolCallID()
				}
			}
			out = append(out, Fragment{ToolCall: frag})
		}
	}
	if len(out) == 0 {
		// Role-only and finish-reason chunks surface as empty fragments.
		out = append(out, Fragment{})
	}
	return out
}

func (s *openAIStream) Current() Fragment { return s.current }
func (s *openAIStream) Err() error        { return s.err }
func (s *openAIStream) Close() error      { return s.stream.Close() }

func newToolCallID() string {
	return "call_" + uuid.NewString()
}
