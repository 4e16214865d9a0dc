package llm

import (
	"context"
	"encoding/json"
	"fmt"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

type Message struct {
	Role       string     `json:"role"` // user, assistant, tool, system
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"` // for tool result messages
}

// ToolCall is a tool invocation requested by the model. Arguments holds the raw
// JSON text exactly as the provider produced it.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Tool is a tool definition offered to the model.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"` // JSON Schema
}

type Request struct {
	Model    string
	System   string
	Messages []Message
	Tools    []Tool
}

// Fragment is one incremental unit of a streamed response. At most one of
// Content and ToolCall is populated; a fragment with neither is a control
// signal and carries no data.
type Fragment struct {
	Content  string
	ToolCall *ToolCallFragment
}

// ToolCallFragment is a piece of a streamed tool call. ID and Name appear on
// the fragment that introduces the call; later fragments for the same Index
// only carry argument text.
type ToolCallFragment struct {
	Index     int
	ID        string
	Name      string
	Arguments string
}

// Empty reports whether the fragment carries neither text nor tool-call data.
func (f Fragment) Empty() bool {
	return f.Content == "" && f.ToolCall == nil
}

// Stream is a finite sequence of fragments that can be consumed once.
type Stream interface {
	Next() bool
	Current() Fragment
	Err() error
	Close() error
}

// Client is a chat-completion backend.
type Client interface {
	Name() string
	Complete(ctx context.Context, req Request) (*Message, error)
	Stream(ctx context.Context, req Request) (Stream, error)
}

// TransportError is returned by clients when the provider call fails.
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s request: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseArguments decodes tool-call argument text into a key-value map.
// Empty text decodes to an empty map.
func ParseArguments(raw string) (map[string]any, error) {
	args := map[string]any{}
	if isBlank(raw) {
		return args, nil
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, err
	}
	if args == nil {
		return map[string]any{}, nil
	}
	return args, nil
}

func isBlank(s string) bool {
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r':
		default:
			return false
		}
	}
	return true
}
