package llm

import (
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
)

func TestToAnthropicTools(t *testing.T) {
	tools := []Tool{{
		Name:        "get_weather",
		Description: "Get the weather for a location.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"location": map[string]any{"type": "string"},
			},
			"required": []any{"location"},
		},
	}}
	got := toAnthropicTools(tools)
	if len(got) != 1 {
		t.Fatalf("expected 1 tool, got %d", len(got))
	}
	tool := got[0].OfTool
	if tool == nil {
		t.Fatal("expected OfTool to be set")
	}
	if tool.Name != "get_weather" {
		t.Errorf("name = %q", tool.Name)
	}
	if len(tool.InputSchema.Required) != 1 || tool.InputSchema.Required[0] != "location" {
		t.Errorf("required = %v", tool.InputSchema.Required)
	}
}

func TestToAnthropicMessages_MergesToolResults(t *testing.T) {
	msgs := []Message{
		{Role: RoleUser, Content: "weather and time?"},
		{Role: RoleAssistant, ToolCalls: []ToolCall{
			{ID: "a", Name: "get_weather", Arguments: `{"location":"SF"}`},
			{ID: "b", Name: "get_time"},
		}},
		{Role: RoleTool, Content: `{"result":"24℃"}`, ToolCallID: "a"},
		{Role: RoleTool, Content: `{"result":"09:00"}`, ToolCallID: "b"},
		{Role: RoleAssistant, Content: "24℃ at 09:00"},
	}
	got := toAnthropicMessages(msgs)
	if len(got) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(got))
	}
	if got[1].Role != anthropic.MessageParamRoleAssistant || len(got[1].Content) != 2 {
		t.Errorf("assistant turn should carry 2 tool_use blocks, got %+v", got[1])
	}
	if got[2].Role != anthropic.MessageParamRoleUser || len(got[2].Content) != 2 {
		t.Fatalf("tool results should be merged into one user turn, got %+v", got[2])
	}
	if got[2].Content[0].OfToolResult == nil || got[2].Content[0].OfToolResult.ToolUseID != "a" {
		t.Errorf("unexpected first tool result: %+v", got[2].Content[0])
	}
}

func TestToAnthropicMessages_SkipsSystem(t *testing.T) {
	got := toAnthropicMessages([]Message{
		{Role: RoleSystem, Content: "be brief"},
		{Role: RoleUser, Content: "hi"},
	})
	if len(got) != 1 {
		t.Fatalf("expected system message to be dropped from turns, got %d", len(got))
	}
}

func TestAnthropicParams_SystemPrompt(t *testing.T) {
	c := NewAnthropicClient("key", "", "")
	p := c.params(Request{
		System:   "base",
		Messages: []Message{{Role: RoleSystem, Content: "extra"}, {Role: RoleUser, Content: "hi"}},
	})
	if len(p.System) != 1 || p.System[0].Text != "base\n\nextra" {
		t.Errorf("system = %+v", p.System)
	}
	if string(p.Model) != "claude-sonnet-4-20250514" {
		t.Errorf("model = %q", p.Model)
	}
}
