package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chris/tablemate/internal/llm"
)

func TestAppendRoundTrip(t *testing.T) {
	c := New()
	msgs := []llm.Message{
		{Role: llm.RoleUser, Content: "weather in SF?"},
		{Role: llm.RoleAssistant, ToolCalls: []llm.ToolCall{{ID: "1", Name: "get_weather", Arguments: `{"location":"SF"}`}}},
		{Role: llm.RoleTool, Content: `{"result":"24℃"}`, ToolCallID: "1"},
		{Role: llm.RoleAssistant, Content: "It is 24℃."},
	}
	for _, m := range msgs {
		c.Append(m)
	}
	assert.Equal(t, msgs, c.Messages())
	assert.Equal(t, 4, c.Len())

	last, ok := c.Last()
	require.True(t, ok)
	assert.Equal(t, "It is 24℃.", last.Content)
}

func TestResetThenAppend(t *testing.T) {
	c := New()
	c.Append(llm.Message{Role: llm.RoleUser, Content: "old"})
	require.NoError(t, c.Reset())
	x := llm.Message{Role: llm.RoleUser, Content: "X"}
	c.Append(x)
	assert.Equal(t, []llm.Message{x}, c.Messages())
}

func TestResetWithSeed(t *testing.T) {
	c := New()
	c.Append(llm.Message{Role: llm.RoleUser, Content: "a"}, llm.Message{Role: llm.RoleAssistant, Content: "b"})
	seed := llm.Message{Role: llm.RoleUser, Content: "fresh start"}
	require.NoError(t, c.Reset(seed))
	assert.Equal(t, []llm.Message{seed}, c.Messages())
}

func TestResetRejectsMultipleSeeds(t *testing.T) {
	c := New()
	c.Append(llm.Message{Role: llm.RoleUser, Content: "keep"})
	err := c.Reset(llm.Message{Content: "a"}, llm.Message{Content: "b"})
	require.Error(t, err)
	assert.Equal(t, 1, c.Len())
}

func TestMessagesReturnsCopy(t *testing.T) {
	c := New()
	c.Append(llm.Message{Role: llm.RoleAssistant, ToolCalls: []llm.ToolCall{{ID: "1", Name: "get_time"}}})

	got := c.Messages()
	got[0].Content = "changed"
	got[0].ToolCalls[0].Name = "changed"

	again := c.Messages()
	assert.Equal(t, "", again[0].Content)
	assert.Equal(t, "get_time", again[0].ToolCalls[0].Name)
}

func TestLastEmpty(t *testing.T) {
	_, ok := New().Last()
	assert.False(t, ok)
}

type memStore struct {
	data map[string][]llm.Message
	err  error
}

func (m *memStore) LoadMessages(id string) ([]llm.Message, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.data[id], nil
}

func (m *memStore) SaveMessages(id string, msgs []llm.Message) error {
	if m.err != nil {
		return m.err
	}
	m.data[id] = append([]llm.Message(nil), msgs...)
	return nil
}

func TestPersistRestore(t *testing.T) {
	store := &memStore{data: map[string][]llm.Message{}}
	c := New()
	c.Append(llm.Message{Role: llm.RoleUser, Content: "hi"}, llm.Message{Role: llm.RoleAssistant, Content: "hello"})
	require.NoError(t, c.Persist(store, "s1"))

	restored := New()
	require.NoError(t, restored.Restore(store, "s1"))
	assert.Equal(t, c.Messages(), restored.Messages())
}

func TestRestoreError(t *testing.T) {
	store := &memStore{err: errors.New("locked")}
	c := New()
	c.Append(llm.Message{Role: llm.RoleUser, Content: "keep"})
	require.Error(t, c.Restore(store, "s1"))
	assert.Equal(t, 1, c.Len())
}
