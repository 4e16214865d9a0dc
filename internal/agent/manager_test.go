package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chris/tablemate/internal/llm"
)

func TestManagerNotConfigured(t *testing.T) {
	m := NewManager(nil)

	_, err := m.Active()
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = m.Run(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestManagerSetActiveUnknown(t *testing.T) {
	m := NewManager(nil)
	require.NoError(t, m.Add("a", &fakeClient{}))

	err := m.SetActive("b")
	assert.ErrorIs(t, err, ErrModelNotFound)

	_, err = m.Get("b")
	assert.ErrorIs(t, err, ErrModelNotFound)
}

func TestManagerAddDoesNotActivate(t *testing.T) {
	m := NewManager(nil)
	require.NoError(t, m.Add("a", &fakeClient{}))

	_, err := m.Active()
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestManagerListOrder(t *testing.T) {
	m := NewManager(nil)
	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, m.Add(name, &fakeClient{}))
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, m.List())
}

func TestManagerRejectsDuplicates(t *testing.T) {
	m := NewManager(nil)
	require.NoError(t, m.Add("a", &fakeClient{}))
	assert.Error(t, m.Add("a", &fakeClient{}))
	assert.Error(t, m.Add("", &fakeClient{}))
}

func TestManagerRegisterUnknownProvider(t *testing.T) {
	m := NewManager(nil)
	err := m.Register("x", llm.ProviderConfig{Provider: "nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown LLM provider")
	assert.Empty(t, m.List())
}

func TestManagerRegisterWrapsClient(t *testing.T) {
	var wrapped []string
	m := NewManager(nil, WithClientWrapper(func(c llm.Client) llm.Client {
		wrapped = append(wrapped, c.Name())
		return c
	}))

	require.NoError(t, m.Register("local", llm.ProviderConfig{Provider: llm.ProviderOllama}))
	assert.Equal(t, []string{llm.ProviderOllama}, wrapped)

	a, err := m.Get("local")
	require.NoError(t, err)
	assert.Equal(t, llm.ProviderOllama, a.Name())
}

func TestManagerRunKeepsSession(t *testing.T) {
	client := &fakeClient{steps: []step{reply("one"), reply("two")}}
	m := NewManager(nil, WithAgentOptions(WithSystemPrompt("be brief")))
	require.NoError(t, m.Add("fake", client))
	require.NoError(t, m.SetActive("fake"))

	out, err := m.Run(context.Background(), "first", WithTools(false))
	require.NoError(t, err)
	assert.Equal(t, "one", out)

	out, err = m.Run(context.Background(), "second", WithTools(false))
	require.NoError(t, err)
	assert.Equal(t, "two", out)

	require.Len(t, client.calls, 2)
	assert.Equal(t, "be brief", client.calls[1].req.System)
	assert.Len(t, client.calls[1].req.Messages, 3)

	a, err := m.Active()
	require.NoError(t, err)
	assert.Equal(t, 4, a.Conversation().Len())
}

func TestManagerModelsAreIsolated(t *testing.T) {
	first := &fakeClient{steps: []step{reply("from first")}}
	second := &fakeClient{steps: []step{reply("from second")}}
	m := NewManager(nil)
	require.NoError(t, m.Add("first", first))
	require.NoError(t, m.Add("second", second))

	require.NoError(t, m.SetActive("first"))
	_, err := m.Run(context.Background(), "hi")
	require.NoError(t, err)

	require.NoError(t, m.SetActive("second"))
	out, err := m.Run(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "from second", out)
	assert.Len(t, second.calls[0].req.Messages, 1)
}
