// Package session holds the ordered message history of one chat session.
package session

import (
	"errors"

	"github.com/chris/tablemate/internal/llm"
)

// Conversation is the message history of one logical session. It is not
// safe for concurrent use.
//
// History only grows by Append and is only cleared by Reset; nothing is
// trimmed implicitly.
type Conversation struct {
	messages []llm.Message
}

func New() *Conversation {
	return &Conversation{}
}

// Append adds msgs to the end of the history.
func (c *Conversation) Append(msgs ...llm.Message) {
	for _, m := range msgs {
		c.messages = append(c.messages, cloneMessage(m))
	}
}

// Reset clears the history, optionally seeding it with a single message.
// More than one seed is rejected and leaves the history untouched.
func (c *Conversation) Reset(seed ...llm.Message) error {
	if len(seed) > 1 {
		return errors.New("reset accepts at most one seed message")
	}
	c.messages = nil
	c.Append(seed...)
	return nil
}

// Messages returns a copy of the history in order.
func (c *Conversation) Messages() []llm.Message {
	out := make([]llm.Message, len(c.messages))
	for i, m := range c.messages {
		out[i] = cloneMessage(m)
	}
	return out
}

func (c *Conversation) Len() int { return len(c.messages) }

// Last returns the most recent message.
func (c *Conversation) Last() (llm.Message, bool) {
	if len(c.messages) == 0 {
		return llm.Message{}, false
	}
	return cloneMessage(c.messages[len(c.messages)-1]), true
}

// Load replaces the history with msgs, for sessions restored from a Store.
func (c *Conversation) Load(msgs []llm.Message) {
	c.messages = nil
	c.Append(msgs...)
}

func cloneMessage(m llm.Message) llm.Message {
	if m.ToolCalls != nil {
		m.ToolCalls = append([]llm.ToolCall(nil), m.ToolCalls...)
	}
	return m
}
