package session

import "github.com/chris/tablemate/internal/llm"

// Store persists conversation transcripts by session ID.
type Store interface {
	LoadMessages(sessionID string) ([]llm.Message, error)
	SaveMessages(sessionID string, msgs []llm.Message) error
}

// Restore loads the transcript stored under id into c.
func (c *Conversation) Restore(s Store, id string) error {
	msgs, err := s.LoadMessages(id)
	if err != nil {
		return err
	}
	c.Load(msgs)
	return nil
}

// Persist writes c's transcript to s under id.
func (c *Conversation) Persist(s Store, id string) error {
	return s.SaveMessages(id, c.messages)
}
