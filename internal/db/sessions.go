package db

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/chris/tablemate/internal/llm"
	"github.com/chris/tablemate/internal/session"
)

var ErrSessionNotFound = errors.New("session not found")

var _ session.Store = (*DB)(nil)

type Session struct {
	ID        string
	Title     string
	Model     string
	Messages  int
	CreatedAt string
	UpdatedAt string
}

// CreateSession starts an empty session and returns its ID.
func (d *DB) CreateSession(title, model string) (string, error) {
	id := uuid.NewString()
	_, err := d.conn.Exec(
		"INSERT INTO sessions (id, title, model) VALUES (?, ?, ?)",
		id, nullStr(title), nullStr(model),
	)
	if err != nil {
		return "", fmt.Errorf("creating session: %w", err)
	}
	return id, nil
}

// GetSession returns session metadata.
func (d *DB) GetSession(id string) (*Session, error) {
	sessions, err := d.scanSessions(sessionQuery+" WHERE s.id = ? GROUP BY s.id", id)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return &sessions[0], nil
}

// ListSessions returns sessions, most recently updated first.
func (d *DB) ListSessions(limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 20
	}
	return d.scanSessions(sessionQuery+" GROUP BY s.id ORDER BY s.updated_at DESC, s.created_at DESC LIMIT ?", limit)
}

// DeleteSession removes a session and its transcript.
func (d *DB) DeleteSession(id string) error {
	res, err := d.conn.Exec("DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return nil
}

// LoadMessages returns the transcript of a session in order. Unknown
// sessions have an empty transcript.
func (d *DB) LoadMessages(sessionID string) ([]llm.Message, error) {
	rows, err := d.conn.Query(
		`SELECT role, COALESCE(content,''), COALESCE(tool_calls,''), COALESCE(tool_call_id,'')
		FROM messages WHERE session_id = ? ORDER BY seq`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("loading messages: %w", err)
	}
	defer rows.Close()
	var msgs []llm.Message
	for rows.Next() {
		var m llm.Message
		var callsJSON string
		if err := rows.Scan(&m.Role, &m.Content, &callsJSON, &m.ToolCallID); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		if callsJSON != "" {
			if err := json.Unmarshal([]byte(callsJSON), &m.ToolCalls); err != nil {
				return nil, fmt.Errorf("decoding tool calls: %w", err)
			}
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// SaveMessages replaces the transcript of a session, creating the session
// if needed.
func (d *DB) SaveMessages(sessionID string, msgs []llm.Message) (err error) {
	tx, err := d.conn.Begin()
	if err != nil {
		return fmt.Errorf("saving messages: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.Exec(
		`INSERT INTO sessions (id) VALUES (?)
		ON CONFLICT(id) DO UPDATE SET updated_at = datetime('now')`, sessionID,
	); err != nil {
		return fmt.Errorf("touching session: %w", err)
	}
	if _, err = tx.Exec("DELETE FROM messages WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("clearing messages: %w", err)
	}
	stmt, err := tx.Prepare(
		"INSERT INTO messages (session_id, seq, role, content, tool_calls, tool_call_id) VALUES (?, ?, ?, ?, ?, ?)",
	)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()
	for i, m := range msgs {
		var calls string
		if len(m.ToolCalls) > 0 {
			b, _ := json.Marshal(m.ToolCalls)
			calls = string(b)
		}
		if _, err = stmt.Exec(sessionID, i, m.Role, nullStr(m.Content), nullStr(calls), nullStr(m.ToolCallID)); err != nil {
			return fmt.Errorf("inserting message %d: %w", i, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing messages: %w", err)
	}
	return nil
}

const sessionQuery = `SELECT s.id, COALESCE(s.title,''), COALESCE(s.model,''), COUNT(m.seq), s.created_at, s.updated_at
	FROM sessions s LEFT JOIN messages m ON m.session_id = s.id`

func (d *DB) scanSessions(query string, args ...any) ([]Session, error) {
	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()
	var sessions []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.Title, &s.Model, &s.Messages, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

