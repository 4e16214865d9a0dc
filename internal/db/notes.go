package db

import (
	"database/sql"
	"errors"
	"fmt"
)

type Note struct {
	Key       string
	Value     string
	UpdatedAt string
}

// GetNote retrieves a note by key. A missing key yields "" and no error.
func (d *DB) GetNote(key string) (string, error) {
	var value string
	err := d.conn.QueryRow("SELECT value FROM notes WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting note: %w", err)
	}
	return value, nil
}

// SetNote stores or updates a note by key.
func (d *DB) SetNote(key, value string) error {
	_, err := d.conn.Exec(
		"INSERT INTO notes (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = datetime('now')",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("setting note: %w", err)
	}
	return nil
}

// ListNotes returns all notes ordered by key.
func (d *DB) ListNotes() ([]Note, error) {
	rows, err := d.conn.Query("SELECT key, value, updated_at FROM notes ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("listing notes: %w", err)
	}
	defer rows.Close()
	var notes []Note
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.Key, &n.Value, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// DeleteNote removes a note. It reports whether the key existed.
func (d *DB) DeleteNote(key string) (bool, error) {
	res, err := d.conn.Exec("DELETE FROM notes WHERE key = ?", key)
	if err != nil {
		return false, fmt.Errorf("deleting note: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
