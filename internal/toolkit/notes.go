package toolkit

import (
	"context"

	"github.com/chris/tablemate/internal/tools"
)

// NoteStore is the key/value scratchpad behind the note tools.
type NoteStore interface {
	GetNote(key string) (string, error)
	SetNote(key, value string) error
}

type Notes struct {
	store NoteStore
}

func NewNotes(store NoteStore) *Notes {
	return &Notes{store: store}
}

func (n *Notes) Operations() []tools.Operation {
	return []tools.Operation{
		{
			Name: "get_note",
			Doc: `Retrieve a stored note by key. Use this for persistent memory.

Args:
    key: Note key`,
			Params: []tools.Param{tools.Arg("key", tools.String)},
			Func:   n.get,
		},
		{
			Name: "set_note",
			Doc: `Store or update a note by key. Use this as a scratchpad for persistent memory.

Args:
    key: Note key
    value: Note value`,
			Params: []tools.Param{
				tools.Arg("key", tools.String),
				tools.Arg("value", tools.String),
			},
			Func: n.set,
		},
	}
}

func (n *Notes) get(_ context.Context, args tools.Args) (any, error) {
	key, _ := args.String("key")
	val, err := n.store.GetNote(key)
	if err != nil {
		return nil, err
	}
	if val == "" {
		return map[string]any{"value": nil, "message": "no note found for this key"}, nil
	}
	return map[string]any{"value": val}, nil
}

func (n *Notes) set(_ context.Context, args tools.Args) (any, error) {
	key, _ := args.String("key")
	value, _ := args.String("value")
	if err := n.store.SetNote(key, value); err != nil {
		return nil, err
	}
	return map[string]any{"status": "saved"}, nil
}
