// Package document loads local files into plain text or tables for indexing.
package document

import (
	"errors"
	"path/filepath"
	"strings"
)

// Kind classifies a file by extension.
type Kind string

const (
	KindTable    Kind = "table"
	KindText     Kind = "text"
	KindDocument Kind = "document"
	KindUnknown  Kind = "unknown"
	// KindError marks a file that was recognized but could not be loaded.
	KindError Kind = "error"
)

var ErrUnsupportedFormat = errors.New("unsupported format")

var kinds = map[string]Kind{
	".csv":  KindTable,
	".xls":  KindTable,
	".xlsx": KindTable,
	".txt":  KindText,
	".md":   KindText,
	".html": KindText,
	".htm":  KindText,
	".pdf":  KindDocument,
	".docx": KindDocument,
}

// DetectKind reports the kind of path based on its extension, ignoring case.
func DetectKind(path string) Kind {
	if k, ok := kinds[strings.ToLower(filepath.Ext(path))]; ok {
		return k
	}
	return KindUnknown
}

// Table is a parsed spreadsheet-like file. The first row is the header.
type Table struct {
	Header []string
	Rows   [][]string
}

// String renders the table one row per line with cells separated by " | ".
func (t *Table) String() string {
	var b strings.Builder
	write := func(row []string) {
		b.WriteString(strings.Join(row, " | "))
		b.WriteByte('\n')
	}
	if len(t.Header) > 0 {
		write(t.Header)
	}
	for _, r := range t.Rows {
		write(r)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// File is the result of loading one path. Unknown files carry no content;
// failed loads have Kind KindError and Err set.
type File struct {
	Path  string
	Kind  Kind
	Size  int64
	Text  string
	Table *Table
	Err   error
}

// Content returns the loaded text, rendering tables row by row.
func (f File) Content() string {
	if f.Table != nil {
		return f.Table.String()
	}
	return f.Text
}
