// Package splitter cuts loaded text into chunks for embedding. Lengths are
// measured in runes.
package splitter

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var ErrInvalidSize = errors.New("invalid chunk size")

// Paragraphs splits text on blank lines and drops empty paragraphs.
func Paragraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '。', '！', '？':
		return true
	}
	return false
}

// Sentences splits text after sentence-ending punctuation, ASCII or CJK.
func Sentences(text string) []string {
	var out []string
	var cur strings.Builder
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			out = append(out, s)
		}
		cur.Reset()
	}
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		cur.WriteRune(runes[i])
		if !isSentenceEnd(runes[i]) {
			continue
		}
		for i+1 < len(runes) && isSentenceEnd(runes[i+1]) {
			i++
			cur.WriteRune(runes[i])
		}
		flush()
		for i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			i++
		}
	}
	flush()
	return out
}

// FixedLength cuts text into windows of size runes, each starting
// size-overlap runes after the previous one. The final windows may be short.
func FixedLength(text string, size, overlap int) ([]string, error) {
	if err := checkSizes(size, overlap); err != nil {
		return nil, err
	}
	runes := []rune(text)
	var out []string
	for start := 0; start < len(runes); start += size - overlap {
		end := min(start+size, len(runes))
		out = append(out, string(runes[start:end]))
	}
	return out, nil
}

func checkSizes(size, overlap int) error {
	if size <= 0 {
		return fmt.Errorf("%w: size %d", ErrInvalidSize, size)
	}
	if overlap < 0 || overlap >= size {
		return fmt.Errorf("%w: overlap %d with size %d", ErrInvalidSize, overlap, size)
	}
	return nil
}
