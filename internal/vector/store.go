package vector

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/chris/tablemate/internal/llm"
)

// Document is a stored text chunk and where it came from.
type Document struct {
	Text   string
	Source string
}

type Result struct {
	Document
	Score float32
}

// Store embeds texts and keeps them alongside their vectors.
type Store struct {
	embedder  llm.Embedder
	index     *Index
	threshold float32
	logger    *slog.Logger

	mu   sync.RWMutex
	docs []Document
}

type StoreOption func(*Store)

// WithThreshold drops results scoring below min. Zero disables filtering.
func WithThreshold(min float32) StoreOption {
	return func(s *Store) { s.threshold = min }
}

func WithStoreLogger(l *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

func NewStore(embedder llm.Embedder, opts ...StoreOption) *Store {
	s := &Store{embedder: embedder, index: NewIndex(0)}
	for _, o := range opts {
		o(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Add embeds docs in one batch and indexes them.
func (s *Store) Add(ctx context.Context, docs ...Document) error {
	if len(docs) == 0 {
		return nil
	}
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text
	}
	vecs, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding %d texts: %w", len(texts), err)
	}
	if len(vecs) != len(docs) {
		return fmt.Errorf("embedding: got %d vectors for %d texts", len(vecs), len(docs))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ids, err := s.index.Add(vecs...)
	if err != nil {
		return err
	}
	for i, id := range ids {
		if id != len(s.docs) {
			return fmt.Errorf("index out of sync: id %d, have %d docs", id, len(s.docs))
		}
		s.docs = append(s.docs, docs[i])
	}
	s.logger.Debug("indexed documents", "count", len(docs), "total", len(s.docs))
	return nil
}

// AddTexts indexes plain texts under a common source.
func (s *Store) AddTexts(ctx context.Context, source string, texts ...string) error {
	docs := make([]Document, len(texts))
	for i, t := range texts {
		docs[i] = Document{Text: t, Source: source}
	}
	return s.Add(ctx, docs...)
}

// Search returns the k documents most similar to query.
func (s *Store) Search(ctx context.Context, query string, k int) ([]Result, error) {
	if k <= 0 || s.Len() == 0 {
		return nil, nil
	}
	vecs, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embedding query: got %d vectors", len(vecs))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	hits, err := s.index.Search(vecs[0], k)
	if err != nil {
		return nil, err
	}
	out := make([]Result, 0, len(hits))
	for _, h := range hits {
		if s.threshold != 0 && h.Score < s.threshold {
			continue
		}
		out = append(out, Result{Document: s.docs[h.ID], Score: h.Score})
	}
	return out, nil
}
