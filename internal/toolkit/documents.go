package toolkit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chris/tablemate/internal/document"
	"github.com/chris/tablemate/internal/splitter"
	"github.com/chris/tablemate/internal/tools"
	"github.com/chris/tablemate/internal/vector"
)

const defaultTopK = 4

// Searcher finds stored text chunks similar to a query.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]vector.Result, error)
}

type Documents struct {
	searcher Searcher
	topK     int
}

// NewDocuments exposes searcher as the search_documents tool. topK is the
// default number of results.
func NewDocuments(searcher Searcher, topK int) *Documents {
	if topK <= 0 {
		topK = defaultTopK
	}
	return &Documents{searcher: searcher, topK: topK}
}

func (d *Documents) Operations() []tools.Operation {
	return []tools.Operation{{
		Name: "search_documents",
		Doc: `Search the loaded documents for passages relevant to a query.

Args:
    query: What to look for, in natural language
    k: Maximum number of passages to return`,
		Params: []tools.Param{
			tools.Arg("query", tools.String),
			tools.ArgDefault("k", tools.Integer, d.topK),
		},
		Func: d.search,
	}}
}

type passage struct {
	Text   string  `json:"text"`
	Source string  `json:"source,omitempty"`
	Score  float32 `json:"score"`
}

func (d *Documents) search(ctx context.Context, args tools.Args) (any, error) {
	query, _ := args.String("query")
	k, ok := args.Int("k")
	if !ok || k <= 0 {
		k = int64(d.topK)
	}
	results, err := d.searcher.Search(ctx, query, int(k))
	if err != nil {
		return nil, err
	}
	out := make([]passage, len(results))
	for i, r := range results {
		out[i] = passage{Text: r.Text, Source: r.Source, Score: r.Score}
	}
	return out, nil
}

// Indexer is where Ingest puts chunks.
type Indexer interface {
	Add(ctx context.Context, docs ...vector.Document) error
}

// Ingest loads every file under dir, splits the text and indexes the
// chunks. Files that fail to load are logged and skipped. It returns the
// number of chunks indexed.
func Ingest(ctx context.Context, dir string, idx Indexer, split splitter.Recursive, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	files, err := document.NewLoader(logger).LoadFolder(dir)
	if err != nil {
		return 0, err
	}

	var docs []vector.Document
	for _, f := range files {
		switch f.Kind {
		case document.KindError:
			logger.Warn("skipping file", "path", f.Path, "error", f.Err)
			continue
		case document.KindUnknown:
			continue
		}
		chunks, err := split.Split(f.Content())
		if err != nil {
			return 0, fmt.Errorf("splitting %s: %w", f.Path, err)
		}
		for _, c := range chunks {
			docs = append(docs, vector.Document{Text: c, Source: f.Path})
		}
	}
	if len(docs) == 0 {
		return 0, nil
	}
	if err := idx.Add(ctx, docs...); err != nil {
		return 0, fmt.Errorf("indexing %s: %w", dir, err)
	}
	logger.Info("indexed documents", "dir", dir, "files", len(files), "chunks", len(docs))
	return len(docs), nil
}
