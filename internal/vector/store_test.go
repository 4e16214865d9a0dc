package vector

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// keywordEmbedder maps each text onto three axes by keyword.
type keywordEmbedder struct {
	calls int
	err   error
}

func (e *keywordEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v := []float32{0.01, 0.01, 0.01}
		if strings.Contains(t, "cat") {
			v[0] = 1
		}
		if strings.Contains(t, "dog") {
			v[1] = 1
		}
		if strings.Contains(t, "car") {
			v[2] = 1
		}
		out[i] = v
	}
	return out, nil
}

func TestStoreSearch(t *testing.T) {
	e := &keywordEmbedder{}
	s := NewStore(e)
	ctx := context.Background()

	require.NoError(t, s.AddTexts(ctx, "pets.txt", "the cat sleeps", "the dog barks"))
	require.NoError(t, s.Add(ctx, Document{Text: "a red car", Source: "cars.md"}))
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 2, e.calls)

	res, err := s.Search(ctx, "where is my cat", 2)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "the cat sleeps", res[0].Text)
	assert.Equal(t, "pets.txt", res[0].Source)
	assert.Greater(t, res[0].Score, res[1].Score)
}

func TestStoreThreshold(t *testing.T) {
	s := NewStore(&keywordEmbedder{}, WithThreshold(0.5))
	ctx := context.Background()
	require.NoError(t, s.AddTexts(ctx, "", "cat", "dog", "car"))

	res, err := s.Search(ctx, "dog", 3)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "dog", res[0].Text)
}

func TestStoreEmpty(t *testing.T) {
	e := &keywordEmbedder{}
	s := NewStore(e)

	res, err := s.Search(context.Background(), "cat", 3)
	require.NoError(t, err)
	assert.Empty(t, res)
	assert.Zero(t, e.calls)

	require.NoError(t, s.Add(context.Background()))
	assert.Zero(t, e.calls)
}

func TestStoreEmbedError(t *testing.T) {
	e := &keywordEmbedder{err: errors.New("quota")}
	s := NewStore(e)

	err := s.AddTexts(context.Background(), "x", "cat")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota")
	assert.Zero(t, s.Len())
}
