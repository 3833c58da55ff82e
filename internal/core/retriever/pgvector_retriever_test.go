package retriever

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pavankumar06T/justice-legal-chatbot/internal/core"
	"github.com/Pavankumar06T/justice-legal-chatbot/internal/models"
)

type stubEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (s *stubEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = s.vec
	}
	return out, nil
}

// stubSearchDB only answers SearchKnowledgeChunks; everything else panics.
type stubSearchDB struct {
	core.DbClient
	chunks   []models.KnowledgeChunk
	err      error
	searches int
	lastK    int
}

func (s *stubSearchDB) SearchKnowledgeChunks(_ context.Context, _ []float32, limit int) ([]models.KnowledgeChunk, error) {
	s.searches++
	s.lastK = limit
	return s.chunks, s.err
}

func TestRetrievePreservesRankOrder(t *testing.T) {
	db := &stubSearchDB{chunks: []models.KnowledgeChunk{
		{Text: "best match"},
		{Text: "second match"},
		{Text: "third match"},
	}}
	r := NewPgvectorRetriever(db, &stubEmbedder{vec: []float32{0.1, 0.2}})

	snippets, err := r.Retrieve(context.Background(), "how to file an appeal", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"best match", "second match", "third match"}, snippets)
	assert.Equal(t, 3, db.lastK)
}

func TestRetrieveCachesByNormalizedQuery(t *testing.T) {
	emb := &stubEmbedder{vec: []float32{0.1}}
	db := &stubSearchDB{chunks: []models.KnowledgeChunk{{Text: "cached"}}}
	r := NewPgvectorRetriever(db, emb)

	first, err := r.Retrieve(context.Background(), "What Is Bail?", 5)
	require.NoError(t, err)

	// a different answer set must be invisible while the cache entry lives
	db.chunks = []models.KnowledgeChunk{{Text: "fresh"}}

	second, err := r.Retrieve(context.Background(), "  what is bail?  ", 5)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, emb.calls)
	assert.Equal(t, 1, db.searches)
}

func TestRetrieveDistinctKMissesCache(t *testing.T) {
	emb := &stubEmbedder{vec: []float32{0.1}}
	db := &stubSearchDB{chunks: []models.KnowledgeChunk{{Text: "a"}}}
	r := NewPgvectorRetriever(db, emb)

	_, err := r.Retrieve(context.Background(), "what is bail?", 3)
	require.NoError(t, err)
	_, err = r.Retrieve(context.Background(), "what is bail?", 5)
	require.NoError(t, err)

	assert.Equal(t, 2, db.searches)
}

func TestRetrieveEmbedderFailure(t *testing.T) {
	db := &stubSearchDB{}
	r := NewPgvectorRetriever(db, &stubEmbedder{err: errors.New("quota exhausted")})

	_, err := r.Retrieve(context.Background(), "what is bail?", 5)
	assert.Error(t, err)
	assert.Equal(t, 0, db.searches)
}

func TestRetrieveSearchFailure(t *testing.T) {
	db := &stubSearchDB{err: errors.New("connection refused")}
	r := NewPgvectorRetriever(db, &stubEmbedder{vec: []float32{0.1}})

	_, err := r.Retrieve(context.Background(), "what is bail?", 5)
	assert.Error(t, err)
}
