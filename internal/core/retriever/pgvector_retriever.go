// Package retriever implements core.Retriever on top of the pgvector
// knowledge store: embed the query, KNN-search the corpus chunks, return
// the snippet texts best-first.
package retriever

import (
	"context"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/Pavankumar06T/justice-legal-chatbot/internal/core"
)

const (
	cacheTTL     = 5 * time.Minute
	cacheCleanup = 10 * time.Minute
)

type PgvectorRetriever struct {
	db       core.DbClient
	embedder core.EmbeddingProvider
	cache    *gocache.Cache
}

func NewPgvectorRetriever(db core.DbClient, embedder core.EmbeddingProvider) *PgvectorRetriever {
	return &PgvectorRetriever{
		db:       db,
		embedder: embedder,
		cache:    gocache.New(cacheTTL, cacheCleanup),
	}
}

// Retrieve returns up to k snippets for the query. Identical queries within
// the cache TTL skip the embedder and the database entirely.
func (r *PgvectorRetriever) Retrieve(ctx context.Context, query string, k int) ([]string, error) {
	if k <= 0 {
		k = 5
	}

	key := fmt.Sprintf("%d|%s", k, strings.ToLower(strings.TrimSpace(query)))
	if hit, ok := r.cache.Get(key); ok {
		return hit.([]string), nil
	}

	vecs, err := r.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("embed query: no vector returned")
	}

	chunks, err := r.db.SearchKnowledgeChunks(ctx, vecs[0], k)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}

	snippets := make([]string, 0, len(chunks))
	for _, ch := range chunks {
		snippets = append(snippets, ch.Text)
	}

	r.cache.Set(key, snippets, gocache.DefaultExpiration)
	return snippets, nil
}

var _ core.Retriever = (*PgvectorRetriever)(nil)
