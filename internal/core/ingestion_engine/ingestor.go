package ingestion_engine

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/Pavankumar06T/justice-legal-chatbot/internal/core"
)

type Ingestor interface {
	Start(ctx context.Context, numWorkers int)
	Enqueue(docID string)
	ProcessOne(ctx context.Context, docID string) error
}

// DocumentExtractor turns a raw corpus file into a stream of text fragments.
type DocumentExtractor interface {
	ExtractText(ctx context.Context, r io.Reader, contentType string) (<-chan string, error)
}

// IngestConfig tunes the streaming pipeline.
//
// TargetTokens:   approximate tokens per chunk (e.g., 500).
// OverlapTokens:  token overlap between consecutive chunks for context bleed (e.g., 50).
// BatchSize:      how many chunks to embed/write in one batch (e.g., 32).
type IngestConfig struct {
	TargetTokens  int
	OverlapTokens int
	BatchSize     int
}

// chunk is the internal representation passed through the pipeline.
//
// Pos:      stable, zero-based position of the chunk inside the document.
// Text:     chunk content (built from one or more fragments).
// TokenCnt: approximate token count (used for batching and overlap math).
type chunk struct {
	Pos      int
	Text     string
	TokenCnt int
}

// CorpusIngestor orchestrates the background ingestion pipeline for the
// shared legal knowledge corpus:
//
// db:        persistence for corpus documents and chunks.
// obj:       object storage the raw files are streamed from.
// embedder:  embedding provider.
// extractor: text extraction from PDF/DOCX/plain files.
// jobs:      in-memory queue of document IDs to process.
type CorpusIngestor struct {
	db        core.DbClient
	obj       core.ObjectClient
	embedder  core.EmbeddingProvider
	extractor DocumentExtractor
	cfg       *IngestConfig
	log       *zap.SugaredLogger
	jobs      chan string
}
