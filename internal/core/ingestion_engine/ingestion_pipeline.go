package ingestion_engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Pavankumar06T/justice-legal-chatbot/internal/core"
	"github.com/Pavankumar06T/justice-legal-chatbot/internal/models"
)

// NewCorpusIngestor constructs the ingestor with a bounded job queue (64).
func NewCorpusIngestor(db core.DbClient, obj core.ObjectClient, emb core.EmbeddingProvider, extractor DocumentExtractor, cfg *IngestConfig, log *zap.SugaredLogger) *CorpusIngestor {
	return &CorpusIngestor{
		db: db, obj: obj, embedder: emb, extractor: extractor, cfg: cfg, log: log,
		jobs: make(chan string, 64),
	}
}

// Start runs numWorkers goroutines reading from the jobs channel. Each job
// streams, chunks, embeds and persists one corpus document.
func (i *CorpusIngestor) Start(ctx context.Context, numWorkers int) {
	for w := 1; w <= numWorkers; w++ {
		go func(w int) {
			for {
				select {
				case <-ctx.Done():
					i.log.Infow("corpus ingestor worker shutting down", "worker", w)
					return
				case docID := <-i.jobs:
					i.log.Infow("processing corpus document", "doc_id", docID, "worker", w)
					if err := i.ProcessOne(ctx, docID); err != nil {
						i.log.Errorw("corpus document ingestion failed", "doc_id", docID, "error", err)
					}
				}
			}
		}(w)
	}
}

// Enqueue schedules a document ID for ingestion.
// If the queue is full, this call will block until space frees up.
func (i *CorpusIngestor) Enqueue(docID string) {
	i.jobs <- docID
}

// ProcessOne streams, chunks, embeds and persists a single corpus document.
func (i *CorpusIngestor) ProcessOne(ctx context.Context, docID string) error {
	procCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	doc, err := i.db.GetKnowledgeDocumentByID(ctx, docID)
	if err != nil {
		return fmt.Errorf("load knowledge document: %w", err)
	}
	if doc == nil {
		return fmt.Errorf("knowledge document not found: %s", docID)
	}

	if err := i.db.UpdateKnowledgeDocumentStatus(ctx, docID, "processing"); err != nil {
		return err
	}

	bucket, key := parseS3URL(doc.StorageURL)

	rc, err := i.obj.GetObjectReader(procCtx, bucket, key)
	if err != nil {
		_ = i.db.UpdateKnowledgeDocumentStatus(ctx, docID, "failed")
		return fmt.Errorf("get object reader: %w", err)
	}
	defer rc.Close()

	// Tie the pipeline stages together; any error cancels the rest.
	g, gctx := errgroup.WithContext(procCtx)

	// document -> fragments
	fragCh, err := i.extractor.ExtractText(gctx, rc, doc.ContentType)
	if err != nil {
		_ = i.db.UpdateKnowledgeDocumentStatus(ctx, docID, "failed")
		return fmt.Errorf("extract text: %w", err)
	}

	// fragments -> chunks
	chunkCh := i.streamChunk(gctx, g, fragCh, i.cfg.TargetTokens, i.cfg.OverlapTokens)

	// chunks -> embed + persist
	g.Go(func() error {
		return i.embedAndPersist(gctx, docID, chunkCh, i.cfg.BatchSize)
	})

	if err := g.Wait(); err != nil {
		_ = i.db.UpdateKnowledgeDocumentStatus(ctx, docID, "failed")
		return err
	}

	return i.db.UpdateKnowledgeDocumentStatus(ctx, docID, "ready")
}

// embedAndPersist drains the chunk channel in batches, embeds each batch in
// one request and inserts the rows in one transaction.
func (i *CorpusIngestor) embedAndPersist(ctx context.Context, docID string, chunks <-chan chunk, batchSize int) error {
	if batchSize <= 0 {
		batchSize = 16
	}

	batch := make([]chunk, 0, batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		texts := make([]string, len(batch))
		for j, ch := range batch {
			texts[j] = ch.Text
		}

		vecs, err := i.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed batch: %w", err)
		}
		if len(vecs) != len(batch) {
			return fmt.Errorf("embed batch: got %d vectors for %d chunks", len(vecs), len(batch))
		}

		rows := make([]models.KnowledgeChunk, len(batch))
		for j, ch := range batch {
			rows[j] = models.KnowledgeChunk{
				ID:         uuid.NewString(),
				DocumentID: docID,
				Text:       ch.Text,
				Embedding:  vecs[j],
				Position:   ch.Pos,
				TokenCount: ch.TokenCnt,
				CreatedAt:  time.Now(),
			}
		}
		if err := i.db.InsertKnowledgeChunks(ctx, rows); err != nil {
			return fmt.Errorf("insert chunks: %w", err)
		}
		batch = batch[:0]
		return nil
	}

	for ch := range chunks {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		batch = append(batch, ch)
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	return flush()
}

// parseS3URL extracts the bucket and key from a virtual-hosted-style S3 URL.
// Example: https://my-bucket.s3.us-east-2.amazonaws.com/path/to/file.pdf
func parseS3URL(u string) (bucket, key string) {
	hostPath := strings.SplitN(strings.TrimPrefix(u, "https://"), "/", 2)
	host := hostPath[0]
	if len(hostPath) == 2 {
		key = hostPath[1]
	}
	parts := strings.Split(host, ".")
	if len(parts) > 0 {
		bucket = parts[0]
	}
	return bucket, key
}

var _ Ingestor = (*CorpusIngestor)(nil)
