package core

import (
	"context"
	"io"

	"github.com/Pavankumar06T/justice-legal-chatbot/internal/models"
)

// DbClient defines all persistence operations the services need.
// It abstracts Postgres/pgvector so higher layers never depend on a specific DB.
type DbClient interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// InsertTurn appends one row to the session ledger. Single-statement,
	// never part of a wider transaction.
	InsertTurn(ctx context.Context, turn *models.ChatTurn) error

	// ListSessionTurns returns the non-marker turns of a session owned by
	// userID, ordered by timestamp then id. Empty result means the session
	// is absent or foreign; the two are indistinguishable on purpose.
	ListSessionTurns(ctx context.Context, sessionID, userID string) ([]models.ChatTurn, error)

	// ListSessions returns one summary per session owned by userID that has
	// at least one non-marker turn, newest first.
	ListSessions(ctx context.Context, userID string) ([]models.SessionSummary, error)

	// DeleteSession removes every turn of sessionID owned by userID and
	// reports how many rows went away. Rows under the same session_id but a
	// different user_id are preserved.
	DeleteSession(ctx context.Context, sessionID, userID string) (int64, error)

	CreateKnowledgeDocument(ctx context.Context, doc *models.KnowledgeDocument) error
	GetKnowledgeDocumentByID(ctx context.Context, id string) (*models.KnowledgeDocument, error)
	ListKnowledgeDocuments(ctx context.Context) ([]models.KnowledgeDocument, error)
	UpdateKnowledgeDocumentStatus(ctx context.Context, id string, status string) error

	InsertKnowledgeChunks(ctx context.Context, chunks []models.KnowledgeChunk) error
	SearchKnowledgeChunks(ctx context.Context, queryVec []float32, limit int) ([]models.KnowledgeChunk, error)

	Close() error
}

// ObjectClient defines interactions with S3 or any object storage.
// It's abstract so you can replace AWS with MinIO, GCP, etc. easily.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data io.Reader, contentType string) (url string, err error)
	DeleteFile(ctx context.Context, bucket, key string) error
	GetObjectReader(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}
