package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Pavankumar06T/justice-legal-chatbot/internal/config"
	"github.com/Pavankumar06T/justice-legal-chatbot/internal/core"
	"github.com/Pavankumar06T/justice-legal-chatbot/internal/core/errs"
	"github.com/Pavankumar06T/justice-legal-chatbot/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (core.DbClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Implementing the db interface for users

func (c *DatabaseClient) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	const q = `
		INSERT INTO users (id, username, password_hash, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`
	_, err := c.db.ExecContext(ctx, q, user.ID, user.Username, user.PasswordHash, user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return errs.ErrUsernameTaken
		}
		return err
	}
	return nil
}

func (c *DatabaseClient) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const q = `
		SELECT id, username, password_hash, created_at
		FROM users WHERE username = $1
	`
	var u models.User
	err := c.db.QueryRowContext(ctx, q, username).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Implementing the db interface for the session ledger

func (c *DatabaseClient) InsertTurn(ctx context.Context, turn *models.ChatTurn) error {
	if turn == nil {
		return errors.New("nil turn")
	}
	const q = `
		INSERT INTO chat_history (session_id, user_id, user_message, bot_response, language, timestamp)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		turn.SessionID, turn.UserID, turn.UserMessage, turn.BotResponse, turn.Language, turn.Timestamp)
	return err
}

func (c *DatabaseClient) ListSessionTurns(ctx context.Context, sessionID, userID string) ([]models.ChatTurn, error) {
	const q = `
		SELECT id, session_id, user_id, user_message, bot_response, language, timestamp
		FROM chat_history
		WHERE session_id = $1 AND user_id = $2 AND user_message <> ''
		ORDER BY timestamp ASC, id ASC
	`
	rows, err := c.db.QueryContext(ctx, q, sessionID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ChatTurn
	for rows.Next() {
		var t models.ChatTurn
		if err := rows.Scan(
			&t.ID, &t.SessionID, &t.UserID, &t.UserMessage, &t.BotResponse, &t.Language, &t.Timestamp,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListSessions groups the ledger per session, skipping marker rows so a
// freshly reset session stays invisible until its first real turn.
func (c *DatabaseClient) ListSessions(ctx context.Context, userID string) ([]models.SessionSummary, error) {
	const q = `
		SELECT session_id,
		       (ARRAY_AGG(user_message ORDER BY timestamp ASC, id ASC))[1] AS first_message,
		       MIN(timestamp) AS created
		FROM chat_history
		WHERE user_id = $1 AND user_message <> ''
		GROUP BY session_id
		ORDER BY created DESC
	`
	rows, err := c.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SessionSummary
	for rows.Next() {
		var s models.SessionSummary
		if err := rows.Scan(&s.SessionID, &s.Label, &s.Created); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) DeleteSession(ctx context.Context, sessionID, userID string) (int64, error) {
	const q = `
		DELETE FROM chat_history
		WHERE session_id = $1 AND user_id = $2
	`
	res, err := c.db.ExecContext(ctx, q, sessionID, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Implementing the db interface for the knowledge corpus

func (c *DatabaseClient) CreateKnowledgeDocument(ctx context.Context, doc *models.KnowledgeDocument) error {
	if doc == nil {
		return errors.New("nil document")
	}
	const q = `
		INSERT INTO knowledge_documents
			(id, file_name, storage_url, content_type, status, created_at, updated_at)
		VALUES
			($1, $2, $3, $4, $5, COALESCE($6, now()), COALESCE($7, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		doc.ID, doc.FileName, doc.StorageURL, doc.ContentType, doc.Status, doc.CreatedAt, doc.UpdatedAt)
	return err
}

func (c *DatabaseClient) GetKnowledgeDocumentByID(ctx context.Context, id string) (*models.KnowledgeDocument, error) {
	const q = `
		SELECT id, file_name, storage_url, content_type, status, created_at, updated_at
		FROM knowledge_documents
		WHERE id = $1
	`
	var d models.KnowledgeDocument
	err := c.db.QueryRowContext(ctx, q, id).Scan(
		&d.ID, &d.FileName, &d.StorageURL, &d.ContentType, &d.Status, &d.CreatedAt, &d.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *DatabaseClient) ListKnowledgeDocuments(ctx context.Context) ([]models.KnowledgeDocument, error) {
	const q = `
		SELECT id, file_name, storage_url, content_type, status, created_at, updated_at
		FROM knowledge_documents
		ORDER BY created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.KnowledgeDocument
	for rows.Next() {
		var d models.KnowledgeDocument
		if err := rows.Scan(
			&d.ID, &d.FileName, &d.StorageURL, &d.ContentType, &d.Status, &d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) UpdateKnowledgeDocumentStatus(ctx context.Context, id string, status string) error {
	const q = `
		UPDATE knowledge_documents
		SET status = $2, updated_at = now()
		WHERE id = $1
	`
	res, err := c.db.ExecContext(ctx, q, id, status)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("knowledge document not found: %s", id)
	}
	return nil
}

// InsertKnowledgeChunks inserts chunks in a single transaction.
func (c *DatabaseClient) InsertKnowledgeChunks(ctx context.Context, chunks []models.KnowledgeChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}

	const q = `
		INSERT INTO knowledge_chunks
			(id, document_id, position, text, embedding, token_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, now()))
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := range chunks {
		ch := &chunks[i]
		vec := pgvector.NewVector(ch.Embedding)

		if _, err := stmt.ExecContext(ctx,
			ch.ID, ch.DocumentID, ch.Position, ch.Text, vec, ch.TokenCount, ch.CreatedAt,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// SearchKnowledgeChunks finds the top-k corpus chunks nearest to the query embedding.
func (c *DatabaseClient) SearchKnowledgeChunks(ctx context.Context, queryVec []float32, limit int) ([]models.KnowledgeChunk, error) {
	const q = `
		SELECT id, document_id, position, text, embedding, token_count
		FROM knowledge_chunks
		ORDER BY embedding <-> $1
		LIMIT $2
	`
	vec := pgvector.NewVector(queryVec)
	rows, err := c.db.QueryContext(ctx, q, vec, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.KnowledgeChunk
	for rows.Next() {
		var (
			ch  models.KnowledgeChunk
			emb pgvector.Vector
		)
		if err := rows.Scan(&ch.ID, &ch.DocumentID, &ch.Position, &ch.Text, &emb, &ch.TokenCount); err != nil {
			return nil, err
		}
		ch.Embedding = emb.Slice()
		out = append(out, ch)
	}
	return out, rows.Err()
}
