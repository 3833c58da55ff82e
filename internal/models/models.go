package models

import (
	"time"
)

// User represents an authenticated user of the system.
type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// ChatTurn is one persisted exchange within a session. Rows are append-only:
// once written they are never updated, only deleted via session deletion.
// An empty user_message AND bot_response marks session creation and is
// excluded from every history/listing query.
//
// BotResponse always holds the canonical (untranslated) answer; Language
// records the effective language of the reply sent to the caller.
type ChatTurn struct {
	ID          int64     `db:"id" json:"-"`
	SessionID   string    `db:"session_id" json:"session_id"`
	UserID      string    `db:"user_id" json:"-"`
	UserMessage string    `db:"user_message" json:"user_message"`
	BotResponse string    `db:"bot_response" json:"bot_response"`
	Language    string    `db:"language" json:"language"`
	Timestamp   time.Time `db:"timestamp" json:"timestamp"`
}

// IsMarker reports whether the turn is a session-creation marker.
func (t *ChatTurn) IsMarker() bool {
	return t.UserMessage == "" && t.BotResponse == ""
}

// SessionSummary is the listing view of a session: its identifier, a label
// derived from the first real user message, and the creation time.
type SessionSummary struct {
	SessionID string    `json:"session_id"`
	Label     string    `json:"label"`
	Created   time.Time `json:"created"`
}

// SessionInfo is the full history view returned for a single session.
type SessionInfo struct {
	SessionID string     `json:"session_id"`
	Label     string     `json:"label"`
	Created   time.Time  `json:"created"`
	History   []ChatTurn `json:"history"`
}

// KnowledgeDocument represents one source document of the shared legal
// knowledge corpus.
type KnowledgeDocument struct {
	ID          string    `db:"id" json:"id"`
	FileName    string    `db:"file_name" json:"file_name"`
	StorageURL  string    `db:"storage_url" json:"storage_url"`
	ContentType string    `db:"content_type" json:"content_type"`
	Status      string    `db:"status" json:"status"` // uploaded | processing | ready | failed
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// KnowledgeChunk represents one embedded text chunk of a corpus document.
type KnowledgeChunk struct {
	ID         string    `db:"id" json:"id"`
	DocumentID string    `db:"document_id" json:"document_id"`
	Text       string    `db:"text" json:"text"`
	Embedding  []float32 `db:"embedding" json:"-"` // pgvector column
	Position   int       `db:"position" json:"position"`
	TokenCount int       `db:"token_count" json:"token_count"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
