package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Pavankumar06T/justice-legal-chatbot/internal/core"
	"github.com/Pavankumar06T/justice-legal-chatbot/internal/core/errs"
	"github.com/Pavankumar06T/justice-legal-chatbot/internal/core/format"
	"github.com/Pavankumar06T/justice-legal-chatbot/internal/models"
)

const (
	// DefaultLanguage is the canonical language responses are stored in.
	DefaultLanguage = "en"

	// NewChatCommand resets the conversation instead of asking a question.
	NewChatCommand = "/new_chat"

	// NewChatResponse is returned for the reset control message.
	NewChatResponse = "New chat session created"

	// GenerationApology is the only text a caller ever sees when the
	// generator hard-fails.
	GenerationApology = "I apologize, but I am currently unable to process your request. Please try again later."

	labelMaxLen = 50
)

// ChatResult is the outcome of one chat turn.
type ChatResult struct {
	BotResponse string
	SessionID   string
}

// ChatService is the per-turn orchestrator: retrieve context, compose the
// prompt, generate, normalize, optionally translate, persist the canonical
// turn. It also owns the session-ledger read/delete operations.
//
// Retrieval and translation failures degrade the turn silently; only a
// generator failure aborts it, and then nothing is persisted.
type ChatService struct {
	db         core.DbClient
	retriever  core.Retriever
	composer   core.PromptComposer
	llm        core.LLMProvider
	translator core.Translator
	log        *zap.SugaredLogger
	retrieveK  int

	now func() time.Time
}

func NewChatService(
	db core.DbClient,
	retriever core.Retriever,
	composer core.PromptComposer,
	llm core.LLMProvider,
	translator core.Translator,
	retrieveK int,
	log *zap.SugaredLogger,
) *ChatService {
	if retrieveK <= 0 {
		retrieveK = 5
	}
	return &ChatService{
		db:         db,
		retriever:  retriever,
		composer:   composer,
		llm:        llm,
		translator: translator,
		log:        log,
		retrieveK:  retrieveK,
		now:        time.Now,
	}
}

// Chat runs one full turn for an authenticated user.
func (s *ChatService) Chat(ctx context.Context, userID, userMessage, sessionID, language string) (*ChatResult, error) {
	if language == "" {
		language = DefaultLanguage
	}

	// Control message: mint a fresh session and record it with a marker
	// turn. No retrieval, no generation.
	if strings.TrimSpace(userMessage) == NewChatCommand {
		newID := uuid.NewString()
		marker := &models.ChatTurn{
			SessionID: newID,
			UserID:    userID,
			Language:  language,
			Timestamp: s.now(),
		}
		if err := s.db.InsertTurn(ctx, marker); err != nil {
			return nil, err
		}
		return &ChatResult{BotResponse: NewChatResponse, SessionID: newID}, nil
	}

	// Lazy session resolution: a session exists the moment its first real
	// turn is written.
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	snippets, err := s.retriever.Retrieve(ctx, userMessage, s.retrieveK)
	if err != nil {
		s.log.Warnw("retrieval failed, continuing without context", "session_id", sessionID, "error", err)
		snippets = nil
	}

	prompt, mode := s.composer.Compose(userMessage, snippets)

	raw, err := s.llm.Generate(ctx, "", prompt)
	if err != nil {
		s.log.Errorw("generation failed", "session_id", sessionID, "mode", mode, "error", err)
		return nil, errs.ErrGeneration
	}

	canonical := format.Normalize(raw)

	// Translation is best-effort. On failure the caller gets the canonical
	// text and the turn records the default language.
	responseText := canonical
	if language != DefaultLanguage {
		translated, err := s.translator.Translate(ctx, canonical, language)
		if err != nil {
			s.log.Warnw("translation failed, falling back to canonical text",
				"session_id", sessionID, "language", language, "error", err)
			language = DefaultLanguage
		} else {
			responseText = translated
		}
	}

	turn := &models.ChatTurn{
		SessionID:   sessionID,
		UserID:      userID,
		UserMessage: userMessage,
		BotResponse: canonical,
		Language:    language,
		Timestamp:   s.now(),
	}
	if err := s.db.InsertTurn(ctx, turn); err != nil {
		return nil, err
	}

	return &ChatResult{BotResponse: responseText, SessionID: sessionID}, nil
}

// ListSessions returns the caller's sessions, newest first, labelled by
// their first real message.
func (s *ChatService) ListSessions(ctx context.Context, userID string) ([]models.SessionSummary, error) {
	sessions, err := s.db.ListSessions(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		sessions[i].Label = sessionLabel(sessions[i].Label)
	}
	return sessions, nil
}

// GetSessionHistory returns the full transcript of one owned session.
// An absent session and a foreign session produce the same ErrNotFound.
func (s *ChatService) GetSessionHistory(ctx context.Context, userID, sessionID string) (*models.SessionInfo, error) {
	turns, err := s.db.ListSessionTurns(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if len(turns) == 0 {
		return nil, errs.ErrNotFound
	}
	return &models.SessionInfo{
		SessionID: sessionID,
		Label:     sessionLabel(turns[0].UserMessage),
		Created:   turns[0].Timestamp,
		History:   turns,
	}, nil
}

// DeleteSession removes every turn of an owned session, markers included.
func (s *ChatService) DeleteSession(ctx context.Context, userID, sessionID string) error {
	deleted, err := s.db.DeleteSession(ctx, sessionID, userID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// sessionLabel truncates on runes so multibyte first messages stay valid
// UTF-8.
func sessionLabel(firstMessage string) string {
	runes := []rune(firstMessage)
	if len(runes) > labelMaxLen {
		return string(runes[:labelMaxLen]) + "..."
	}
	return firstMessage
}
