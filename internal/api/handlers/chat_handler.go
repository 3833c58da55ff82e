package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Pavankumar06T/justice-legal-chatbot/internal/core/errs"
	"github.com/Pavankumar06T/justice-legal-chatbot/internal/models"
	"github.com/Pavankumar06T/justice-legal-chatbot/internal/services"
)

// ChatProvider is the slice of the chat service the handler needs.
type ChatProvider interface {
	Chat(ctx context.Context, userID, userMessage, sessionID, language string) (*services.ChatResult, error)
	ListSessions(ctx context.Context, userID string) ([]models.SessionSummary, error)
	GetSessionHistory(ctx context.Context, userID, sessionID string) (*models.SessionInfo, error)
	DeleteSession(ctx context.Context, userID, sessionID string) error
}

type ChatHandler struct {
	chat ChatProvider
}

func NewChatHandler(chat ChatProvider) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type chatRequest struct {
	UserMessage string `json:"user_message" validate:"required,max=4000"`
	SessionID   string `json:"session_id"`
	Language    string `json:"language"`
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(string)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.chat.Chat(r.Context(), userID, req.UserMessage, req.SessionID, req.Language)
	if err != nil {
		if errors.Is(err, errs.ErrGeneration) {
			// Hard failure: fixed apology, detail stays in the server log.
			respondJSON(w, http.StatusInternalServerError, map[string]string{
				"detail": services.GenerationApology,
			})
			return
		}
		respondError(w, http.StatusInternalServerError, "chat failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"bot_response": result.BotResponse,
		"session_id":   result.SessionID,
		"status":       "success",
	})
}

func (h *ChatHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(string)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	sessions, err := h.chat.ListSessions(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "listing sessions failed")
		return
	}
	if sessions == nil {
		sessions = []models.SessionSummary{}
	}
	respondJSON(w, http.StatusOK, sessions)
}

func (h *ChatHandler) GetSessionHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(string)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	info, err := h.chat.GetSessionHistory(r.Context(), userID, chi.URLParam(r, "session_id"))
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Session not found or you do not have access")
			return
		}
		respondError(w, http.StatusInternalServerError, "fetching history failed")
		return
	}
	respondJSON(w, http.StatusOK, info)
}

func (h *ChatHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(string)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	err := h.chat.DeleteSession(r.Context(), userID, chi.URLParam(r, "session_id"))
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Session not found or you do not have access")
			return
		}
		respondError(w, http.StatusInternalServerError, "deleting session failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Session deleted",
	})
}
