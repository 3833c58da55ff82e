package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Pavankumar06T/justice-legal-chatbot/internal/core"
	"github.com/Pavankumar06T/justice-legal-chatbot/internal/core/errs"
	"github.com/Pavankumar06T/justice-legal-chatbot/internal/core/format"
	"github.com/Pavankumar06T/justice-legal-chatbot/internal/core/prompt"
	"github.com/Pavankumar06T/justice-legal-chatbot/internal/models"
)

// fakeStore is an in-memory core.DbClient mirroring the ledger queries'
// semantics (marker exclusion, owner scoping, insertion order).
type fakeStore struct {
	users  map[string]*models.User
	turns  []models.ChatTurn
	nextID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[string]*models.User{}}
}

func (f *fakeStore) CreateUser(_ context.Context, user *models.User) error {
	if _, ok := f.users[user.Username]; ok {
		return errs.ErrUsernameTaken
	}
	cp := *user
	f.users[user.Username] = &cp
	return nil
}

func (f *fakeStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	u, ok := f.users[username]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) InsertTurn(_ context.Context, turn *models.ChatTurn) error {
	f.nextID++
	t := *turn
	t.ID = f.nextID
	f.turns = append(f.turns, t)
	return nil
}

func (f *fakeStore) ListSessionTurns(_ context.Context, sessionID, userID string) ([]models.ChatTurn, error) {
	var out []models.ChatTurn
	for _, t := range f.turns {
		if t.SessionID == sessionID && t.UserID == userID && t.UserMessage != "" {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) ListSessions(_ context.Context, userID string) ([]models.SessionSummary, error) {
	seen := map[string]bool{}
	var out []models.SessionSummary
	for _, t := range f.turns {
		if t.UserID != userID || t.UserMessage == "" || seen[t.SessionID] {
			continue
		}
		seen[t.SessionID] = true
		out = append(out, models.SessionSummary{SessionID: t.SessionID, Label: t.UserMessage, Created: t.Timestamp})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Created.After(out[j].Created) })
	return out, nil
}

func (f *fakeStore) DeleteSession(_ context.Context, sessionID, userID string) (int64, error) {
	var kept []models.ChatTurn
	var deleted int64
	for _, t := range f.turns {
		if t.SessionID == sessionID && t.UserID == userID {
			deleted++
			continue
		}
		kept = append(kept, t)
	}
	f.turns = kept
	return deleted, nil
}

func (f *fakeStore) CreateKnowledgeDocument(context.Context, *models.KnowledgeDocument) error {
	return nil
}
func (f *fakeStore) GetKnowledgeDocumentByID(context.Context, string) (*models.KnowledgeDocument, error) {
	return nil, nil
}
func (f *fakeStore) ListKnowledgeDocuments(context.Context) ([]models.KnowledgeDocument, error) {
	return nil, nil
}
func (f *fakeStore) UpdateKnowledgeDocumentStatus(context.Context, string, string) error { return nil }
func (f *fakeStore) InsertKnowledgeChunks(context.Context, []models.KnowledgeChunk) error {
	return nil
}
func (f *fakeStore) SearchKnowledgeChunks(context.Context, []float32, int) ([]models.KnowledgeChunk, error) {
	return nil, nil
}
func (f *fakeStore) Close() error { return nil }

var _ core.DbClient = (*fakeStore)(nil)

type stubRetriever struct {
	snippets []string
	err      error
	calls    int
}

func (s *stubRetriever) Retrieve(context.Context, string, int) ([]string, error) {
	s.calls++
	return s.snippets, s.err
}

// recordingComposer wraps a real composer and records which mode ran.
type recordingComposer struct {
	inner        core.PromptComposer
	lastMode     core.PromptMode
	lastSnippets []string
}

func (r *recordingComposer) Compose(question string, snippets []string) (string, core.PromptMode) {
	p, mode := r.inner.Compose(question, snippets)
	r.lastMode = mode
	r.lastSnippets = snippets
	return p, mode
}

type stubLLM struct {
	resp       string
	err        error
	calls      int
	lastPrompt string
}

func (s *stubLLM) Generate(_ context.Context, _ string, userPrompt string) (string, error) {
	s.calls++
	s.lastPrompt = userPrompt
	return s.resp, s.err
}

type stubTranslator struct {
	resp  string
	err   error
	calls int
}

func (s *stubTranslator) Translate(context.Context, string, string) (string, error) {
	s.calls++
	return s.resp, s.err
}

type chatFixture struct {
	store      *fakeStore
	retriever  *stubRetriever
	composer   *recordingComposer
	llm        *stubLLM
	translator *stubTranslator
	svc        *ChatService
}

func newChatFixture() *chatFixture {
	f := &chatFixture{
		store:      newFakeStore(),
		retriever:  &stubRetriever{snippets: []string{"snippet one", "snippet two"}},
		composer:   &recordingComposer{inner: prompt.NewComposer()},
		llm:        &stubLLM{resp: "**Answer**. Follow the steps. 1. one 2. two"},
		translator: &stubTranslator{resp: "translated text"},
	}
	f.svc = NewChatService(f.store, f.retriever, f.composer, f.llm, f.translator, 5, zap.NewNop().Sugar())
	return f
}

func TestChatEnglishReturnsFormatterOutputExactly(t *testing.T) {
	f := newChatFixture()

	res, err := f.svc.Chat(context.Background(), "user-a", "How do I appeal?", "", "en")
	require.NoError(t, err)

	assert.Equal(t, format.Normalize(f.llm.resp), res.BotResponse)
	assert.Equal(t, 0, f.translator.calls, "en turns must never enter translation")
	assert.NotEmpty(t, res.SessionID)

	require.Len(t, f.store.turns, 1)
	turn := f.store.turns[0]
	assert.Equal(t, format.Normalize(f.llm.resp), turn.BotResponse)
	assert.Equal(t, "en", turn.Language)
}

func TestChatTranslationFailureFallsBackToCanonical(t *testing.T) {
	f := newChatFixture()
	f.translator.err = errors.New("translate quota exceeded")

	res, err := f.svc.Chat(context.Background(), "user-a", "How do I appeal?", "", "hi")
	require.NoError(t, err)

	canonical := format.Normalize(f.llm.resp)
	assert.Equal(t, canonical, res.BotResponse)

	require.Len(t, f.store.turns, 1)
	assert.Equal(t, "en", f.store.turns[0].Language, "effective language resets on fallback")
	assert.Equal(t, canonical, f.store.turns[0].BotResponse)
}

func TestChatTranslationSuccessKeepsCanonicalStored(t *testing.T) {
	f := newChatFixture()

	res, err := f.svc.Chat(context.Background(), "user-a", "How do I appeal?", "", "hi")
	require.NoError(t, err)

	assert.Equal(t, "translated text", res.BotResponse)

	require.Len(t, f.store.turns, 1)
	assert.Equal(t, "hi", f.store.turns[0].Language)
	assert.Equal(t, format.Normalize(f.llm.resp), f.store.turns[0].BotResponse,
		"stored response must stay canonical, never translated")
}

func TestChatNewChatCommand(t *testing.T) {
	f := newChatFixture()

	res, err := f.svc.Chat(context.Background(), "user-a", "  /new_chat  ", "old-session", "en")
	require.NoError(t, err)

	assert.Equal(t, NewChatResponse, res.BotResponse)
	assert.NotEmpty(t, res.SessionID)
	assert.NotEqual(t, "old-session", res.SessionID)
	assert.Equal(t, 0, f.llm.calls, "control message must not reach the generator")
	assert.Equal(t, 0, f.retriever.calls)

	require.Len(t, f.store.turns, 1)
	assert.True(t, f.store.turns[0].IsMarker())

	// the marker keeps the fresh session invisible in history and listings
	_, err = f.svc.GetSessionHistory(context.Background(), "user-a", res.SessionID)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	sessions, err := f.svc.ListSessions(context.Background(), "user-a")
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestChatRetrievalFailureStillGenerates(t *testing.T) {
	f := newChatFixture()
	f.retriever.err = errors.New("vector store unreachable")
	f.retriever.snippets = nil

	res, err := f.svc.Chat(context.Background(), "user-a", "How do I appeal?", "", "en")
	require.NoError(t, err)

	assert.Equal(t, 1, f.llm.calls, "generator runs even with no context")
	assert.Empty(t, f.composer.lastSnippets)
	assert.Equal(t, core.PromptModeSubstantive, f.composer.lastMode)
	assert.NotEmpty(t, res.BotResponse)
}

func TestChatGenerationFailurePersistsNothing(t *testing.T) {
	f := newChatFixture()
	f.llm.err = errors.New("model overloaded")

	_, err := f.svc.Chat(context.Background(), "user-a", "How do I appeal?", "", "en")
	assert.ErrorIs(t, err, errs.ErrGeneration)
	assert.Empty(t, f.store.turns)
}

func TestChatGreetingSelectsGreetingMode(t *testing.T) {
	f := newChatFixture()
	f.llm.resp = "Welcome! I can help with legal questions."

	_, err := f.svc.Chat(context.Background(), "user-a", "hi", "", "en")
	require.NoError(t, err)

	assert.Equal(t, core.PromptModeGreeting, f.composer.lastMode)
}

func TestChatHistoryRoundTrip(t *testing.T) {
	f := newChatFixture()

	res, err := f.svc.Chat(context.Background(), "user-a", "What is an FIR?", "", "en")
	require.NoError(t, err)

	info, err := f.svc.GetSessionHistory(context.Background(), "user-a", res.SessionID)
	require.NoError(t, err)

	require.Len(t, info.History, 1)
	assert.Equal(t, "What is an FIR?", info.History[0].UserMessage)
	assert.Equal(t, format.Normalize(f.llm.resp), info.History[0].BotResponse)
	assert.Equal(t, "en", info.History[0].Language)
	assert.Equal(t, "What is an FIR?", info.Label)
}

func TestSessionOwnership(t *testing.T) {
	f := newChatFixture()

	res, err := f.svc.Chat(context.Background(), "user-a", "What is an FIR?", "", "en")
	require.NoError(t, err)

	_, err = f.svc.GetSessionHistory(context.Background(), "user-b", res.SessionID)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	err = f.svc.DeleteSession(context.Background(), "user-b", res.SessionID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
	assert.Len(t, f.store.turns, 1, "foreign delete must not remove anything")

	require.NoError(t, f.svc.DeleteSession(context.Background(), "user-a", res.SessionID))
	assert.Empty(t, f.store.turns)
}

func TestListSessionsTruncatesLabels(t *testing.T) {
	f := newChatFixture()

	long := "What exactly are the procedural requirements for filing an appeal?"
	require.Greater(t, len(long), 50)

	_, err := f.svc.Chat(context.Background(), "user-a", long, "", "en")
	require.NoError(t, err)

	sessions, err := f.svc.ListSessions(context.Background(), "user-a")
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	assert.Equal(t, long[:50]+"...", sessions[0].Label)
}

func TestListSessionsLabelTruncationMultibyte(t *testing.T) {
	f := newChatFixture()

	// 60 Devanagari characters, each wider than one byte
	long := strings.Repeat("अपील दायर ", 6)
	require.Equal(t, 60, utf8.RuneCountInString(long))

	_, err := f.svc.Chat(context.Background(), "user-a", long, "", "en")
	require.NoError(t, err)

	sessions, err := f.svc.ListSessions(context.Background(), "user-a")
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	label := sessions[0].Label
	assert.True(t, utf8.ValidString(label))
	assert.Equal(t, string([]rune(long)[:50])+"...", label)
	assert.Equal(t, 53, utf8.RuneCountInString(label))
}

func TestChatReusesSuppliedSessionID(t *testing.T) {
	f := newChatFixture()

	res1, err := f.svc.Chat(context.Background(), "user-a", "first question", "", "en")
	require.NoError(t, err)

	res2, err := f.svc.Chat(context.Background(), "user-a", "second question", res1.SessionID, "en")
	require.NoError(t, err)
	assert.Equal(t, res1.SessionID, res2.SessionID)

	info, err := f.svc.GetSessionHistory(context.Background(), "user-a", res1.SessionID)
	require.NoError(t, err)
	require.Len(t, info.History, 2)
	assert.Equal(t, "first question", info.History[0].UserMessage)
	assert.Equal(t, "second question", info.History[1].UserMessage)
}
