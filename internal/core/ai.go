package core

import "context"

type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}

// Translator converts canonical text into a target display language.
// Failures are soft: the orchestrator falls back to the canonical text.
type Translator interface {
	Translate(ctx context.Context, text string, targetLanguage string) (string, error)
}

// Retriever returns the k most relevant corpus snippets for a query,
// best first. Failures are soft: the orchestrator proceeds with no context.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]string, error)
}

// PromptMode identifies which composition path a question took.
type PromptMode string

const (
	PromptModeGreeting    PromptMode = "greeting"
	PromptModeSubstantive PromptMode = "substantive"
)

// PromptComposer builds the generation instruction for a question and its
// retrieved snippets, reporting which mode it selected.
type PromptComposer interface {
	Compose(question string, snippets []string) (prompt string, mode PromptMode)
}
