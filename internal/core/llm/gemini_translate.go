package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/Pavankumar06T/justice-legal-chatbot/internal/core"
)

// GeminiTranslator converts canonical responses into a display language.
// Source language is auto-detected by the model.
type GeminiTranslator struct {
	client    *genai.Client
	modelName string
}

func NewGeminiTranslator(ctx context.Context, apiKey, modelName string) (*GeminiTranslator, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &GeminiTranslator{client: cl, modelName: modelName}, nil
}

func (g *GeminiTranslator) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func (g *GeminiTranslator) Translate(ctx context.Context, text string, targetLanguage string) (string, error) {
	m := g.client.GenerativeModel(g.modelName)
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(
			"You are a translation engine. Translate the user's text into the requested language. " +
				"Preserve all line breaks, list markers, Roman-numeral headings and <strong> tags exactly. " +
				"Output only the translated text.",
		)},
	}

	prompt := fmt.Sprintf("Target language code: %s\n\nText:\n%s", targetLanguage, text)
	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini translate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini translate: empty response")
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return strings.TrimSpace(b.String()), nil
}

var _ core.Translator = (*GeminiTranslator)(nil)
