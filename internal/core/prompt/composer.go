// Package prompt builds generation instructions for the legal assistant.
// Two modes: a short welcome for greetings, and a context-grounded
// substantive prompt carrying the structural formatting contract.
package prompt

import (
	"fmt"
	"strings"

	"github.com/Pavankumar06T/justice-legal-chatbot/internal/core"
)

// greetings are matched against the trimmed, lower-cased question.
var greetings = map[string]struct{}{
	"hi":       {},
	"hello":    {},
	"hey":      {},
	"hi there": {},
}

type Composer struct{}

func NewComposer() *Composer {
	return &Composer{}
}

// Compose builds the instruction for the question. Greeting mode ignores
// snippets entirely; substantive mode embeds them as a context block, or
// falls back to general-knowledge instructions when retrieval came back
// empty. Retrieval failure degrades context quality, never blocks the answer.
func (c *Composer) Compose(question string, snippets []string) (string, core.PromptMode) {
	if _, ok := greetings[strings.ToLower(strings.TrimSpace(question))]; ok {
		return greetingPrompt(question), core.PromptModeGreeting
	}
	return substantivePrompt(question, snippets), core.PromptModeSubstantive
}

func greetingPrompt(question string) string {
	return fmt.Sprintf(`You are a legal expert assistant for a Justice Department chatbot.
Respond to this greeting briefly and welcomingly.

Question: %s

Provide a friendly, concise welcome message (1-2 sentences) that introduces your purpose as a legal assistant.
`, question)
}

func substantivePrompt(question string, snippets []string) string {
	contextBlock := "No context documents were retrieved. Answer from your general knowledge of legal procedures and rights."
	if len(snippets) > 0 {
		contextBlock = strings.Join(snippets, "\n\n")
	}

	return fmt.Sprintf(`You are a legal expert assistant for a Justice Department chatbot.
Provide clear, structured, and actionable information about legal procedures and rights.

IMPORTANT FORMATTING INSTRUCTIONS:
- ALWAYS use clear section headings with Roman numerals (I., II., III.)
- ALWAYS use numbered lists (1., 2., 3.) for step-by-step procedures
- ALWAYS use bullet points (•) for lists of items, rights, or considerations
- NEVER combine multiple points into paragraphs
- Put each step or point on a new line
- Use <strong> tags for emphasis where needed instead of **bold**
- Keep information concise and easily scannable
- Add line breaks between sections

Context information:
%s

Question: %s

Structure your response with these clear sections:

I. [MAIN HEADING]
• Point 1
• Point 2
• Point 3

II. [NEXT HEADING]
1. Step 1
2. Step 2
3. Step 3

III. KEY POINTS TO REMEMBER:
• Important consideration 1
• Important consideration 2
• Additional notes

IV. ADDITIONAL RESOURCES:
- Information about where to get more help

Provide a comprehensive yet easily digestible response with proper line breaks.
`, contextBlock, question)
}

var _ core.PromptComposer = (*Composer)(nil)
