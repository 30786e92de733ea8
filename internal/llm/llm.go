package llm

import "context"

// Generator produces natural-language text from a system prompt, a formatted
// context block and a user message. Implementations may fail with provider,
// quota or timeout errors; callers bound each call through ctx.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, contextBlock, userMessage string) (string, error)
}
