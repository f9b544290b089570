// Package advice turns a finished analysis into short narrative
// coaching text via an external language model.
package advice

import "context"

// TextGenerator produces a completion from a system and user prompt.
type TextGenerator interface {
	GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
