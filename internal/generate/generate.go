package generate

import "context"

// Generator is the capability interface for the text-generation service.
// Implementations are stateless and safe to share across concurrent calls;
// no client-side caching of responses.
type Generator interface {
	// Generate returns the model's text for prompt. A non-nil image selects
	// the vision-capable code path on the served model.
	Generate(ctx context.Context, prompt string, image []byte) (string, error)

	// Health is a fast liveness probe with its own short timeout. It never
	// returns an error; network failure maps to false.
	Health(ctx context.Context) bool
}
