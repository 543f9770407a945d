package services

import "context"

// LLMService generates NPC dialogue from a single prepared instruction.
// Implementations return an error for transport or API failures; an
// empty reply with a nil error means the provider produced no content.
type LLMService interface {
	// InitModel prepares the named model for use. Hosted providers
	// treat this as a no-op.
	InitModel(ctx context.Context, modelName string) error

	// Generate produces a reply for the given instruction.
	Generate(ctx context.Context, instruction string) (string, error)
}
