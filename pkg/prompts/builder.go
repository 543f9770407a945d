package prompts

import (
	"fmt"
	"strings"
)

// DefaultHistoryLimit caps how many characters of interaction history
// are included in a prompt. The full history is still persisted; only
// the prompt context is windowed, keeping prompt size bounded as
// memory grows.
const DefaultHistoryLimit = 4000

// Builder constructs the generation instruction for one NPC invocation
// using a fluent interface.
type Builder struct {
	name         string
	personality  string
	history      string
	historyLimit int
	utterance    string
}

// New creates a prompt builder with default settings.
func New() *Builder {
	return &Builder{
		historyLimit: DefaultHistoryLimit,
	}
}

// WithNpc sets the NPC's name and personality. An empty personality
// falls back to a generic description.
func (b *Builder) WithNpc(name, personality string) *Builder {
	b.name = name
	b.personality = personality
	return b
}

// WithHistory sets the NPC's full interaction history blob.
func (b *Builder) WithHistory(history string) *Builder {
	b.history = history
	return b
}

// WithHistoryLimit overrides the context window size in characters.
// A limit <= 0 includes the full history.
func (b *Builder) WithHistoryLimit(limit int) *Builder {
	b.historyLimit = limit
	return b
}

// WithUtterance sets the user's new message to the NPC. An empty
// utterance is valid; the NPC is simply hailed.
func (b *Builder) WithUtterance(utterance string) *Builder {
	b.utterance = utterance
	return b
}

// Build assembles the final instruction block.
func (b *Builder) Build() (string, error) {
	if b.name == "" {
		return "", fmt.Errorf("npc name is required")
	}

	personality := b.personality
	if personality == "" {
		personality = FallbackPersonality
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(roleFraming, b.name, personality))

	if history := windowHistory(b.history, b.historyLimit); history != "" {
		sb.WriteString("\n\n")
		sb.WriteString(historyLabel)
		sb.WriteString(history)
	}

	sb.WriteString("\n\nThe user now says to you: ")
	if b.utterance == "" {
		sb.WriteString("(nothing — they simply hailed you)")
	} else {
		sb.WriteString(b.utterance)
	}

	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf(closingDirective, b.name))

	return sb.String(), nil
}

// windowHistory returns the most recent portion of the history blob,
// at most limit characters. When the cut lands mid-exchange, the
// window advances to the next "User: " boundary so the model never
// sees half a block.
func windowHistory(history string, limit int) string {
	if limit <= 0 || len(history) <= limit {
		return history
	}

	tail := history[len(history)-limit:]
	if idx := strings.Index(tail, "User: "); idx > 0 {
		tail = tail[idx:]
	}
	return tail
}

// BuildInstruction is a convenience wrapper for the common case.
func BuildInstruction(name, personality, history, utterance string) (string, error) {
	return New().
		WithNpc(name, personality).
		WithHistory(history).
		WithUtterance(utterance).
		Build()
}
