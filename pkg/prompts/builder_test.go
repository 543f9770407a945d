package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuilder_Build(t *testing.T) {
	instruction, err := New().
		WithNpc("Greedo", "A jumpy Rodian bounty hunter, always looking for a score.").
		WithHistory("User: seen Han?\nGreedo: Not yet. But soon.\n\n").
		WithUtterance("where are you?").
		Build()

	assert.NoError(t, err)
	assert.Contains(t, instruction, "roleplaying as Greedo")
	assert.Contains(t, instruction, "A jumpy Rodian bounty hunter")
	assert.Contains(t, instruction, "do not repeat any of it verbatim")
	assert.Contains(t, instruction, "Greedo: Not yet. But soon.")
	assert.Contains(t, instruction, "The user now says to you: where are you?")
	assert.Contains(t, instruction, "Reply in character as Greedo.")
}

func TestBuilder_FallbackPersonality(t *testing.T) {
	instruction, err := New().
		WithNpc("Stranger", "").
		WithUtterance("who are you?").
		Build()

	assert.NoError(t, err)
	assert.Contains(t, instruction, FallbackPersonality)
}

func TestBuilder_EmptyHistoryOmitsContextSection(t *testing.T) {
	instruction, err := New().
		WithNpc("Greedo", "Jumpy.").
		WithUtterance("hi").
		Build()

	assert.NoError(t, err)
	assert.NotContains(t, instruction, historyLabel)
}

func TestBuilder_EmptyUtterance(t *testing.T) {
	instruction, err := New().
		WithNpc("Greedo", "Jumpy.").
		Build()

	assert.NoError(t, err)
	assert.Contains(t, instruction, "simply hailed")
}

func TestBuilder_MissingName(t *testing.T) {
	_, err := New().WithUtterance("hello?").Build()
	assert.Error(t, err)
}

func TestBuilder_HistoryWindow(t *testing.T) {
	// Many exchanges; only the most recent should survive the window.
	var sb strings.Builder
	for i := 0; i < 200; i++ {
		sb.WriteString("User: ping\nGreedo: pong\n\n")
	}
	sb.WriteString("User: final question\nGreedo: final answer\n\n")

	instruction, err := New().
		WithNpc("Greedo", "Jumpy.").
		WithHistory(sb.String()).
		WithHistoryLimit(500).
		WithUtterance("hi").
		Build()

	assert.NoError(t, err)
	assert.Contains(t, instruction, "final answer")

	// The windowed section must be bounded and aligned to an exchange.
	start := strings.Index(instruction, historyLabel)
	if assert.GreaterOrEqual(t, start, 0) {
		rest := instruction[start+len(historyLabel):]
		assert.True(t, strings.HasPrefix(rest, "User: "), "window should start at an exchange boundary")
	}
}

func TestWindowHistory_NoLimit(t *testing.T) {
	h := "User: a\nX: b\n\n"
	assert.Equal(t, h, windowHistory(h, 0))
	assert.Equal(t, h, windowHistory(h, len(h)))
}
