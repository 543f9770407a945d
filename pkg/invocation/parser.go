// Package invocation classifies raw chat input. A message whose prefix
// matches `@name,` is directed at a named NPC; everything else is a
// plain room message.
package invocation

import (
	"regexp"
	"strings"
)

// invocationPattern matches the message prefix only. The target name
// may contain word characters, spaces, and hyphens, and runs up to the
// first comma.
var invocationPattern = regexp.MustCompile(`^@([\w\s-]+),`)

// Invocation is a parsed NPC-directed message.
type Invocation struct {
	// Target is the NPC name between '@' and the comma, trimmed.
	Target string

	// Utterance is everything after the comma, trimmed. A bare
	// "@name," submission yields an empty utterance, which is valid.
	Utterance string
}

// Parse reports whether text is an NPC invocation and, if so, returns
// the target name and utterance. Matching is exact: no case
// normalization and no whitespace collapsing beyond a single trim.
func Parse(text string) (Invocation, bool) {
	m := invocationPattern.FindStringSubmatch(text)
	if m == nil {
		return Invocation{}, false
	}

	return Invocation{
		Target:    strings.TrimSpace(m[1]),
		Utterance: strings.TrimSpace(text[len(m[0]):]),
	}, true
}
