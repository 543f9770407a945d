// Package styletag interprets the per-line formatting prefix used in
// room messages: a line beginning with `[` followed by one or more of
// the letters B, C, I, U (any case) and `]` renders the remainder of
// that line bold, centered, italic, and/or underlined. The prefix is
// stripped before display. Parsing is pure and stateless; actual
// rendering is left to the caller.
package styletag

import (
	"regexp"
	"strings"
)

// NonBreakingSpace is substituted for a line that becomes empty after
// its prefix is stripped, preserving vertical spacing in the rendered
// log.
const NonBreakingSpace = " "

var tagPattern = regexp.MustCompile(`^\[([BCIUbciu]+)\]`)

// Style holds the formatting flags for a single line.
type Style struct {
	Bold      bool
	Center    bool
	Italic    bool
	Underline bool
}

// Line is one display line of a message: the text with any style
// prefix stripped, plus the decoded flags.
type Line struct {
	Text  string
	Style Style
}

// ParseLine decodes one raw line. Lines without a style prefix pass
// through unchanged. An empty result is replaced with a non-breaking
// space.
func ParseLine(raw string) Line {
	line := Line{Text: raw}

	if m := tagPattern.FindStringSubmatch(raw); m != nil {
		for _, c := range strings.ToUpper(m[1]) {
			switch c {
			case 'B':
				line.Style.Bold = true
			case 'C':
				line.Style.Center = true
			case 'I':
				line.Style.Italic = true
			case 'U':
				line.Style.Underline = true
			}
		}
		line.Text = raw[len(m[0]):]
	}

	if line.Text == "" {
		line.Text = NonBreakingSpace
	}

	return line
}

// ParseMessage splits message text into lines and decodes each one.
func ParseMessage(text string) []Line {
	raw := strings.Split(text, "\n")
	lines := make([]Line, 0, len(raw))
	for _, r := range raw {
		lines = append(lines, ParseLine(r))
	}
	return lines
}
