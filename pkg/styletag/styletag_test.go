package styletag

import "testing"

func TestParseLine(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantText string
		want     Style
	}{
		{
			name:     "no tag passes through",
			input:    "plain line of text",
			wantText: "plain line of text",
		},
		{
			name:     "bold",
			input:    "[B]shouted words",
			wantText: "shouted words",
			want:     Style{Bold: true},
		},
		{
			name:     "combined tags",
			input:    "[BIC]dramatic entrance",
			wantText: "dramatic entrance",
			want:     Style{Bold: true, Italic: true, Center: true},
		},
		{
			name:     "lowercase tags",
			input:    "[bu]quiet aside",
			wantText: "quiet aside",
			want:     Style{Bold: true, Underline: true},
		},
		{
			name:     "empty after strip becomes nbsp",
			input:    "[C]",
			wantText: NonBreakingSpace,
			want:     Style{Center: true},
		},
		{
			name:     "empty line becomes nbsp",
			input:    "",
			wantText: NonBreakingSpace,
		},
		{
			name:     "unknown letters are not a tag",
			input:    "[BX]not a style tag",
			wantText: "[BX]not a style tag",
		},
		{
			name:     "tag mid-line is ignored",
			input:    "text [B]with brackets",
			wantText: "text [B]with brackets",
		},
		{
			name:     "bracketed empty is not a tag",
			input:    "[]nothing",
			wantText: "[]nothing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLine(tt.input)
			if got.Text != tt.wantText {
				t.Errorf("text: expected %q, got %q", tt.wantText, got.Text)
			}
			if got.Style != tt.want {
				t.Errorf("style: expected %+v, got %+v", tt.want, got.Style)
			}
		})
	}
}

func TestParseMessage(t *testing.T) {
	lines := ParseMessage("[B]Title\n\nbody text")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0].Text != "Title" || !lines[0].Style.Bold {
		t.Errorf("line 0: got %+v", lines[0])
	}
	if lines[1].Text != NonBreakingSpace {
		t.Errorf("line 1: expected nbsp, got %q", lines[1].Text)
	}
	if lines[2].Text != "body text" || lines[2].Style != (Style{}) {
		t.Errorf("line 2: got %+v", lines[2])
	}
}
