package invocation

import "testing"

func TestParse_Invocations(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		wantTarget    string
		wantUtterance string
	}{
		{
			name:          "simple invocation",
			input:         "@Greedo, hello there",
			wantTarget:    "Greedo",
			wantUtterance: "hello there",
		},
		{
			name:          "name with space",
			input:         "@Boba Fett, where are you?",
			wantTarget:    "Boba Fett",
			wantUtterance: "where are you?",
		},
		{
			name:          "name with hyphen",
			input:         "@HK-47, assessment please",
			wantTarget:    "HK-47",
			wantUtterance: "assessment please",
		},
		{
			name:          "empty utterance",
			input:         "@X,",
			wantTarget:    "X",
			wantUtterance: "",
		},
		{
			name:          "whitespace-only utterance",
			input:         "@X,   ",
			wantTarget:    "X",
			wantUtterance: "",
		},
		{
			name:          "utterance containing commas",
			input:         "@Watto, parts, ships, anything",
			wantTarget:    "Watto",
			wantUtterance: "parts, ships, anything",
		},
		{
			name:          "padded target name is trimmed",
			input:         "@ Mace Windu , speak",
			wantTarget:    "Mace Windu",
			wantUtterance: "speak",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, ok := Parse(tt.input)
			if !ok {
				t.Fatalf("expected %q to parse as an invocation", tt.input)
			}
			if inv.Target != tt.wantTarget {
				t.Errorf("target: expected %q, got %q", tt.wantTarget, inv.Target)
			}
			if inv.Utterance != tt.wantUtterance {
				t.Errorf("utterance: expected %q, got %q", tt.wantUtterance, inv.Utterance)
			}
		})
	}
}

func TestParse_PlainMessages(t *testing.T) {
	plain := []string{
		"",
		"hello everyone",
		"@",
		"@,",
		"@NoComma here",
		"say hi to @Greedo, later", // prefix only, not mid-message
		"[B]@Greedo, styled line",  // style tag before '@' breaks the prefix
		"email@example.com, sort of",
	}

	for _, input := range plain {
		if _, ok := Parse(input); ok {
			t.Errorf("expected %q to be classified as a plain message", input)
		}
	}
}

func TestParse_NoCaseNormalization(t *testing.T) {
	inv, ok := Parse("@greedo, hi")
	if !ok {
		t.Fatal("expected invocation")
	}
	if inv.Target != "greedo" {
		t.Errorf("expected target to keep its case, got %q", inv.Target)
	}
}
