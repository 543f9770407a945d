package textfilter

import (
	"testing"
)

func TestProfanityFilter_FilterText(t *testing.T) {
	filter := NewProfanityFilter()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple replacement",
			input:    "What the hell is going on?",
			expected: "What the heck is going on?",
		},
		{
			name:     "multiple words",
			input:    "This is damn crap!",
			expected: "This is dang crud!",
		},
		{
			name:     "case preservation - uppercase",
			input:    "DAMN that's annoying!",
			expected: "DANG that's annoying!",
		},
		{
			name:     "case preservation - title case",
			input:    "Hell no, that's not right",
			expected: "Heck no, that's not right",
		},
		{
			name:     "no match inside longer words",
			input:    "I love classical music",
			expected: "I love classical music",
		},
		{
			name:     "plural forms",
			input:    "There are too many assholes and bastards here!",
			expected: "There are too many jerks and jerks here!",
		},
		{
			name:     "no profanity",
			input:    "This is a perfectly clean sentence.",
			expected: "This is a perfectly clean sentence.",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "with punctuation",
			input:    "What the hell?! That's damn crazy.",
			expected: "What the heck?! That's dang crazy.",
		},
		{
			name:     "mixed case",
			input:    "HeLl yeah, that's DaMn good!",
			expected: "HeCk yeah, that's DaNg good!",
		},
		{
			name:     "trailing s inside longer words does not match",
			input:    "I need to process this data",
			expected: "I need to process this data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := filter.FilterText(tt.input)
			if result != tt.expected {
				t.Errorf("FilterText() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestProfanityFilter_ContainsProfanity(t *testing.T) {
	filter := NewProfanityFilter()

	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{
			name:     "contains profanity",
			input:    "What the hell is this?",
			expected: true,
		},
		{
			name:     "no profanity",
			input:    "This is a clean sentence",
			expected: false,
		},
		{
			name:     "partial word does not trigger",
			input:    "I love classical music",
			expected: false,
		},
		{
			name:     "case insensitive",
			input:    "HELL no!",
			expected: true,
		},
		{
			name:     "plural form",
			input:    "There are multiple hells on earth",
			expected: true,
		},
		{
			name:     "empty string",
			input:    "",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := filter.ContainsProfanity(tt.input)
			if result != tt.expected {
				t.Errorf("ContainsProfanity() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestShouldFilterContent(t *testing.T) {
	tests := []struct {
		rating   string
		expected bool
	}{
		{"G", true},
		{"PG", true},
		{"PG13", true},
		{"PG-13", true},
		{"pg", true},
		{" PG13 ", true},
		{"R", false},
		{"NC-17", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.rating, func(t *testing.T) {
			result := ShouldFilterContent(tt.rating)
			if result != tt.expected {
				t.Errorf("ShouldFilterContent(%q) = %v, want %v", tt.rating, result, tt.expected)
			}
		})
	}
}

func TestProfanityFilter_NpcReply(t *testing.T) {
	filter := NewProfanityFilter()

	reply := "That bounty was damn hard! What the hells were the Hutts thinking? Too many assholes in this cantina."
	filtered := filter.FilterText(reply)
	expected := "That bounty was dang hard! What the hecks were the Hutts thinking? Too many jerks in this cantina."

	if filtered != expected {
		t.Errorf("FilterText() = %q, want %q", filtered, expected)
	}

	if !filter.ContainsProfanity(reply) {
		t.Error("original reply should contain profanity")
	}
	if filter.ContainsProfanity(filtered) {
		t.Error("filtered reply should not contain profanity")
	}
}
