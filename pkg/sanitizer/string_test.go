package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "basic trim",
			input: "  hello  ",
			want:  "hello",
		},
		{
			name:  "multiple spaces",
			input: "hello    world",
			want:  "hello world",
		},
		{
			name:  "tabs and newlines",
			input: "hello\t\nworld",
			want:  "hello world",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   ",
			want:  "",
		},
		{
			name:  "preserve special characters",
			input: " Lab 3 & Robotics™ ",
			want:  "Lab 3 & Robotics™",
		},
		{
			name:  "preserve case",
			input: "  Physics LECTURE  ",
			want:  "Physics LECTURE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimAndNormalize(tt.input)
			if got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeFreeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "single line",
			input: "  projector   needed ",
			want:  "projector needed",
		},
		{
			name:  "preserve line breaks",
			input: "first line\nsecond   line",
			want:  "first line\nsecond line",
		},
		{
			name:  "windows line endings",
			input: "first\r\nsecond",
			want:  "first\nsecond",
		},
		{
			name:  "drop blank surrounding lines",
			input: "\n\n  body  \n\n",
			want:  "body",
		},
		{
			name:  "keep interior blank line",
			input: "one\n\ntwo",
			want:  "one\n\ntwo",
		},
		{
			name:  "only whitespace",
			input: " \n \t \n ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeFreeText(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeFreeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeFreeTextIdempotent(t *testing.T) {
	inputs := []string{
		"  projector   needed ",
		"first line\nsecond   line",
		"\n\n  body  \n\n",
	}

	for _, input := range inputs {
		once := NormalizeFreeText(input)
		twice := NormalizeFreeText(once)
		if once != twice {
			t.Errorf("NormalizeFreeText not idempotent for %q: first %q, second %q", input, once, twice)
		}
	}
}

func TestEscapeRegex(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain text unchanged",
			input: "Room 101",
			want:  "Room 101",
		},
		{
			name:  "dot escaped",
			input: "B.12",
			want:  `B\.12`,
		},
		{
			name:  "wildcard escaped",
			input: "lab*",
			want:  `lab\*`,
		},
		{
			name:  "parentheses escaped",
			input: "Hall (east)",
			want:  `Hall \(east\)`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EscapeRegex(tt.input)
			if got != tt.want {
				t.Errorf("EscapeRegex(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
