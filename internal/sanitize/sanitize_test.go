package sanitize

import (
	"strings"
	"testing"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain text untouched",
			input: "hello world",
			want:  "hello world",
		},
		{
			name:  "trims and collapses whitespace",
			input: "  hello   world!! ",
			want:  "hello world!!",
		},
		{
			name:  "strips angle brackets",
			input: "<script>alert(1)</script>",
			want:  "script alert(1) /script",
		},
		{
			name:  "strips backticks dollars and backslashes",
			input: "`rm -rf` $HOME \\x41",
			want:  "rm -rf HOME x41",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
		{
			name:  "whitespace only",
			input: " \t\n ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clean(tt.input)
			if got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanCapsLength(t *testing.T) {
	long := strings.Repeat("a", 2*MaxMessageLength)
	got := Clean(long)
	if len([]rune(got)) != MaxMessageLength {
		t.Errorf("expected %d runes, got %d", MaxMessageLength, len([]rune(got)))
	}
}

func TestCleanNeverEmitsUnsafeChars(t *testing.T) {
	inputs := []string{
		"a<b>c",
		"``````",
		"$$$ money $$$",
		"C:\\Users\\chaitu",
		strings.Repeat("<>`$\\", 500),
	}

	for _, input := range inputs {
		got := Clean(input)
		if strings.ContainsAny(got, "<>`$\\") {
			t.Errorf("Clean(%q) left unsafe characters: %q", input, got)
		}
		if len([]rune(got)) > MaxMessageLength {
			t.Errorf("Clean(%q) exceeded max length: %d", input, len([]rune(got)))
		}
	}
}

func TestCleanIdempotent(t *testing.T) {
	inputs := []string{
		"hello world",
		"  spaced   out  ",
		"mixed <tags> and `ticks`",
	}

	for _, input := range inputs {
		once := Clean(input)
		twice := Clean(once)
		if once != twice {
			t.Errorf("Clean not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}
