package videocourse

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestFallbackTitle(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"This is a test sentence.", "This is a test sentence."},
		{"  padded text  ", "padded text"},
		{
			"one two three four five six seven eight nine ten eleven twelve",
			"one two three four five six seven eight nine ten...",
		},
		{"", ""},
	}

	for _, tt := range tests {
		if got := FallbackTitle(tt.text); got != tt.want {
			t.Errorf("FallbackTitle(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		completion string
		want       string
	}{
		{"introduction to go", "Introduction To Go"},
		{"\"Debugging Basics.\"", "Debugging Basics"},
		{"Title: building web servers\nThis title covers...", "Building Web Servers"},
		{"**Profiling Programs!**", "Profiling Programs"},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := normalizeTitle(tt.completion); got != tt.want {
			t.Errorf("normalizeTitle(%q) = %q, want %q", tt.completion, got, tt.want)
		}
	}
}

func TestGenerateTitle(t *testing.T) {
	completer := staticCompleter("understanding breakpoints.", nil)
	tg := NewTitleGenerator(completer, "")

	title := tg.GenerateTitle(context.Background(), "Breakpoints pause execution.", nil)

	if title != "Understanding Breakpoints" {
		t.Errorf("Expected 'Understanding Breakpoints', got %q", title)
	}
	if completer.callsFor(DefaultTitleModel) != 1 {
		t.Errorf("Expected one call to %s", DefaultTitleModel)
	}
	if !strings.Contains(completer.lastPrompt(), "Breakpoints pause execution.") {
		t.Error("Expected the module text in the prompt")
	}
}

func TestGenerateTitleFallsBack(t *testing.T) {
	tests := []struct {
		name      string
		completer *fakeCompleter
	}{
		{"call fails", staticCompleter("", errors.New("service unavailable"))},
		{"empty completion", staticCompleter("  \n", nil)},
	}

	text := "This is a test sentence."
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tg := NewTitleGenerator(tt.completer, "")
			if got := tg.GenerateTitle(context.Background(), text, nil); got != text {
				t.Errorf("Expected fallback %q, got %q", text, got)
			}
		})
	}
}
