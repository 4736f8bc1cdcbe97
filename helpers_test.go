package videocourse

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
)

// fakeCompleter answers prompts through respond and records every request
type fakeCompleter struct {
	mu       sync.Mutex
	requests []CompletionRequest
	respond  func(req CompletionRequest) (string, error)
}

func (f *fakeCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return f.respond(req)
}

func (f *fakeCompleter) callsFor(model string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, req := range f.requests {
		if req.Model == model {
			n++
		}
	}
	return n
}

func (f *fakeCompleter) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return ""
	}
	return f.requests[len(f.requests)-1].Prompt
}

func staticCompleter(content string, err error) *fakeCompleter {
	return &fakeCompleter{
		respond: func(CompletionRequest) (string, error) {
			return content, err
		},
	}
}

// fakeProvider serves a fixed transcript and counts fetches
type fakeProvider struct {
	info  *VideoInfo
	err   error
	calls int
}

func (f *fakeProvider) Fetch(ctx context.Context, videoRef string) (*VideoInfo, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.info, nil
}

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	if err := db.CreateTables(context.Background()); err != nil {
		t.Fatalf("Failed to create tables: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

const validQuizResponse = "Here is your quiz:\n```json\n" + `[
  {
    "question": "Which tool does the speaker introduce first?",
    "options": {"A": "A compiler", "B": "A debugger", "C": "A profiler", "D": "A linter"},
    "correct_answer": "b",
    "explanation": "The debugger is shown before anything else."
  },
  {
    "question": "Why does the speaker profile the program?",
    "options": {"A": "To find slow code", "B": "To fix syntax", "C": "To format code", "D": "To add tests"},
    "correct_answer": "A",
    "explanation": "Profiling reveals where time is spent."
  }
]` + "\n```\n"

func sampleTranscript() []TranscriptSegment {
	return []TranscriptSegment{
		{Text: "Welcome to the course.", Start: 0, End: 10},
		{Text: "Today we look at debuggers.", Start: 10, End: 20},
		{Text: "Breakpoints pause execution.", Start: 20, End: 25},
		{Text: "Next we profile a program.", Start: 600, End: 610},
		{Text: "Flame graphs show hot paths.", Start: 610, End: 640},
	}
}
