package videocourse

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
)

const moduleText = "Welcome to the course. Today we look at debuggers."

func TestGenerateQuestions(t *testing.T) {
	completer := staticCompleter(validQuizResponse, nil)
	qm := NewQuestionMaker(completer, "")

	questions := qm.GenerateQuestions(context.Background(), moduleText, DifficultyHard, 2, nil)

	if len(questions) != 2 {
		t.Fatalf("Expected 2 questions, got %d", len(questions))
	}
	if questions[0].CorrectAnswer != "B" {
		t.Errorf("Expected correct answer normalized to B, got %q", questions[0].CorrectAnswer)
	}
	if questions[1].Options["A"] != "To find slow code" {
		t.Errorf("Unexpected option A: %q", questions[1].Options["A"])
	}

	if completer.callsFor(DefaultQuizModel) != 1 {
		t.Errorf("Expected one call to %s", DefaultQuizModel)
	}
	prompt := completer.lastPrompt()
	for _, want := range []string{"exactly 2 hard", moduleText, "```json"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}
}

func TestGenerateQuestionsNoJSONBlock(t *testing.T) {
	qm := NewQuestionMaker(staticCompleter("I could not produce a quiz for this text.", nil), "")

	questions := qm.GenerateQuestions(context.Background(), moduleText, DifficultyMedium, 2, nil)

	if len(questions) != 1 {
		t.Fatalf("Expected a single fallback question, got %d", len(questions))
	}
	q := questions[0]
	if q.CorrectAnswer != "A" {
		t.Errorf("Expected fallback answer A, got %q", q.CorrectAnswer)
	}
	for _, label := range OptionLabels {
		if _, ok := q.Options[label]; !ok {
			t.Errorf("Expected fallback option %s", label)
		}
	}
	if !strings.Contains(q.Question, "Welcome to the ") {
		t.Errorf("Expected the first 15 characters of the text in %q", q.Question)
	}
	if strings.Contains(q.Question, "course") {
		t.Errorf("Expected the subject truncated to 15 characters, got %q", q.Question)
	}
}

func TestGenerateQuestionsCallFails(t *testing.T) {
	qm := NewQuestionMaker(staticCompleter("", errors.New("rate limited")), "")

	questions := qm.GenerateQuestions(context.Background(), moduleText, DifficultyEasy, 2, nil)

	if questions == nil || len(questions) != 0 {
		t.Fatalf("Expected an empty question list, got %v", questions)
	}
}

func TestGenerateQuestionsMalformedJSON(t *testing.T) {
	qm := NewQuestionMaker(staticCompleter("```json\n[{\"question\": \"broken\",\n```", nil), "")

	questions := qm.GenerateQuestions(context.Background(), moduleText, DifficultyEasy, 2, nil)

	if len(questions) != 0 {
		t.Fatalf("Expected no questions, got %d", len(questions))
	}
}

func TestGenerateQuestionsEmptyText(t *testing.T) {
	completer := staticCompleter(validQuizResponse, nil)
	qm := NewQuestionMaker(completer, "")

	questions := qm.GenerateQuestions(context.Background(), "", DifficultyEasy, 2, nil)

	if len(questions) != 0 {
		t.Fatalf("Expected no questions, got %d", len(questions))
	}
	if len(completer.requests) != 0 {
		t.Errorf("Expected no model calls, got %d", len(completer.requests))
	}
}

func TestGenerateQuestionsDropsRejected(t *testing.T) {
	response := "```json\n" + `[
  {"question": "Valid question?", "options": {"A": "one", "B": "two", "C": "three", "D": "four"}, "correct_answer": "C", "explanation": "x"},
  {"question": "Missing an option?", "options": {"A": "one", "B": "two", "C": "three"}, "correct_answer": "A", "explanation": "x"},
  {"question": "Bad answer label?", "options": {"A": "one", "B": "two", "C": "three", "D": "four"}, "correct_answer": "E", "explanation": "x"},
  {"question": "Is the answer Garbage Collection here?", "options": {"A": "Garbage collection", "B": "Paging", "C": "Caching", "D": "Linking"}, "correct_answer": "A", "explanation": "x"},
  {"question": "valid   QUESTION?", "options": {"A": "five", "B": "six", "C": "seven", "D": "eight"}, "correct_answer": "D", "explanation": "x"}
]` + "\n```"
	qm := NewQuestionMaker(staticCompleter(response, nil), "")

	questions := qm.GenerateQuestions(context.Background(), moduleText, DifficultyMedium, 5, nil)

	if len(questions) != 2 {
		t.Fatalf("Expected 2 questions to survive review, got %d: %+v", len(questions), questions)
	}
	if questions[0].Question != "Valid question?" {
		t.Errorf("Unexpected first question %q", questions[0].Question)
	}
	// Naming the answer in the stem is logged, not dropped
	if questions[1].Question != "Is the answer Garbage Collection here?" {
		t.Errorf("Unexpected second question %q", questions[1].Question)
	}
}

func TestGenerateQuestionsKeepsAnswerNamedInStem(t *testing.T) {
	response := "```json\n" + `[
  {"question": "Which language mentioned in the talk, Python or Java, uses dynamic typing?", "options": {"A": "Java", "B": "Python", "C": "Both", "D": "Neither"}, "correct_answer": "B", "explanation": "Python checks types at run time."}
]` + "\n```"
	llmLogger, err := NewLLMLogger(t.TempDir(), testVideoID, "quiz")
	if err != nil {
		t.Fatalf("Failed to create LLM logger: %v", err)
	}
	qm := NewQuestionMaker(staticCompleter(response, nil), "")

	questions := qm.GenerateQuestions(context.Background(), moduleText, DifficultyMedium, 1, llmLogger)
	path := llmLogger.Path()
	llmLogger.Close()

	if len(questions) != 1 {
		t.Fatalf("Expected 1 question, got %d", len(questions))
	}
	if questions[0].CorrectAnswer != "B" {
		t.Errorf("Expected correct answer B, got %q", questions[0].CorrectAnswer)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read LLM log: %v", err)
	}
	if !strings.Contains(string(data), "correct answer appears in the question text") {
		t.Errorf("Expected the flag verdict in the LLM log, got %q", data)
	}
}

func TestParseQuestionsShapes(t *testing.T) {
	question := `{"question": "Q?", "options": {"A": "a", "B": "b", "C": "c", "D": "d"}, "correct_answer": "a", "explanation": "e"}`

	tests := []struct {
		name  string
		block string
	}{
		{"array", "[" + question + "]"},
		{"wrapper", `{"questions": [` + question + `]}`},
		{"single object", question},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			questions, err := parseQuestions(tt.block)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(questions) != 1 || questions[0].CorrectAnswer != "A" {
				t.Fatalf("Unexpected questions: %+v", questions)
			}
		})
	}
}

func TestExtractJSONBlock(t *testing.T) {
	block, ok := extractJSONBlock("before\n```json\n[1, 2]\n```\nafter\n```json\n[3]\n```")
	if !ok {
		t.Fatal("Expected a JSON block")
	}
	if block != "[1, 2]" {
		t.Errorf("Expected the first block, got %q", block)
	}

	if _, ok := extractJSONBlock("```\n[1]\n```"); ok {
		t.Error("Expected untagged fences to be ignored")
	}
}
