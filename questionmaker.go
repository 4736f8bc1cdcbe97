package videocourse

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// DefaultQuestionsPerModule is how many questions each module quiz asks for
const DefaultQuestionsPerModule = 2

// fallbackSubjectChars is how much of the source text names a fallback question's subject
const fallbackSubjectChars = 15

// QuestionMaker generates multiple choice questions from module text
type QuestionMaker struct {
	completer Completer
	model     string
	sampling  SamplingConfig
}

// NewQuestionMaker creates a question maker for the given model
func NewQuestionMaker(completer Completer, model string) *QuestionMaker {
	if model == "" {
		model = DefaultQuizModel
	}
	return &QuestionMaker{
		completer: completer,
		model:     model,
		sampling:  DefaultSampling(),
	}
}

// GenerateQuestions asks the model for count questions about text. It never
// returns an error: a failed call yields no questions, and a reply without a
// JSON block yields a single fallback question.
func (qm *QuestionMaker) GenerateQuestions(ctx context.Context, text string, difficulty Difficulty, count int, logger *LLMLogger) []QuizQuestion {
	if text == "" || count < 1 {
		return []QuizQuestion{}
	}

	prompt := qm.buildPrompt(text, difficulty, count)
	logger.LogLLMRequest("QuestionMaker", qm.model, prompt)
	VerboseLog("Generating %d %s questions from %d characters", count, difficulty, len(text))

	content, err := qm.completer.Complete(ctx, CompletionRequest{
		Model:    qm.model,
		Prompt:   prompt,
		Sampling: qm.sampling,
	})
	if err != nil {
		logger.LogLLMError("QuestionMaker", err)
		VerboseLog("Error generating questions: %v", err)
		return []QuizQuestion{}
	}
	logger.LogLLMResponse("QuestionMaker", content)

	block, ok := extractJSONBlock(content)
	if !ok {
		logger.LogFallback("QuestionMaker", "no JSON block in response")
		VerboseLog("No JSON block found in the response")
		return []QuizQuestion{fallbackQuestion(text)}
	}

	questions, err := parseQuestions(block)
	if err != nil {
		logger.LogFallback("QuestionMaker", err.Error())
		VerboseLog("Failed to parse questions: %v", err)
		return []QuizQuestion{}
	}

	questions = reviewQuestions(questions, logger)
	VerboseLog("Successfully generated %d questions", len(questions))
	return questions
}

func (qm *QuestionMaker) buildPrompt(text string, difficulty Difficulty, count int) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Create exactly %d %s multiple-choice questions in JSON format from the text below.\n\n", count, difficulty))

	sb.WriteString("Format the questions as a JSON array where each element has:\n")
	sb.WriteString("- \"question\" (string)\n")
	sb.WriteString("- \"options\" (object with exactly the keys A, B, C and D)\n")
	sb.WriteString("- \"correct_answer\" (one of A, B, C, D)\n")
	sb.WriteString("- \"explanation\" (string explaining why the answer is correct)\n\n")

	sb.WriteString("Wrap the array in a ```json code block.\n\n")

	sb.WriteString("Example Response:\n")
	sb.WriteString("```json\n")
	sb.WriteString("[\n")
	sb.WriteString("  {\n")
	sb.WriteString("    \"question\": \"What is Python's main feature?\",\n")
	sb.WriteString("    \"options\": {\"A\": \"Static typing\", \"B\": \"Dynamic typing\", \"C\": \"Compiled\", \"D\": \"Low-level\"},\n")
	sb.WriteString("    \"correct_answer\": \"B\",\n")
	sb.WriteString("    \"explanation\": \"Python uses dynamic typing by default\"\n")
	sb.WriteString("  }\n")
	sb.WriteString("]\n")
	sb.WriteString("```\n\n")

	sb.WriteString("Text: ")
	sb.WriteString(text)
	sb.WriteString("\n")

	return sb.String()
}

var jsonBlockPattern = regexp.MustCompile("(?s)```json\\s*\\n(.*?)\\n\\s*```")

// extractJSONBlock returns the body of the first ```json fenced block
func extractJSONBlock(content string) (string, bool) {
	match := jsonBlockPattern.FindStringSubmatch(content)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// parseQuestions decodes a question array. A lone question object and a
// {"questions": [...]} wrapper are accepted too.
func parseQuestions(block string) ([]QuizQuestion, error) {
	block = strings.TrimSpace(block)

	var raw []QuizQuestion
	if err := json.Unmarshal([]byte(block), &raw); err != nil {
		var wrapper struct {
			Questions []QuizQuestion `json:"questions"`
		}
		var single QuizQuestion
		switch {
		case json.Unmarshal([]byte(block), &wrapper) == nil && len(wrapper.Questions) > 0:
			raw = wrapper.Questions
		case json.Unmarshal([]byte(block), &single) == nil && single.Question != "":
			raw = []QuizQuestion{single}
		default:
			return nil, fmt.Errorf("failed to parse questions json: %w", err)
		}
	}

	for i := range raw {
		raw[i].CorrectAnswer = strings.ToUpper(strings.TrimSpace(raw[i].CorrectAnswer))
	}
	return raw, nil
}

// fallbackQuestion is the placeholder returned when the model answered but
// produced nothing parseable
func fallbackQuestion(text string) QuizQuestion {
	subject := []rune(text)
	if len(subject) > fallbackSubjectChars {
		subject = subject[:fallbackSubjectChars]
	}
	return QuizQuestion{
		Question: "What is the main focus of " + string(subject) + "?",
		Options: map[string]string{
			"A": "Option A",
			"B": "Option B",
			"C": "Option C",
			"D": "Option D",
		},
		CorrectAnswer: "A",
		Explanation:   "Fallback question due to generation error.",
	}
}
