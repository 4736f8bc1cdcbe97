package videocourse

import (
	"fmt"
	"strings"
)

// ValidationAction is the verdict on a generated question
type ValidationAction string

const (
	ActionAccept ValidationAction = "accept"
	// ActionFlag keeps the question but records a likely quality problem
	ActionFlag   ValidationAction = "flag"
	ActionReject ValidationAction = "reject"
)

// ValidationResult is the outcome of checking one question
type ValidationResult struct {
	Action ValidationAction
	Reason string
}

// minGiveawayLen keeps short answers such as "Yes" or "Go" from matching
// incidental words in the question text
const minGiveawayLen = 4

// QuestionChecker rejects questions that break the four-option shape and
// flags the structural problems the model is prone to: the correct answer
// spelled out in the question, or options that are empty or repeat each
// other. Flagged questions are kept.
type QuestionChecker struct{}

// CheckQuestion validates a single question and returns the validation result
func (QuestionChecker) CheckQuestion(question QuizQuestion) ValidationResult {
	if err := question.Validate(); err != nil {
		return ValidationResult{Action: ActionReject, Reason: err.Error()}
	}

	answer := normalizeQuestionText(question.Options[question.CorrectAnswer])
	if len(answer) >= minGiveawayLen && strings.Contains(normalizeQuestionText(question.Question), answer) {
		return ValidationResult{
			Action: ActionFlag,
			Reason: "correct answer appears in the question text",
		}
	}

	seen := make(map[string]string, len(question.Options))
	for _, label := range OptionLabels {
		option := normalizeQuestionText(question.Options[label])
		if option == "" {
			return ValidationResult{Action: ActionFlag, Reason: fmt.Sprintf("option %s is empty", label)}
		}
		if other, ok := seen[option]; ok {
			return ValidationResult{
				Action: ActionFlag,
				Reason: fmt.Sprintf("options %s and %s are identical", other, label),
			}
		}
		seen[option] = label
	}

	return ValidationResult{Action: ActionAccept, Reason: "passed all checks"}
}

// normalizeQuestionText lowercases s and collapses whitespace
func normalizeQuestionText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
