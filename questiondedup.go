package videocourse

// QuestionDedup drops questions that repeat one already accepted in the same
// quiz. Two questions are duplicates when their text matches after case and
// whitespace are normalized.
type QuestionDedup struct {
	seen map[string]int
}

// NewQuestionDedup creates a new question deduplicator
func NewQuestionDedup() *QuestionDedup {
	return &QuestionDedup{seen: make(map[string]int)}
}

// DedupResult represents the result of deduplication
type DedupResult struct {
	IsDuplicate bool
	// DuplicateOf is the index of the earlier accepted question
	DuplicateOf int
}

// CheckDuplicate reports whether question repeats an accepted one and, if
// not, accepts it
func (qd *QuestionDedup) CheckDuplicate(question QuizQuestion) DedupResult {
	key := normalizeQuestionText(question.Question)
	if i, ok := qd.seen[key]; ok {
		return DedupResult{IsDuplicate: true, DuplicateOf: i}
	}
	qd.seen[key] = len(qd.seen)
	return DedupResult{}
}

// reviewQuestions keeps the questions that satisfy the QuizQuestion
// invariant and are not duplicates, preserving order. Flagged questions are
// logged and kept.
func reviewQuestions(questions []QuizQuestion, logger *LLMLogger) []QuizQuestion {
	var checker QuestionChecker
	dedup := NewQuestionDedup()

	kept := make([]QuizQuestion, 0, len(questions))
	for i, q := range questions {
		result := checker.CheckQuestion(q)
		if result.Action != ActionReject {
			if d := dedup.CheckDuplicate(q); d.IsDuplicate {
				result = ValidationResult{Action: ActionReject, Reason: "duplicate of an earlier question"}
			}
		}

		logger.LogQuestionResult(i+1, string(result.Action), result.Reason)
		if result.Action == ActionFlag {
			VerboseLog("Keeping flagged question %d: %s", i+1, result.Reason)
		}
		if result.Action == ActionReject {
			VerboseLog("Dropping question %d: %s", i+1, result.Reason)
			continue
		}
		kept = append(kept, q)
	}
	return kept
}
