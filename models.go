package videocourse

import (
	"errors"
	"fmt"
	"strings"
)

// TranscriptSegment is one timed span of transcribed speech
type TranscriptSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"` // seconds
	End   float64 `json:"end"`   // seconds
}

// VideoInfo is what the transcript provider returns for a video
type VideoInfo struct {
	Title      string              `json:"title"`
	EmbedURL   string              `json:"embed_url"`
	Duration   int                 `json:"duration"` // seconds
	Transcript []TranscriptSegment `json:"transcript"`
}

// Module is a contiguous, time-bounded slice of a transcript
type Module struct {
	Title     string              `json:"title"`
	Content   []TranscriptSegment `json:"content"`
	StartTime float64             `json:"start_time"`
	EndTime   float64             `json:"end_time"`
}

// Text returns the module's segment texts joined by single spaces
func (m Module) Text() string {
	parts := make([]string, 0, len(m.Content))
	for _, seg := range m.Content {
		parts = append(parts, seg.Text)
	}
	return strings.Join(parts, " ")
}

// QuizText is the source material handed to the quiz generator: the title
// followed by every segment's text.
func (m Module) QuizText() string {
	parts := make([]string, 0, len(m.Content)+1)
	if m.Title != "" {
		parts = append(parts, m.Title)
	}
	for _, seg := range m.Content {
		parts = append(parts, seg.Text)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// OptionLabels are the choice labels every question carries, in display order
var OptionLabels = []string{"A", "B", "C", "D"}

// QuizQuestion is a single multiple choice question keyed by option label
type QuizQuestion struct {
	Question      string            `json:"question"`
	Options       map[string]string `json:"options"`
	CorrectAnswer string            `json:"correct_answer"`
	Explanation   string            `json:"explanation"`
}

// Validate checks that the question has exactly the labels A-D and that the
// correct answer is one of them.
func (q QuizQuestion) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return fmt.Errorf("question text is empty")
	}
	if len(q.Options) != len(OptionLabels) {
		return fmt.Errorf("expected %d options, got %d", len(OptionLabels), len(q.Options))
	}
	for _, label := range OptionLabels {
		if _, ok := q.Options[label]; !ok {
			return fmt.Errorf("missing option %s", label)
		}
	}
	if _, ok := q.Options[q.CorrectAnswer]; !ok {
		return fmt.Errorf("correct answer %q is not an option", q.CorrectAnswer)
	}
	return nil
}

// Difficulty is the requested level of a generated quiz
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty maps user input onto a Difficulty. An empty string selects
// medium.
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(strings.ToLower(strings.TrimSpace(s))) {
	case "", DifficultyMedium:
		return DifficultyMedium, nil
	case DifficultyEasy:
		return DifficultyEasy, nil
	case DifficultyHard:
		return DifficultyHard, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDifficulty, s)
}

var (
	// ErrInvalidVideoReference is returned when no video id can be found in a reference
	ErrInvalidVideoReference = errors.New("invalid video reference")
	// ErrEmptyModuleTitle is returned by GetQuiz when no module title is given
	ErrEmptyModuleTitle = errors.New("module title is required")
	// ErrInvalidDifficulty is returned for difficulties other than easy, medium and hard
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	// ErrNoModules means quizzes were requested before modules were ever built for the video
	ErrNoModules = errors.New("no modules found in cache")
	// ErrModuleNotFound means no cached module has the requested title
	ErrModuleNotFound = errors.New("module not found")
)
