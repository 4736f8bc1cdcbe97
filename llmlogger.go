package videocourse

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// LLMLogger handles logging of all LLM interactions for one pipeline run.
// A nil *LLMLogger discards everything.
type LLMLogger struct {
	file    *os.File
	mu      sync.Mutex
	runID   string
	videoID string
}

// NewLLMLogger creates a log file for a single modules or quiz computation
func NewLLMLogger(dir, videoID, stage string) (*LLMLogger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	runID := uuid.NewString()
	filename := filepath.Join(dir, fmt.Sprintf("%s-%s.log", videoID, runID))
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	logger := &LLMLogger{
		file:    file,
		runID:   runID,
		videoID: videoID,
	}

	logger.Logf("=== Course Generation Log ===\n")
	logger.Logf("Run ID: %s\n", runID)
	logger.Logf("Video ID: %s\n", videoID)
	logger.Logf("Stage: %s\n", stage)
	logger.Logf("Started: %s\n", time.Now().Format(time.RFC3339))
	logger.Logf("========================\n\n")

	return logger, nil
}

// Path returns the file the logger writes to
func (ll *LLMLogger) Path() string {
	if ll == nil || ll.file == nil {
		return ""
	}
	return ll.file.Name()
}

// Logf writes a formatted log entry with timestamp
func (ll *LLMLogger) Logf(format string, args ...interface{}) {
	if ll == nil {
		return
	}
	ll.mu.Lock()
	defer ll.mu.Unlock()
	ll.writef(format, args...)
}

func (ll *LLMLogger) writef(format string, args ...interface{}) {
	if ll.file == nil {
		return
	}
	timestamp := time.Now().Format("15:04:05.000")
	message := fmt.Sprintf(format, args...)
	fmt.Fprintf(ll.file, "[%s] %s", timestamp, message)
	ll.file.Sync()
}

// LogLLMRequest logs an LLM request
func (ll *LLMLogger) LogLLMRequest(stage, model, prompt string) {
	ll.Logf("=== LLM REQUEST (%s, %s) ===\n", stage, model)
	ll.Logf("Prompt:\n%s\n", prompt)
	ll.Logf("=====================\n\n")
}

// LogLLMResponse logs an LLM response
func (ll *LLMLogger) LogLLMResponse(stage, response string) {
	ll.Logf("=== LLM RESPONSE (%s) ===\n", stage)
	ll.Logf("Response:\n%s\n", response)
	ll.Logf("======================\n\n")
}

// LogLLMError logs a failed LLM call
func (ll *LLMLogger) LogLLMError(stage string, err error) {
	ll.Logf("=== LLM ERROR (%s) ===\n%v\n\n", stage, err)
}

// LogFallback records that a stage degraded to its fallback value
func (ll *LLMLogger) LogFallback(stage, reason string) {
	ll.Logf("%s: FALLBACK - %s\n", stage, reason)
}

// LogQuestionResult logs the review verdict on one generated question
func (ll *LLMLogger) LogQuestionResult(index int, action, reason string) {
	ll.Logf("Question %d: %s - %s\n", index, action, reason)
}

// LogModuleResult logs how many questions a module ended up with
func (ll *LLMLogger) LogModuleResult(moduleTitle string, numQuestions int) {
	ll.Logf("Module %q: %d questions\n", moduleTitle, numQuestions)
}

// Close closes the log file
func (ll *LLMLogger) Close() error {
	if ll == nil {
		return nil
	}
	ll.mu.Lock()
	defer ll.mu.Unlock()

	if ll.file != nil {
		ll.writef("=== Course Generation Complete ===\n")
		ll.writef("Completed: %s\n", time.Now().Format(time.RFC3339))
		ll.writef("=============================\n")
		err := ll.file.Close()
		ll.file = nil
		return err
	}
	return nil
}
