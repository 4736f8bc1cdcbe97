package videocourse

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Queues used by the prewarm worker
const (
	PrewarmCommandQueue = "course.prewarm.cmd"
	PrewarmResultQueue  = "course.prewarm.result"
)

// Prewarm job statuses
const (
	PrewarmStatusSuccess = "SUCCESS"
	PrewarmStatusError   = "ERROR"
)

// MessagePublisher sends a message body to a named queue
type MessagePublisher interface {
	Publish(ctx context.Context, queue string, body []byte) error
}

// PrewarmCommand asks the worker to build the modules of a video and the
// quizzes of every module at the listed difficulties
type PrewarmCommand struct {
	JobID        string       `json:"job_id,omitempty"`
	VideoRef     string       `json:"video_ref"`
	Difficulties []Difficulty `json:"difficulties"`
}

// PrewarmResult is published once a prewarm command has been handled
type PrewarmResult struct {
	JobID   string `json:"job_id"`
	VideoID string `json:"video_id,omitempty"`
	Status  string `json:"status"`
	Modules int    `json:"modules"`
	Error   string `json:"error,omitempty"`
}

// PrewarmProcessor fills the caches of a pipeline ahead of user requests
type PrewarmProcessor struct {
	pipeline  Pipeline
	publisher MessagePublisher
}

// NewPrewarmProcessor creates a processor that reports results through publisher
func NewPrewarmProcessor(pipeline Pipeline, publisher MessagePublisher) *PrewarmProcessor {
	return &PrewarmProcessor{pipeline: pipeline, publisher: publisher}
}

// ProcessMessage handles one encoded PrewarmCommand. The returned error is
// only non-nil when the result could not be published; job failures are
// reported in the published result.
func (p *PrewarmProcessor) ProcessMessage(ctx context.Context, body []byte) error {
	var cmd PrewarmCommand
	if err := json.Unmarshal(body, &cmd); err != nil {
		logger.Error("invalid prewarm command", "error", err)
		return p.publish(ctx, PrewarmResult{
			JobID:  uuid.NewString(),
			Status: PrewarmStatusError,
			Error:  fmt.Sprintf("invalid JSON: %v", err),
		})
	}
	if cmd.JobID == "" {
		cmd.JobID = uuid.NewString()
	}

	result := p.run(ctx, cmd)
	return p.publish(ctx, result)
}

func (p *PrewarmProcessor) run(ctx context.Context, cmd PrewarmCommand) PrewarmResult {
	result := PrewarmResult{JobID: cmd.JobID, Status: PrewarmStatusError}

	videoID, ok := ExtractVideoID(cmd.VideoRef)
	if !ok {
		result.Error = fmt.Sprintf("%v: %q", ErrInvalidVideoReference, cmd.VideoRef)
		return result
	}
	result.VideoID = videoID

	log := logger.With("job_id", cmd.JobID, "video_id", videoID)
	log.Info("prewarming course")

	modules, err := p.pipeline.GetModules(ctx, cmd.VideoRef)
	if err != nil {
		log.Error("failed to build modules", "error", err)
		result.Error = err.Error()
		return result
	}
	result.Modules = len(modules)

	// Any quiz miss generates every module's quiz at that difficulty, so one
	// request per difficulty warms the whole video.
	title := firstQuizzableTitle(modules)
	if title != "" {
		difficulties := cmd.Difficulties
		if len(difficulties) == 0 {
			difficulties = []Difficulty{DifficultyMedium}
		}
		for _, difficulty := range difficulties {
			if _, err := p.pipeline.GetQuiz(ctx, videoID, title, difficulty); err != nil {
				log.Error("failed to build quizzes", "difficulty", difficulty, "error", err)
				result.Error = err.Error()
				return result
			}
			log.Debug("quizzes ready", "difficulty", difficulty)
		}
	}

	result.Status = PrewarmStatusSuccess
	log.Info("prewarm finished", "modules", len(modules))
	return result
}

func firstQuizzableTitle(modules []Module) string {
	for _, m := range modules {
		if m.Title != "" && m.QuizText() != "" {
			return m.Title
		}
	}
	return ""
}

func (p *PrewarmProcessor) publish(ctx context.Context, result PrewarmResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode prewarm result: %w", err)
	}
	if err := p.publisher.Publish(ctx, PrewarmResultQueue, payload); err != nil {
		return fmt.Errorf("failed to publish prewarm result: %w", err)
	}
	logger.Debug("published prewarm result", "job_id", result.JobID, "status", result.Status)
	return nil
}
