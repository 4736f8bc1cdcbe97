package videocourse

import (
	"context"
	"fmt"
)

// Pipeline is the caller-facing surface of a course
type Pipeline interface {
	GetModules(ctx context.Context, videoRef string) ([]Module, error)
	GetQuiz(ctx context.Context, videoID, moduleTitle string, difficulty Difficulty) ([]QuizQuestion, error)
}

// Course turns video transcripts into titled modules and module quizzes,
// caching the output of every stage
type Course struct {
	transcripts        TranscriptProvider
	titles             *TitleGenerator
	questions          *QuestionMaker
	caches             *Caches
	questionsPerModule int
	llmLogDir          string
}

// CourseOption customizes Course creation
type CourseOption func(*Course)

// WithQuestionsPerModule sets how many questions each module quiz asks for
func WithQuestionsPerModule(n int) CourseOption {
	return func(c *Course) {
		c.questionsPerModule = n
	}
}

// WithLLMLogDir writes a transcript of every model call made while
// computing modules or quizzes into dir
func WithLLMLogDir(dir string) CourseOption {
	return func(c *Course) {
		c.llmLogDir = dir
	}
}

// NewCourse creates a course pipeline
func NewCourse(transcripts TranscriptProvider, titles *TitleGenerator, questions *QuestionMaker, caches *Caches, options ...CourseOption) *Course {
	c := &Course{
		transcripts:        transcripts,
		titles:             titles,
		questions:          questions,
		caches:             caches,
		questionsPerModule: DefaultQuestionsPerModule,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// BuildCourse wires a Course from configuration: the cache backend, the
// transcript provider behind the transcript tier and the model clients. The
// returned store must be closed by the caller.
func BuildCourse(ctx context.Context, cfg *Config) (*Course, KV, error) {
	store, err := OpenCacheStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	caches := NewCaches(store)

	completer := NewOpenAICompleter(cfg.LLMAPIKey, cfg.LLMBaseURL)
	transcripts := NewCachedTranscriber(NewYouTubeTranscriber(cfg), caches.Transcripts)

	course := NewCourse(
		transcripts,
		NewTitleGenerator(completer, cfg.TitleModel),
		NewQuestionMaker(completer, cfg.QuizModel),
		caches,
		WithQuestionsPerModule(cfg.QuestionsPerModule),
		WithLLMLogDir(cfg.LLMLogDir),
	)
	return course, store, nil
}

// GetModules returns the modules of a video, building and caching them on
// the first request
func (c *Course) GetModules(ctx context.Context, videoRef string) ([]Module, error) {
	videoID, ok := ExtractVideoID(videoRef)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVideoReference, videoRef)
	}

	cached, ok, err := c.caches.Modules.Get(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to read module cache: %w", err)
	}
	if ok && len(cached) > 0 {
		logger.Debug("retrieved course structure from cache", "video_id", videoID)
		return cached, nil
	}

	logger.Info("generating course structure", "video_id", videoID)

	info, err := c.transcripts.Fetch(ctx, videoRef)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transcript for %s: %w", videoID, err)
	}

	llmLogger := c.newLLMLogger(videoID, "modules")
	defer llmLogger.Close()

	modules := SegmentTranscript(info.Transcript, func(text string) string {
		return c.titles.GenerateTitle(ctx, text, llmLogger)
	})

	if err := c.caches.Modules.Put(ctx, videoID, modules); err != nil {
		return nil, fmt.Errorf("failed to save modules: %w", err)
	}
	logger.Info("saved new course structure", "video_id", videoID, "modules", len(modules))

	return modules, nil
}

// GetQuiz returns the questions for one module at one difficulty. On a cache
// miss quizzes are generated for every module of the video at that
// difficulty, so later requests for sibling modules are served from cache.
func (c *Course) GetQuiz(ctx context.Context, videoID, moduleTitle string, difficulty Difficulty) ([]QuizQuestion, error) {
	if moduleTitle == "" {
		return nil, ErrEmptyModuleTitle
	}
	difficulty, err := ParseDifficulty(string(difficulty))
	if err != nil {
		return nil, err
	}
	id, ok := ExtractVideoID(videoID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVideoReference, videoID)
	}
	videoID = id

	cached, ok, err := c.caches.Quizzes.Get(ctx, QuizKey(videoID, moduleTitle, difficulty))
	if err != nil {
		return nil, fmt.Errorf("failed to read quiz cache: %w", err)
	}
	if ok && len(cached) > 0 {
		logger.Debug("retrieved quiz from cache", "video_id", videoID, "module", moduleTitle, "difficulty", difficulty)
		return cached, nil
	}

	quizzes, err := c.generateAllModuleQuizzes(ctx, videoID, difficulty)
	if err != nil {
		return nil, err
	}

	for _, quiz := range quizzes {
		if quiz.ModuleTitle == moduleTitle {
			return quiz.Questions, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrModuleNotFound, moduleTitle)
}

// ModuleQuiz pairs a module title with its generated questions
type ModuleQuiz struct {
	ModuleTitle string         `json:"module_title"`
	Questions   []QuizQuestion `json:"questions"`
}

func (c *Course) generateAllModuleQuizzes(ctx context.Context, videoID string, difficulty Difficulty) ([]ModuleQuiz, error) {
	modules, ok, err := c.caches.Modules.Get(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to read module cache: %w", err)
	}
	if !ok || len(modules) == 0 {
		return nil, fmt.Errorf("%w for video %s", ErrNoModules, videoID)
	}

	llmLogger := c.newLLMLogger(videoID, "quiz-"+string(difficulty))
	defer llmLogger.Close()

	quizzes := make([]ModuleQuiz, 0, len(modules))
	for _, module := range modules {
		text := module.QuizText()
		if text == "" {
			continue
		}

		questions := c.questions.GenerateQuestions(ctx, text, difficulty, c.questionsPerModule, llmLogger)
		quizzes = append(quizzes, ModuleQuiz{ModuleTitle: module.Title, Questions: questions})
		llmLogger.LogModuleResult(module.Title, len(questions))

		if err := c.caches.Quizzes.Put(ctx, QuizKey(videoID, module.Title, difficulty), questions); err != nil {
			logger.Warn("failed to save quiz", "video_id", videoID, "module", module.Title, "error", err)
			continue
		}
		logger.Debug("generated quiz for module", "module", module.Title, "questions", len(questions))
	}

	return quizzes, nil
}

func (c *Course) newLLMLogger(videoID, stage string) *LLMLogger {
	if c.llmLogDir == "" {
		return nil
	}
	l, err := NewLLMLogger(c.llmLogDir, videoID, stage)
	if err != nil {
		// Continue without logging rather than failing
		logger.Warn("failed to create LLM logger", "video_id", videoID, "error", err)
		return nil
	}
	return l
}
