package videocourse

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// fallbackTitleWords is how many words of the module text a fallback title keeps
const fallbackTitleWords = 10

// TitleGenerator names modules using a short-completion model
type TitleGenerator struct {
	completer Completer
	model     string
	sampling  SamplingConfig
}

// NewTitleGenerator creates a title generator for the given model
func NewTitleGenerator(completer Completer, model string) *TitleGenerator {
	if model == "" {
		model = DefaultTitleModel
	}
	return &TitleGenerator{
		completer: completer,
		model:     model,
		sampling:  DefaultSampling(),
	}
}

// GenerateTitle returns a title for the text. It never fails: when the model
// call fails or comes back empty the title is derived from the text itself.
func (tg *TitleGenerator) GenerateTitle(ctx context.Context, text string, logger *LLMLogger) string {
	prompt := tg.buildPrompt(text)
	logger.LogLLMRequest("TitleGenerator", tg.model, prompt)

	completion, err := tg.completer.Complete(ctx, CompletionRequest{
		Model:    tg.model,
		Prompt:   prompt,
		Sampling: tg.sampling,
	})
	if err != nil {
		logger.LogLLMError("TitleGenerator", err)
		logger.LogFallback("TitleGenerator", "model call failed")
		VerboseLog("Title generation failed, using fallback: %v", err)
		return FallbackTitle(text)
	}
	logger.LogLLMResponse("TitleGenerator", completion)

	title := normalizeTitle(completion)
	if title == "" {
		logger.LogFallback("TitleGenerator", "empty completion")
		return FallbackTitle(text)
	}
	return title
}

func (tg *TitleGenerator) buildPrompt(text string) string {
	var sb strings.Builder

	sb.WriteString("Generate a concise and descriptive title for the following content.\n")
	sb.WriteString("The title should be between 3 to 10 words and capture the main topic.\n")
	sb.WriteString("Reply with the title only.\n\n")
	sb.WriteString("Content:\n")
	sb.WriteString(text)
	sb.WriteString("\n\nTitle:\n")

	return sb.String()
}

// normalizeTitle converts a raw completion into a title: surrounding quotes
// removed, title case, no trailing sentence punctuation.
func normalizeTitle(completion string) string {
	title := strings.TrimSpace(completion)
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = strings.TrimSpace(title[:i])
	}
	title = strings.TrimPrefix(title, "Title:")
	title = strings.Trim(strings.TrimSpace(title), "\"'*")
	title = cases.Title(language.English).String(title)
	title = strings.TrimRight(title, ".!?")
	return strings.TrimSpace(title)
}

// FallbackTitle derives a title from the text alone: the first ten words
// followed by an ellipsis, or the whole trimmed text when it is that short.
func FallbackTitle(text string) string {
	words := strings.Fields(text)
	if len(words) > fallbackTitleWords {
		return fmt.Sprintf("%s...", strings.Join(words[:fallbackTitleWords], " "))
	}
	return strings.TrimSpace(text)
}
