package videocourse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultLLMBaseURL is the OpenAI-compatible endpoint the models are served from
	DefaultLLMBaseURL = "https://api.studio.nebius.com/v1/"
	// DefaultTitleModel produces short title completions
	DefaultTitleModel = "meta-llama/Llama-3.3-70B-Instruct"
	// DefaultQuizModel produces the longer JSON quiz completions
	DefaultQuizModel = "deepseek-ai/DeepSeek-V3"
)

// SamplingConfig controls how the model samples its completion
type SamplingConfig struct {
	Temperature float32
	TopP        float32
	TopK        int
	MaxTokens   int
}

// DefaultSampling biases toward short, near-deterministic completions
func DefaultSampling() SamplingConfig {
	return SamplingConfig{
		Temperature: 0.2,
		TopP:        0.9,
		TopK:        50,
		MaxTokens:   8192,
	}
}

// CompletionRequest is one prompt sent to one model
type CompletionRequest struct {
	Model    string
	Prompt   string
	Sampling SamplingConfig
}

// Completer turns a prompt into free-form completion text
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// OpenAICompleter calls an OpenAI-compatible chat completion endpoint
type OpenAICompleter struct {
	client *openai.Client
}

// NewOpenAICompleter creates a completer for the given endpoint. An empty
// baseURL selects DefaultLLMBaseURL.
func NewOpenAICompleter(apiKey, baseURL string) *OpenAICompleter {
	return NewOpenAICompleterWithClient(apiKey, baseURL, &http.Client{Timeout: 10 * time.Minute})
}

// NewOpenAICompleterWithClient is NewOpenAICompleter with a caller-supplied HTTP client
func NewOpenAICompleterWithClient(apiKey, baseURL string, httpClient *http.Client) *OpenAICompleter {
	if baseURL == "" {
		baseURL = DefaultLLMBaseURL
	}
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = strings.TrimSuffix(baseURL, "/")
	config.HTTPClient = &topKDoer{client: httpClient}
	return &OpenAICompleter{
		client: openai.NewClientWithConfig(config),
	}
}

// Complete sends the prompt as a single user message
func (c *OpenAICompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	VerboseLog("Sending %d-character prompt to %s", len(req.Prompt), req.Model)

	ctx = withTopK(ctx, req.Sampling.TopK)
	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:       req.Model,
			MaxTokens:   req.Sampling.MaxTokens,
			Temperature: req.Sampling.Temperature,
			TopP:        req.Sampling.TopP,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: req.Prompt,
				},
			},
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to create completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from %s", req.Model)
	}

	return resp.Choices[0].Message.Content, nil
}

type topKKey struct{}

func withTopK(ctx context.Context, topK int) context.Context {
	if topK <= 0 {
		return ctx
	}
	return context.WithValue(ctx, topKKey{}, topK)
}

// topKDoer adds top_k to outgoing JSON bodies. The chat completion request
// type has no field for it, but the hosted open models honour it.
type topKDoer struct {
	client *http.Client
}

func (d *topKDoer) Do(req *http.Request) (*http.Response, error) {
	topK, ok := req.Context().Value(topKKey{}).(int)
	if !ok || req.Body == nil || req.Method != http.MethodPost {
		return d.client.Do(req)
	}

	raw, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}

	body := raw
	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err == nil {
		payload["top_k"] = topK
		if patched, err := json.Marshal(payload); err == nil {
			body = patched
		}
	}

	req.Body = io.NopCloser(bytes.NewReader(body))
	req.ContentLength = int64(len(body))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}
	return d.client.Do(req)
}
