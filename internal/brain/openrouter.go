package brain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/membridge/membridge/internal/reliability"
)

// OpenRouterGenerator calls an OpenAI-compatible chat completions endpoint
// through the official client. Works against OpenRouter and OpenAI alike.
type OpenRouterGenerator struct {
	client      openai.Client
	model       string
	maxTokens   int
	temperature float64
}

// OpenRouterConfig controls provider construction.
type OpenRouterConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
}

func NewOpenRouterGenerator(cfg OpenRouterConfig) *OpenRouterGenerator {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenRouterGenerator{
		client:      openai.NewClient(opts...),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

func (g *OpenRouterGenerator) Generate(ctx context.Context, req Request) (Response, error) {
	res, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
		MaxTokens:   openai.Int(int64(g.maxTokens)),
		Temperature: openai.Float(g.temperature),
	})
	if err != nil {
		return Response{}, classify(err)
	}
	if len(res.Choices) == 0 {
		return Response{}, &ProviderError{Retryable: true, Err: fmt.Errorf("completion has no choices")}
	}
	return Response{Text: res.Choices[0].Message.Content}, nil
}

// classify folds provider errors into the ProviderError taxonomy. Errors
// without an HTTP status (timeouts, connection resets) count as retryable.
func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &ProviderError{
			StatusCode: apiErr.StatusCode,
			Retryable:  reliability.IsRetryableHTTPStatus(apiErr.StatusCode),
			Err:        err,
		}
	}
	return &ProviderError{Retryable: true, Err: err}
}
