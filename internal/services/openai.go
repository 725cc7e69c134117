package services

import (
	"context"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"github.com/eb4890/thechoiceswemake/pkg/chat"
)

// OpenAIService implements LLMService for the OpenAI chat completion API
// and for OpenAI-compatible gateways via a base URL override.
type OpenAIService struct {
	client      *openai.Client
	maxTokens   int
	temperature float64
	logger      *slog.Logger
}

var _ LLMService = (*OpenAIService)(nil)

func NewOpenAIService(apiKey, baseURL string, maxTokens int, temperature float64, logger *slog.Logger) *OpenAIService {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIService{
		client:      openai.NewClientWithConfig(cfg),
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}
}

func (o *OpenAIService) ChatCompletion(ctx context.Context, model string, messages []chat.ChatMessage) (string, bool, error) {
	req := openai.ChatCompletionRequest{
		Model:       model,
		MaxTokens:   o.maxTokens,
		Temperature: float32(o.temperature),
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", false, fmt.Errorf("chat completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", false, fmt.Errorf("empty response choices")
	}

	choice := resp.Choices[0]
	return choice.Message.Content, choice.FinishReason == openai.FinishReasonLength, nil
}
