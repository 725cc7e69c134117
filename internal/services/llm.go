package services

import (
	"context"

	"github.com/eb4890/thechoiceswemake/pkg/chat"
)

// LLMService is the provider boundary: an ordered transcript in,
// generated text out. Truncated reports whether the provider cut the
// response off for length.
type LLMService interface {
	// ChatCompletion generates a response to the conversation.
	ChatCompletion(ctx context.Context, model string, messages []chat.ChatMessage) (text string, truncated bool, err error)
}
