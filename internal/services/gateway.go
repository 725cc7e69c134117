package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/eb4890/thechoiceswemake/internal/config"
	"github.com/eb4890/thechoiceswemake/pkg/chat"
)

// ExhaustedMessage is returned when the global daily quota is spent. It
// is a designed degraded mode, not an error: no provider call is made
// and the counter is not advanced further.
const ExhaustedMessage = "The collective capacity for difficult choices has been exhausted today. Return tomorrow."

// TruncationNotice is appended when the provider cut a response off for
// length, so partial content is never passed off as complete.
const TruncationNotice = "\n\n*(Note: This response was truncated due to length limits.)*"

// Generator is the gateway seen by session handlers: transcript and
// optional instruction in, text out. It never fails; provider errors
// come back as sentinel strings.
type Generator interface {
	Generate(ctx context.Context, model string, transcript chat.Transcript, instruction string) string
}

// Gateway wraps the text-generation provider with quota enforcement,
// per-call instruction prepending and failure-to-sentinel conversion. A
// session's phase must never crash on a generation failure; the user
// sees the sentinel inline and may retry.
type Gateway struct {
	provider LLMService
	offline  LLMService
	quota    *QuotaService
	timeout  time.Duration
	logger   *slog.Logger
}

var _ Generator = (*Gateway)(nil)

func NewGateway(provider LLMService, quota *QuotaService, timeout time.Duration, logger *slog.Logger) *Gateway {
	return &Gateway{
		provider: provider,
		offline:  NewOfflineService(),
		quota:    quota,
		timeout:  timeout,
		logger:   logger,
	}
}

// Generate produces the next piece of text for a session. The
// instruction, when present, rides along as an extra system message for
// this call only; the caller's transcript is never mutated.
func (g *Gateway) Generate(ctx context.Context, model string, transcript chat.Transcript, instruction string) string {
	messages := transcript.WithSystemInstruction(instruction)

	if model == config.OfflineModel {
		// Zero-cost path: no quota, no provider.
		text, _, _ := g.offline.ChatCompletion(ctx, model, messages)
		return text
	}

	used, err := g.quota.Usage(ctx)
	if err != nil {
		g.logger.Error("Failed to read quota usage", "error", err)
		return sentinel(err)
	}
	if used >= g.quota.DailyLimit(ctx) {
		g.logger.Info("Daily generation quota exhausted", "used", used)
		return ExhaustedMessage
	}

	if err := g.quota.IncrementUsage(ctx); err != nil {
		g.logger.Error("Failed to increment quota usage", "error", err)
		return sentinel(err)
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, truncated, err := g.provider.ChatCompletion(callCtx, model, messages)
	if err != nil {
		g.logger.Error("Generation failed", "model", model, "error", err)
		return sentinel(err)
	}
	if truncated {
		text += TruncationNotice
	}
	return text
}

// sentinel converts any provider failure into the user-visible inline
// message. The error detail is embedded so the player can report it.
func sentinel(err error) string {
	return fmt.Sprintf("Temporal anomaly: %v", err)
}
