package services

import (
	"context"
	"strings"

	"github.com/eb4890/thechoiceswemake/pkg/chat"
)

// Canned offline responses. The choice list must survive the choice
// parser; the narration line keeps roleplay moving.
const (
	offlineNarration = "The machine mind process follows a logic you cannot yet perceive. The story continues."

	offlineChoices = "1. Stand your ground\n2. Seek a compromise\n3. Walk away\n4. Forge a new path"

	offlineSummary = "A journey was undertaken, patterns were observed, and a choice was made. " +
		"The archive grows by one reflection, a drop in the digital ocean of moral uncertainty."
)

// OfflineService is the zero-cost stand-in provider. It returns
// deterministic canned text keyed off the leading system instruction, so
// demos and tests exercise the full session flow without a provider
// account. It satisfies the same interface as the real providers;
// callers cannot distinguish it structurally.
type OfflineService struct{}

var _ LLMService = (*OfflineService)(nil)

func NewOfflineService() *OfflineService {
	return &OfflineService{}
}

func (o *OfflineService) ChatCompletion(ctx context.Context, model string, messages []chat.ChatMessage) (string, bool, error) {
	if len(messages) > 0 && messages[0].Role == chat.ChatRoleSystem {
		instruction := messages[0].Content
		if strings.Contains(instruction, "generate 4") {
			return offlineChoices, false, nil
		}
		if strings.Contains(instruction, "Summarize") {
			return offlineSummary, false, nil
		}
	}
	return offlineNarration, false, nil
}
