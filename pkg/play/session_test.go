package play

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eb4890/thechoiceswemake/pkg/chat"
)

func beginTestSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession()
	require.NoError(t, s.Begin("Trolley", "You are the narrator.", "A lever glints in the dark.", "offline", ""))
	return s
}

func TestNewSessionStartsInSetup(t *testing.T) {
	s := NewSession()
	assert.Equal(t, PhaseSetup, s.Phase)
	assert.Empty(t, s.Transcript)
}

func TestBegin(t *testing.T) {
	s := beginTestSession(t)

	assert.Equal(t, PhaseRoleplay, s.Phase)
	assert.Equal(t, "Trolley", s.ScenarioTitle)
	assert.Equal(t, "offline", s.Model)

	require.Len(t, s.Transcript, 2)
	assert.Equal(t, chat.ChatRoleSystem, s.Transcript[0].Role)
	assert.Equal(t, "You are the narrator.", s.Transcript[0].Content)
	assert.Equal(t, chat.ChatRoleAgent, s.Transcript[1].Role)

	// Begin is only legal from setup.
	err := s.Begin("Trolley", "p", "", "offline", "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestBeginWithoutOpeningScene(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.Begin("Trolley", "prompt", "", "offline", ""))
	require.Len(t, s.Transcript, 1)
	assert.Equal(t, chat.ChatRoleSystem, s.Transcript[0].Role)
}

func TestSayAppendsOrderedTurns(t *testing.T) {
	s := beginTestSession(t)

	require.NoError(t, s.Say("I pull the lever.", "The trolley screeches onto the side track."))
	require.NoError(t, s.Say("I look away.", "You cannot."))

	h := s.History()
	require.Len(t, h, 5)
	assert.Equal(t, chat.ChatRoleUser, h[1].Role)
	assert.Equal(t, chat.ChatRoleAgent, h[2].Role)
	assert.Equal(t, "I pull the lever.", h[1].Content)
	assert.Equal(t, "The trolley screeches onto the side track.", h[2].Content)
}

func TestChoicePhaseCaching(t *testing.T) {
	s := beginTestSession(t)

	opts := []string{"Pull the lever", "Do nothing", "Shout a warning", "Jump in front"}
	require.NoError(t, s.EnterChoice(opts, false))
	assert.Equal(t, PhaseChoice, s.Phase)
	assert.False(t, s.NeedsChoices(), "choices generated on entry must be cached for the phase")

	// Back to roleplay discards the cache.
	require.NoError(t, s.BackToRoleplay())
	assert.Equal(t, PhaseRoleplay, s.Phase)
	assert.Empty(t, s.GeneratedChoices)

	// Re-entering regenerates.
	require.NoError(t, s.EnterChoice(opts, false))
	assert.True(t, !s.NeedsChoices())
}

func TestChoose(t *testing.T) {
	s := beginTestSession(t)
	require.NoError(t, s.EnterChoice([]string{"a", "b", "c", "d"}, false))

	assert.ErrorIs(t, s.Choose("   "), ErrEmptyChoice)
	assert.Equal(t, PhaseChoice, s.Phase)

	require.NoError(t, s.Choose("  Pull the lever  "))
	assert.Equal(t, "Pull the lever", s.FinalChoice)
	assert.Equal(t, PhaseSummary, s.Phase)
	assert.True(t, s.NeedsSummary())
}

func TestSummaryDraftCachedOncePerEntry(t *testing.T) {
	s := beginTestSession(t)
	require.NoError(t, s.EnterChoice([]string{"a", "b", "c"}, false))
	require.NoError(t, s.Choose("a"))

	require.NoError(t, s.SetDraftSummary("A journey was undertaken."))
	assert.False(t, s.NeedsSummary())

	// Going back to choice discards the draft but keeps the cached
	// choice set: that cache belongs to the choice phase entry.
	require.NoError(t, s.BackToChoice())
	assert.Equal(t, PhaseChoice, s.Phase)
	assert.Empty(t, s.AISummary)
	assert.NotEmpty(t, s.GeneratedChoices)

	require.NoError(t, s.Choose("b"))
	assert.True(t, s.NeedsSummary(), "re-entry must regenerate the draft")
}

func TestRecordedAndReset(t *testing.T) {
	s := beginTestSession(t)
	require.NoError(t, s.EnterChoice([]string{"a", "b", "c"}, false))
	require.NoError(t, s.Choose("b"))
	require.NoError(t, s.SetDraftSummary("draft"))
	require.NoError(t, s.Recorded("edited draft"))

	assert.Equal(t, PhaseRecorded, s.Phase)
	assert.Equal(t, "edited draft", s.EditedSummary)

	// Terminal until reset.
	assert.ErrorIs(t, s.Say("hello", "world"), ErrInvalidTransition)
	assert.ErrorIs(t, s.Choose("x"), ErrInvalidTransition)

	s.Reset()
	assert.Equal(t, PhaseSetup, s.Phase)
	assert.Empty(t, s.ScenarioTitle)
	assert.Empty(t, s.Model)
	assert.Empty(t, s.Transcript)
	assert.Empty(t, s.GeneratedChoices)
	assert.Empty(t, s.FinalChoice)
	assert.Empty(t, s.AISummary)
	assert.Empty(t, s.EditedSummary)
}

func TestIllegalTransitions(t *testing.T) {
	s := NewSession()

	assert.ErrorIs(t, s.Say("a", "b"), ErrInvalidTransition)
	assert.ErrorIs(t, s.EnterChoice(nil, false), ErrInvalidTransition)
	assert.ErrorIs(t, s.Choose("a"), ErrInvalidTransition)
	assert.ErrorIs(t, s.BackToRoleplay(), ErrInvalidTransition)
	assert.ErrorIs(t, s.BackToChoice(), ErrInvalidTransition)
	assert.ErrorIs(t, s.Recorded("x"), ErrInvalidTransition)
	assert.ErrorIs(t, s.SetDraftSummary("x"), ErrInvalidTransition)
}
