// Package play holds the state machine for one playthrough of a
// scenario: a linear, resumable flow from setup through roleplay, choice
// and summary to a recorded journey. The machine owns the transcript and
// every session-scoped field's initialization and clearing rules; it
// performs no I/O itself. Handlers drive transitions and supply generated
// text.
package play

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eb4890/thechoiceswemake/pkg/chat"
)

// Phase is one state of the play session state machine.
type Phase string

const (
	PhaseSetup    Phase = "setup"
	PhaseRoleplay Phase = "roleplay"
	PhaseChoice   Phase = "choice"
	PhaseSummary  Phase = "summary"
	PhaseRecorded Phase = "recorded"
)

var (
	// ErrInvalidTransition is returned when a trigger is not legal in
	// the session's current phase.
	ErrInvalidTransition = errors.New("invalid phase transition")

	// ErrEmptyChoice is returned when a final choice trims to nothing.
	ErrEmptyChoice = errors.New("choice cannot be empty")
)

// Session is the ephemeral state of one playthrough. It is held only in
// the server's session registry and is never persisted mid-flight; the
// only durable output is the journey row written on Record.
type Session struct {
	ID        uuid.UUID `json:"id"`
	Phase     Phase     `json:"phase"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Chosen once at setup, immutable until reset.
	ScenarioTitle string `json:"scenario_title,omitempty"`
	Model         string `json:"model,omitempty"`
	Soundtrack    string `json:"soundtrack,omitempty"`

	// The ordered conversation. The system message is always first.
	Transcript chat.Transcript `json:"transcript,omitempty"`

	// Derived once per entry into the choice phase; cleared on back.
	GeneratedChoices []string `json:"generated_choices,omitempty"`
	// True when the generated choices are the fallback set.
	ChoicesFallback bool `json:"choices_fallback,omitempty"`

	// Populated progressively; all cleared when a new journey begins.
	FinalChoice   string `json:"final_choice,omitempty"`
	AISummary     string `json:"ai_summary,omitempty"`
	EditedSummary string `json:"edited_summary,omitempty"`
}

// NewSession creates a session in the setup phase.
func NewSession() *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.New(),
		Phase:     PhaseSetup,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now()
}

func (s *Session) requirePhase(trigger string, allowed ...Phase) error {
	for _, p := range allowed {
		if s.Phase == p {
			return nil
		}
	}
	return fmt.Errorf("%w: cannot %s in phase %q", ErrInvalidTransition, trigger, s.Phase)
}

// Begin confirms the scenario and model and starts roleplay. The
// transcript is initialized to the system prompt, with the opening scene
// as a first assistant turn when the scenario has one.
func (s *Session) Begin(scenarioTitle, systemPrompt, openingScene, model, soundtrack string) error {
	if err := s.requirePhase("begin", PhaseSetup); err != nil {
		return err
	}
	s.ScenarioTitle = scenarioTitle
	s.Model = model
	s.Soundtrack = soundtrack
	s.Transcript = chat.Transcript{{Role: chat.ChatRoleSystem, Content: systemPrompt}}
	if openingScene != "" {
		s.Transcript = s.Transcript.Append(chat.ChatRoleAgent, openingScene)
	}
	s.Phase = PhaseRoleplay
	s.touch()
	return nil
}

// Say records one roleplay exchange: the user's turn followed by the
// narrator's reply. The user turn always precedes the assistant turn it
// provoked.
func (s *Session) Say(userText, assistantText string) error {
	if err := s.requirePhase("say", PhaseRoleplay); err != nil {
		return err
	}
	s.Transcript = s.Transcript.Append(chat.ChatRoleUser, userText)
	s.Transcript = s.Transcript.Append(chat.ChatRoleAgent, assistantText)
	s.touch()
	return nil
}

// EnterChoice moves from roleplay to the choice phase with the options
// derived for this entry. Choices are generated exactly once per entry;
// NeedsChoices reports whether a caller must generate before presenting.
func (s *Session) EnterChoice(generated []string, fallback bool) error {
	if err := s.requirePhase("enter choice", PhaseRoleplay); err != nil {
		return err
	}
	s.Phase = PhaseChoice
	s.GeneratedChoices = generated
	s.ChoicesFallback = fallback
	s.touch()
	return nil
}

// RequireRoleplay errors unless the session is in the roleplay phase.
// Callers generating narration check this before spending quota.
func (s *Session) RequireRoleplay() error {
	return s.requirePhase("speak", PhaseRoleplay)
}

// RequireSummary errors unless the session is in the summary phase.
func (s *Session) RequireSummary() error {
	return s.requirePhase("record", PhaseSummary)
}

// NeedsChoices reports whether the choice phase still needs its one-time
// generation. Re-presenting a cached set must not trigger another call.
func (s *Session) NeedsChoices() bool {
	return s.Phase == PhaseChoice && len(s.GeneratedChoices) == 0
}

// Choose stores the final decision (selected or custom text) and moves
// to the summary phase. Empty or whitespace-only text is rejected.
func (s *Session) Choose(text string) error {
	if err := s.requirePhase("choose", PhaseChoice); err != nil {
		return err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyChoice
	}
	s.FinalChoice = text
	s.Phase = PhaseSummary
	s.touch()
	return nil
}

// SetDraftSummary caches the one-time generated summary draft for the
// current summary phase entry.
func (s *Session) SetDraftSummary(text string) error {
	if err := s.requirePhase("set draft summary", PhaseSummary); err != nil {
		return err
	}
	s.AISummary = text
	s.touch()
	return nil
}

// NeedsSummary reports whether the summary phase still needs its
// one-time draft generation.
func (s *Session) NeedsSummary() bool {
	return s.Phase == PhaseSummary && s.AISummary == ""
}

// BackToRoleplay returns from the choice phase to roleplay, discarding
// the cached choice set so re-entry regenerates it.
func (s *Session) BackToRoleplay() error {
	if err := s.requirePhase("go back to roleplay", PhaseChoice); err != nil {
		return err
	}
	s.GeneratedChoices = nil
	s.ChoicesFallback = false
	s.Phase = PhaseRoleplay
	s.touch()
	return nil
}

// BackToChoice returns from the summary phase to the choice phase,
// discarding the cached draft. The generated choice set was cached on
// entry into choice and survives this edge.
func (s *Session) BackToChoice() error {
	if err := s.requirePhase("go back to choice", PhaseSummary); err != nil {
		return err
	}
	s.AISummary = ""
	s.EditedSummary = ""
	s.Phase = PhaseChoice
	s.touch()
	return nil
}

// Recorded marks the journey as persisted. The session is read-only
// until Reset. The edited summary (possibly identical to the draft) is
// kept for display on the recorded page.
func (s *Session) Recorded(editedSummary string) error {
	if err := s.requirePhase("record", PhaseSummary); err != nil {
		return err
	}
	s.EditedSummary = editedSummary
	s.Phase = PhaseRecorded
	s.touch()
	return nil
}

// Reset clears every session-scoped field and returns to setup so a new
// journey can begin.
func (s *Session) Reset() {
	s.ScenarioTitle = ""
	s.Model = ""
	s.Soundtrack = ""
	s.Transcript = nil
	s.GeneratedChoices = nil
	s.ChoicesFallback = false
	s.FinalChoice = ""
	s.AISummary = ""
	s.EditedSummary = ""
	s.Phase = PhaseSetup
	s.touch()
}

// History returns the transcript without the system message, which is
// what a transcript view renders.
func (s *Session) History() chat.Transcript {
	if len(s.Transcript) == 0 {
		return nil
	}
	return s.Transcript[1:]
}
