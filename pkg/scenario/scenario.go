package scenario

import (
	"time"
)

// Pending scenario moderation statuses.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// DefaultCategory is the synthetic first entry of every category list and
// the category assigned when a submission leaves it blank.
const DefaultCategory = "Uncategorized"

// DefaultCategories is the fallback vocabulary used when the category
// table is unreachable or empty. Catalog pages degrade to this list
// rather than failing.
var DefaultCategories = []string{
	DefaultCategory,
	"Choices",
	"Explorations",
	"Alignment",
	"Displacement",
	"Inequality",
	"Meta",
}

// Scenario is a playable narrative dilemma in the public catalog.
type Scenario struct {
	Title        string     `json:"title" db:"title"`
	Description  string     `json:"description" db:"description"`
	Prompt       string     `json:"prompt" db:"prompt"`
	OpeningScene string     `json:"opening_scene,omitempty" db:"opening_scene"`
	Soundtrack   string     `json:"soundtrack,omitempty" db:"soundtrack"`
	Author       string     `json:"author" db:"author"`
	Category     string     `json:"category" db:"category"`
	Plays        int        `json:"plays" db:"plays"`
	ReleaseDate  *time.Time `json:"release_date,omitempty" db:"release_date"`
	SubmittedAt  time.Time  `json:"submitted_at" db:"submitted_at"`
}

// Visible reports whether the scenario is publicly visible at the given
// time: release_date is null, or it has passed.
func (s *Scenario) Visible(now time.Time) bool {
	return s.ReleaseDate == nil || !s.ReleaseDate.After(now)
}

// Embargoed reports whether the scenario has a release date still in the
// future.
func (s *Scenario) Embargoed(now time.Time) bool {
	return s.ReleaseDate != nil && s.ReleaseDate.After(now)
}

// PendingScenario is a user-submitted scenario awaiting moderation. Same
// shape as Scenario, plus queue identity and status.
type PendingScenario struct {
	ID          int64     `json:"id" db:"id"`
	Status      string    `json:"status" db:"status"`
	SubmittedAt time.Time `json:"submitted_at" db:"submitted_at"`
	Scenario
}

// ModerationEntry is one row of the combined approved+pending listing
// shown to an admin.
type ModerationEntry struct {
	ID     int64  `json:"id" db:"id"`
	Status string `json:"status" db:"status"` // "approved" or "pending"
	Scenario
}

// Journey is the permanent record of one completed playthrough. Journeys
// are written exactly once and never updated or deleted.
type Journey struct {
	ID            int64     `json:"id,omitempty" db:"id"`
	ScenarioTitle string    `json:"scenario_title" db:"scenario_title"`
	LLMModel      string    `json:"llm_model" db:"llm_model"`
	ChoiceText    string    `json:"choice_text" db:"choice_text"`
	Summary       string    `json:"summary" db:"summary"`
	Author        *string   `json:"author,omitempty" db:"author"`
	SubmittedAt   time.Time `json:"submitted_at" db:"submitted_at"`
}

// AuthorLabel returns the display name for a journey's author.
func (j *Journey) AuthorLabel() string {
	if j.Author == nil || *j.Author == "" {
		return "Anonymous"
	}
	return *j.Author
}

// PromptPrefix is prepended to every scenario's system prompt when a play
// session begins. It pins the narrator to open-ended dialogue instead of
// multiple-choice menus, and keeps pacing conversational.
const PromptPrefix = `CRITICAL INTERACTION STYLE:
- Never present A/B/C/D options
- Never list "you could do X, Y, or Z"
- Ask open questions and let the user respond freely
- React to what they actually say/do
- If they're uncertain, ask clarifying questions
- Draw out their reasoning through dialogue
- Let choices emerge from conversation, not menu selection

Example:
WRONG: "What do you do? A) Tell them B) Hide it C) Run away"
RIGHT: "The parrot is still talking. What do you do?"
       [User responds naturally, you react to their specific choice]

PACING:
- Keep responses short (2-4 sentences usually)
- Present one moment/beat at a time
- Wait for user response before continuing
- Don't rush through the scenario
- Let tension build naturally
- Allow pauses and uncertainty

`
