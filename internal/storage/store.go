package storage

import (
	"context"
	"errors"
	"time"

	"github.com/eb4890/thechoiceswemake/pkg/scenario"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateTitle is the classified form of a unique-constraint
	// violation on a scenario title. Callers branch on this instead of
	// sniffing error strings.
	ErrDuplicateTitle = errors.New("scenario title already exists")
)

// JourneyListLimit bounds the public archive listing.
const JourneyListLimit = 50

// Store is the persistence boundary for the whole service. All writes
// are parameterized; no SQL is built from strings.
type Store interface {
	Ping(ctx context.Context) error
	Close()

	// Settings (key/value)
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error

	// Scenario catalog
	ListScenarios(ctx context.Context, now time.Time) ([]scenario.Scenario, error)
	IncrementPlays(ctx context.Context, title string) error
	ListCategories(ctx context.Context) ([]string, error)

	// Curation
	InsertPendingScenario(ctx context.Context, p *scenario.PendingScenario) error
	ApproveScenario(ctx context.Context, pendingID int64, s *scenario.Scenario) error
	RejectScenario(ctx context.Context, pendingID int64) error
	ReleaseScenarioEarly(ctx context.Context, scenarioID int64) error
	UpdateScenario(ctx context.Context, id int64, status string, s *scenario.Scenario) error
	ListModeration(ctx context.Context) ([]scenario.ModerationEntry, error)

	// Journeys
	InsertJourney(ctx context.Context, j *scenario.Journey) error
	ListJourneys(ctx context.Context, limit int) ([]scenario.Journey, error)
}
