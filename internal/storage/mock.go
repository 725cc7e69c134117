package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/eb4890/thechoiceswemake/pkg/scenario"
)

// MockStore is an in-memory Store for tests. Setting Err makes every
// operation fail; CategoriesErr fails only the category listing so
// degraded-read paths can be exercised on their own.
type MockStore struct {
	mu sync.Mutex

	Settings   map[string]string
	Catalog    map[int64]*scenario.Scenario
	Pending    map[int64]*scenario.PendingScenario
	Journeys   []scenario.Journey
	Categories []string

	nextID        int64
	nextJourneyID int64

	Err           error
	CategoriesErr error
}

var _ Store = (*MockStore)(nil)

func NewMockStore() *MockStore {
	return &MockStore{
		Settings: make(map[string]string),
		Catalog:  make(map[int64]*scenario.Scenario),
		Pending:  make(map[int64]*scenario.PendingScenario),
	}
}

// AddScenario seeds the catalog and returns the row id.
func (m *MockStore) AddScenario(s scenario.Scenario) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	if s.SubmittedAt.IsZero() {
		s.SubmittedAt = time.Now()
	}
	m.Catalog[m.nextID] = &s
	return m.nextID
}

func (m *MockStore) findByTitle(title string) *scenario.Scenario {
	for _, s := range m.Catalog {
		if s.Title == title {
			return s
		}
	}
	return nil
}

func (m *MockStore) Ping(ctx context.Context) error { return m.Err }
func (m *MockStore) Close()                         {}

func (m *MockStore) GetSetting(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	v, ok := m.Settings[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MockStore) SetSetting(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Settings[key] = value
	return nil
}

func (m *MockStore) ListScenarios(ctx context.Context, now time.Time) ([]scenario.Scenario, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []scenario.Scenario
	for _, s := range m.Catalog {
		if s.Visible(now) {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out, nil
}

func (m *MockStore) IncrementPlays(ctx context.Context, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if s := m.findByTitle(title); s != nil {
		s.Plays++
	}
	return nil
}

func (m *MockStore) ListCategories(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if m.CategoriesErr != nil {
		return nil, m.CategoriesErr
	}
	out := make([]string, len(m.Categories))
	copy(out, m.Categories)
	sort.Strings(out)
	return out, nil
}

func (m *MockStore) InsertPendingScenario(ctx context.Context, p *scenario.PendingScenario) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for _, existing := range m.Pending {
		if existing.Title == p.Title {
			return ErrDuplicateTitle
		}
	}
	m.nextID++
	p.ID = m.nextID
	p.Status = scenario.StatusPending
	p.SubmittedAt = time.Now()
	cp := *p
	m.Pending[p.ID] = &cp
	return nil
}

func (m *MockStore) ApproveScenario(ctx context.Context, pendingID int64, sc *scenario.Scenario) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	p, ok := m.Pending[pendingID]
	if !ok {
		return ErrNotFound
	}
	// Insert-if-absent on title; approving a duplicate is a no-op on
	// the catalog but still transitions the pending row.
	if m.findByTitle(sc.Title) == nil {
		cp := *sc
		if cp.SubmittedAt.IsZero() {
			cp.SubmittedAt = time.Now()
		}
		m.nextID++
		m.Catalog[m.nextID] = &cp
	}
	p.Status = scenario.StatusApproved
	return nil
}

func (m *MockStore) RejectScenario(ctx context.Context, pendingID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	p, ok := m.Pending[pendingID]
	if !ok {
		return ErrNotFound
	}
	p.Status = scenario.StatusRejected
	return nil
}

func (m *MockStore) ReleaseScenarioEarly(ctx context.Context, scenarioID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	s, ok := m.Catalog[scenarioID]
	if !ok {
		return ErrNotFound
	}
	now := time.Now()
	s.ReleaseDate = &now
	return nil
}

func (m *MockStore) UpdateScenario(ctx context.Context, id int64, status string, sc *scenario.Scenario) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if status == scenario.StatusPending {
		p, ok := m.Pending[id]
		if !ok {
			return ErrNotFound
		}
		submitted := p.SubmittedAt
		p.Scenario = *sc
		p.SubmittedAt = submitted
		return nil
	}
	s, ok := m.Catalog[id]
	if !ok {
		return ErrNotFound
	}
	submitted := s.SubmittedAt
	*s = *sc
	s.SubmittedAt = submitted
	return nil
}

func (m *MockStore) ListModeration(ctx context.Context) ([]scenario.ModerationEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []scenario.ModerationEntry
	for id, s := range m.Catalog {
		out = append(out, scenario.ModerationEntry{ID: id, Status: scenario.StatusApproved, Scenario: *s})
	}
	for id, p := range m.Pending {
		if p.Status == scenario.StatusPending {
			entry := scenario.ModerationEntry{ID: id, Status: scenario.StatusPending, Scenario: p.Scenario}
			// PendingScenario.SubmittedAt shadows the embedded field;
			// carry it over so the newest-first sort sees it.
			entry.SubmittedAt = p.SubmittedAt
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out, nil
}

func (m *MockStore) InsertJourney(ctx context.Context, j *scenario.Journey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.nextJourneyID++
	j.ID = m.nextJourneyID
	j.SubmittedAt = time.Now()
	m.Journeys = append(m.Journeys, *j)
	return nil
}

func (m *MockStore) ListJourneys(ctx context.Context, limit int) ([]scenario.Journey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if limit <= 0 || limit > JourneyListLimit {
		limit = JourneyListLimit
	}
	out := make([]scenario.Journey, 0, limit)
	for i := len(m.Journeys) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.Journeys[i])
	}
	return out, nil
}
