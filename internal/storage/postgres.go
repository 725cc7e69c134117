package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eb4890/thechoiceswemake/pkg/scenario"
)

// pgUniqueViolation is the Postgres error code for a unique-constraint
// violation.
const pgUniqueViolation = "23505"

const scenarioFields = `title, description, prompt,
	COALESCE(opening_scene, '') AS opening_scene,
	COALESCE(soundtrack, '') AS soundtrack,
	COALESCE(author, 'Anonymous') AS author,
	COALESCE(category, 'Uncategorized') AS category,
	COALESCE(plays, 0) AS plays,
	release_date, submitted_at`

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore connects a pool to the given DSN.
func NewPostgresStore(ctx context.Context, dsn string, maxConns int32, logger *slog.Logger) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	if maxConns > 0 {
		poolCfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	return &PostgresStore{pool: pool, logger: logger}, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres ping failed: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
	s.logger.Info("Postgres connection pool closed")
}

// classify maps driver errors onto the store's typed errors.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicateTitle, pgErr.ConstraintName)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// Settings

func (s *PostgresStore) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM settings WHERE key = $1 LIMIT 1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *PostgresStore) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO settings (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set setting %q: %w", key, err)
	}
	return nil
}

// Scenario catalog

func (s *PostgresStore) ListScenarios(ctx context.Context, now time.Time) ([]scenario.Scenario, error) {
	var out []scenario.Scenario
	err := pgxscan.Select(ctx, s.pool, &out, fmt.Sprintf(
		`SELECT %s FROM scenarios
		 WHERE release_date IS NULL OR release_date <= $1
		 ORDER BY submitted_at DESC`, scenarioFields), now)
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) IncrementPlays(ctx context.Context, title string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE scenarios SET plays = COALESCE(plays, 0) + 1 WHERE title = $1`, title)
	if err != nil {
		return fmt.Errorf("failed to increment plays for %q: %w", title, err)
	}
	return nil
}

func (s *PostgresStore) ListCategories(ctx context.Context) ([]string, error) {
	var names []string
	err := pgxscan.Select(ctx, s.pool, &names,
		`SELECT name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return names, nil
}

// Curation

func (s *PostgresStore) InsertPendingScenario(ctx context.Context, p *scenario.PendingScenario) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO pending_scenarios
		 (title, description, prompt, author, category, release_date, opening_scene, soundtrack, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'pending')
		 RETURNING id, submitted_at`,
		p.Title, p.Description, p.Prompt, nullable(p.Author), p.Category,
		p.ReleaseDate, nullable(p.OpeningScene), nullable(p.Soundtrack),
	).Scan(&p.ID, &p.SubmittedAt)
	if err != nil {
		return classify(err)
	}
	return nil
}

// ApproveScenario copies a pending submission into the public catalog and
// marks the pending row approved, in one transaction. The catalog insert
// is insert-if-absent on title: approving a duplicate is a no-op on the
// catalog while the pending row still transitions.
func (s *PostgresStore) ApproveScenario(ctx context.Context, pendingID int64, sc *scenario.Scenario) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin approve transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO scenarios
		 (title, description, prompt, author, category, release_date, opening_scene, soundtrack)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (title) DO NOTHING`,
		sc.Title, sc.Description, sc.Prompt, nullable(sc.Author), sc.Category,
		sc.ReleaseDate, nullable(sc.OpeningScene), nullable(sc.Soundtrack))
	if err != nil {
		return fmt.Errorf("failed to insert approved scenario: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`UPDATE pending_scenarios SET status = 'approved' WHERE id = $1`, pendingID)
	if err != nil {
		return fmt.Errorf("failed to mark pending scenario approved: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit approval: %w", err)
	}
	return nil
}

func (s *PostgresStore) RejectScenario(ctx context.Context, pendingID int64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE pending_scenarios SET status = 'rejected' WHERE id = $1`, pendingID)
	if err != nil {
		return fmt.Errorf("failed to reject scenario: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ReleaseScenarioEarly(ctx context.Context, scenarioID int64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE scenarios SET release_date = NOW() WHERE id = $1`, scenarioID)
	if err != nil {
		return fmt.Errorf("failed to release scenario early: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) UpdateScenario(ctx context.Context, id int64, status string, sc *scenario.Scenario) error {
	table := "scenarios"
	if status == scenario.StatusPending {
		table = "pending_scenarios"
	}
	// Table name comes from the two-way status switch above, never
	// from input.
	tag, err := s.pool.Exec(ctx, fmt.Sprintf(
		`UPDATE %s SET title = $1, description = $2, prompt = $3, author = $4,
		 category = $5, release_date = $6, opening_scene = $7, soundtrack = $8
		 WHERE id = $9`, table),
		sc.Title, sc.Description, sc.Prompt, nullable(sc.Author), sc.Category,
		sc.ReleaseDate, nullable(sc.OpeningScene), nullable(sc.Soundtrack), id)
	if err != nil {
		return classify(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListModeration(ctx context.Context) ([]scenario.ModerationEntry, error) {
	var out []scenario.ModerationEntry
	err := pgxscan.Select(ctx, s.pool, &out, fmt.Sprintf(
		`SELECT id, 'approved' AS status, %s FROM scenarios
		 UNION ALL
		 SELECT id, 'pending' AS status, %s FROM pending_scenarios WHERE status = 'pending'
		 ORDER BY submitted_at DESC`, scenarioFields, scenarioFields))
	if err != nil {
		return nil, fmt.Errorf("failed to list moderation entries: %w", err)
	}
	return out, nil
}

// Journeys

func (s *PostgresStore) InsertJourney(ctx context.Context, j *scenario.Journey) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO journeys (scenario_title, llm_model, choice_text, summary, author)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, submitted_at`,
		j.ScenarioTitle, j.LLMModel, j.ChoiceText, j.Summary, j.Author,
	).Scan(&j.ID, &j.SubmittedAt)
	if err != nil {
		return fmt.Errorf("failed to insert journey: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListJourneys(ctx context.Context, limit int) ([]scenario.Journey, error) {
	if limit <= 0 || limit > JourneyListLimit {
		limit = JourneyListLimit
	}
	var out []scenario.Journey
	err := pgxscan.Select(ctx, s.pool, &out,
		`SELECT id, scenario_title, llm_model, choice_text, summary, author, submitted_at
		 FROM journeys ORDER BY submitted_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list journeys: %w", err)
	}
	return out, nil
}

// nullable maps empty strings to NULL so optional text columns stay
// NULL instead of collecting empty strings.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
