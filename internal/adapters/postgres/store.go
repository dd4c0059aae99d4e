// Package postgres stores mood history in PostgreSQL through the pgx driver.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"

	"github.com/ewilliams-labs/moodweather/internal/adapters/reportrow"
	"github.com/ewilliams-labs/moodweather/internal/adapters/retry"
	"github.com/ewilliams-labs/moodweather/internal/core/domain"
	"github.com/ewilliams-labs/moodweather/internal/core/ports"
)

const (
	schemaQuery = `
		CREATE TABLE IF NOT EXISTS mood_reports (
			id TEXT PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL,
			city TEXT NOT NULL,
			theme TEXT NOT NULL,
			weather_json JSONB NOT NULL,
			mood_text TEXT NOT NULL,
			mood_author TEXT NOT NULL,
			mood_source TEXT NOT NULL,
			rec_title TEXT,
			rec_artist TEXT,
			track_json JSONB NOT NULL,
			energy DOUBLE PRECISION
		);
		CREATE INDEX IF NOT EXISTS idx_mood_reports_created_at ON mood_reports (created_at DESC);
	`

	insertQuery = `
		INSERT INTO mood_reports (` + reportrow.Columns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			city = EXCLUDED.city,
			theme = EXCLUDED.theme,
			weather_json = EXCLUDED.weather_json,
			mood_text = EXCLUDED.mood_text,
			mood_author = EXCLUDED.mood_author,
			mood_source = EXCLUDED.mood_source,
			rec_title = EXCLUDED.rec_title,
			rec_artist = EXCLUDED.rec_artist,
			track_json = EXCLUDED.track_json,
			energy = EXCLUDED.energy
	`

	selectByIDQuery = `
		SELECT id, created_at, city, theme, weather_json::text, mood_text, mood_author, mood_source, rec_title, rec_artist, track_json::text, energy
		FROM mood_reports
		WHERE id = $1
	`

	selectRecentQuery = `
		SELECT id, created_at, city, theme, weather_json::text, mood_text, mood_author, mood_source, rec_title, rec_artist, track_json::text, energy
		FROM mood_reports
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`

	updateEnergyQuery = `
		UPDATE mood_reports
		SET energy = $1
		WHERE id = $2
	`
)

// Open connects to PostgreSQL, retrying the ping while the server starts up.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	const (
		pingTimeout    = 5 * time.Second
		maxWait        = 30 * time.Second
		initialBackoff = 500 * time.Millisecond
		maxBackoff     = 5 * time.Second
	)

	deadline := time.Now().Add(maxWait)
	backoff := initialBackoff
	var lastErr error

	for {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		lastErr = db.PingContext(pingCtx)
		cancel()

		if lastErr == nil {
			return db, nil
		}
		if ctx.Err() != nil || time.Now().After(deadline) {
			break
		}

		log.Warn().Err(lastErr).Dur("backoff", backoff).Msg("postgres: database not ready, retrying")
		if err := retry.SleepContext(ctx, backoff); err != nil {
			break
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}

	_ = db.Close()
	return nil, fmt.Errorf("ping database: %w", lastErr)
}

// Store implements the mood history port on PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ ports.MoodRepository = (*Store)(nil)

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the schema when missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaQuery); err != nil {
		return fmt.Errorf("migrate mood_reports: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Save(ctx context.Context, m domain.MoodReport) error {
	row, err := reportrow.FromReport(m)
	if err != nil {
		return fmt.Errorf("encode report %s: %w", m.ID, err)
	}
	if _, err := s.db.ExecContext(ctx, insertQuery, row.Args()...); err != nil {
		return fmt.Errorf("save report %s: %w", m.ID, err)
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, id string) (domain.MoodReport, error) {
	row, err := reportrow.Scan(s.db.QueryRowContext(ctx, selectByIDQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.MoodReport{}, domain.ErrNotFound
		}
		return domain.MoodReport{}, fmt.Errorf("load report: %w", err)
	}
	return row.Report()
}

func (s *Store) Recent(ctx context.Context, limit int) ([]domain.MoodReport, error) {
	rows, err := s.db.QueryContext(ctx, selectRecentQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	reports := []domain.MoodReport{}
	for rows.Next() {
		row, err := reportrow.Scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		report, err := row.Report()
		if err != nil {
			return nil, fmt.Errorf("decode report %s: %w", row.ID, err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return reports, nil
}

func (s *Store) UpdateEnergy(ctx context.Context, id string, energy float64) error {
	res, err := s.db.ExecContext(ctx, updateEnergyQuery, energy, id)
	if err != nil {
		return fmt.Errorf("update energy: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update energy: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
