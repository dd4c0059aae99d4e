// Package sqlite provides a SQLite-backed implementation of the mood history port.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously

	"github.com/ewilliams-labs/moodweather/internal/adapters/reportrow"
	"github.com/ewilliams-labs/moodweather/internal/core/domain"
	"github.com/ewilliams-labs/moodweather/internal/core/ports"
)

// Adapter implements the repository port for SQLite
type Adapter struct {
	db *sql.DB
}

var _ ports.MoodRepository = (*Adapter)(nil)

// NewAdapter creates a connection and runs the schema migration
func NewAdapter(storagePath string) (*Adapter, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	adapter := &Adapter{db: db}

	if err := adapter.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return adapter, nil
}

// Close ensures the DB connection is closed gracefully
func (a *Adapter) Close() error {
	return a.db.Close()
}

func (a *Adapter) Save(ctx context.Context, m domain.MoodReport) error {
	row, err := reportrow.FromReport(m)
	if err != nil {
		return fmt.Errorf("failed to encode report %s: %w", m.ID, err)
	}

	query := `
		INSERT INTO mood_reports (` + reportrow.Columns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			city=excluded.city,
			theme=excluded.theme,
			weather_json=excluded.weather_json,
			mood_text=excluded.mood_text,
			mood_author=excluded.mood_author,
			mood_source=excluded.mood_source,
			rec_title=excluded.rec_title,
			rec_artist=excluded.rec_artist,
			track_json=excluded.track_json,
			energy=excluded.energy;
	`
	if _, err := a.db.ExecContext(ctx, query, row.Args()...); err != nil {
		return fmt.Errorf("failed to save report %s: %w", m.ID, err)
	}
	return nil
}

func (a *Adapter) GetByID(ctx context.Context, id string) (domain.MoodReport, error) {
	r := a.db.QueryRowContext(ctx, "SELECT "+reportrow.Columns+" FROM mood_reports WHERE id = ?", id)
	row, err := reportrow.Scan(r)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.MoodReport{}, domain.ErrNotFound
		}
		return domain.MoodReport{}, fmt.Errorf("failed to load report: %w", err)
	}
	return row.Report()
}

func (a *Adapter) Recent(ctx context.Context, limit int) ([]domain.MoodReport, error) {
	rows, err := a.db.QueryContext(ctx, "SELECT "+reportrow.Columns+" FROM mood_reports ORDER BY created_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	reports := []domain.MoodReport{}
	for rows.Next() {
		row, err := reportrow.Scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		report, err := row.Report()
		if err != nil {
			return nil, fmt.Errorf("failed to decode report %s: %w", row.ID, err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reports: %w", err)
	}
	return reports, nil
}

func (a *Adapter) UpdateEnergy(ctx context.Context, id string, energy float64) error {
	res, err := a.db.ExecContext(ctx, "UPDATE mood_reports SET energy = ? WHERE id = ?", energy, id)
	if err != nil {
		return fmt.Errorf("failed to update energy: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (a *Adapter) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS mood_reports (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		city TEXT NOT NULL,
		theme TEXT NOT NULL,
		weather_json TEXT NOT NULL,
		mood_text TEXT NOT NULL,
		mood_author TEXT NOT NULL,
		mood_source TEXT NOT NULL,
		rec_title TEXT,
		rec_artist TEXT,
		track_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_mood_reports_created_at ON mood_reports (created_at);
	`
	if _, err := a.db.Exec(query); err != nil {
		return err
	}

	if _, err := a.db.Exec("ALTER TABLE mood_reports ADD COLUMN energy REAL"); err != nil {
		if !isDuplicateColumnError(err) {
			return err
		}
	}

	return nil
}

func isDuplicateColumnError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "duplicate column") || strings.Contains(err.Error(), "already exists"))
}
