package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"weatherman/internal/core"
	applog "weatherman/internal/log"
	"weatherman/internal/readings"

	_ "modernc.org/sqlite"
)

// Import run statuses.
const (
	ImportCompleted = "completed"
	ImportFailed    = "failed"
)

var ErrNotFound = errors.New("not found")

// ImportRun records the outcome of one import request.
type ImportRun struct {
	MessageID   string
	DataDir     string
	Status      string
	Readings    int
	Error       string
	RequestedAt time.Time
	FinishedAt  time.Time
}

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

var (
	_ readings.Source = (*SQLiteRepository)(nil)
	_ readings.Writer = (*SQLiteRepository)(nil)
)

// NewSQLiteRepository opens the database at dbPath, creating its directory,
// and applies pending migrations.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// one writer at a time
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks that the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// UpsertReadings stores readings in one transaction, replacing any existing
// row for the same date. Missing measurements are stored as NULL.
func (r *SQLiteRepository) UpsertReadings(ctx context.Context, rs []core.Reading, source string) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	for i, rd := range rs {
		if err := rd.Validate(); err != nil {
			return 0, fmt.Errorf("reading %d: %w", i, err)
		}
		if err := q.UpsertReading(ctx, toRow(rd, source)); err != nil {
			return 0, fmt.Errorf("upsert reading %s: %w", rd.Date, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	applog.FromContext(ctx).WithComponent(applog.ComponentStorage).InfoContext(ctx, "Readings saved to SQLite",
		applog.FieldReadings, len(rs),
		"source", source)
	return len(rs), nil
}

// Load returns every stored reading ordered by date.
func (r *SQLiteRepository) Load(ctx context.Context) ([]core.Reading, error) {
	rows, err := r.queries.ListReadings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list readings: %w", err)
	}
	out := make([]core.Reading, 0, len(rows))
	for _, row := range rows {
		rd, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, rd)
	}
	return out, nil
}

// Count returns the number of stored days.
func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	n, err := r.queries.CountReadings(ctx)
	if err != nil {
		return 0, fmt.Errorf("count readings: %w", err)
	}
	return int(n), nil
}

// RecordImport saves or updates the outcome of an import request.
func (r *SQLiteRepository) RecordImport(ctx context.Context, run ImportRun) error {
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}
	err := r.queries.UpsertImportRun(ctx, ImportRunRow{
		MessageID:   run.MessageID,
		DataDir:     run.DataDir,
		Status:      run.Status,
		Readings:    int64(run.Readings),
		Error:       run.Error,
		RequestedAt: run.RequestedAt,
		FinishedAt:  run.FinishedAt,
	})
	if err != nil {
		return fmt.Errorf("record import %s: %w", run.MessageID, err)
	}
	return nil
}

// GetImport returns the recorded run for a message, or ErrNotFound.
func (r *SQLiteRepository) GetImport(ctx context.Context, messageID string) (ImportRun, error) {
	row, err := r.queries.GetImportRun(ctx, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return ImportRun{}, fmt.Errorf("import %s: %w", messageID, ErrNotFound)
	}
	if err != nil {
		return ImportRun{}, fmt.Errorf("get import %s: %w", messageID, err)
	}
	return ImportRun{
		MessageID:   row.MessageID,
		DataDir:     row.DataDir,
		Status:      row.Status,
		Readings:    int(row.Readings),
		Error:       row.Error,
		RequestedAt: row.RequestedAt,
		FinishedAt:  row.FinishedAt,
	}, nil
}

func toRow(rd core.Reading, source string) ReadingRow {
	return ReadingRow{
		Date:         rd.Date.String(),
		MaxTemp:      nullFloat(rd.MaxTemp),
		MeanTemp:     nullFloat(rd.MeanTemp),
		MinTemp:      nullFloat(rd.MinTemp),
		MaxHumidity:  nullFloat(rd.MaxHumidity),
		MeanHumidity: nullFloat(rd.MeanHumidity),
		MinHumidity:  nullFloat(rd.MinHumidity),
		Source:       source,
	}
}

func fromRow(row ReadingRow) (core.Reading, error) {
	date, err := core.ParseDate(row.Date)
	if err != nil {
		return core.Reading{}, fmt.Errorf("stored reading: %w", err)
	}
	return core.Reading{
		Date:         date,
		MaxTemp:      measurement(row.MaxTemp),
		MeanTemp:     measurement(row.MeanTemp),
		MinTemp:      measurement(row.MinTemp),
		MaxHumidity:  measurement(row.MaxHumidity),
		MeanHumidity: measurement(row.MeanHumidity),
		MinHumidity:  measurement(row.MinHumidity),
	}, nil
}

func nullFloat(m core.Measurement) sql.NullFloat64 {
	return sql.NullFloat64{Float64: m.Value, Valid: m.Valid}
}

func measurement(n sql.NullFloat64) core.Measurement {
	if !n.Valid {
		return core.Missing()
	}
	return core.Value(n.Float64)
}
