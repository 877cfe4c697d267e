package storage

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// ReadingRow mirrors the readings table.
type ReadingRow struct {
	Date         string
	MaxTemp      sql.NullFloat64
	MeanTemp     sql.NullFloat64
	MinTemp      sql.NullFloat64
	MaxHumidity  sql.NullFloat64
	MeanHumidity sql.NullFloat64
	MinHumidity  sql.NullFloat64
	Source       string
}

const upsertReading = `
INSERT INTO readings (date, max_temp, mean_temp, min_temp, max_humidity, mean_humidity, min_humidity, source, imported_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(date) DO UPDATE SET
    max_temp = excluded.max_temp,
    mean_temp = excluded.mean_temp,
    min_temp = excluded.min_temp,
    max_humidity = excluded.max_humidity,
    mean_humidity = excluded.mean_humidity,
    min_humidity = excluded.min_humidity,
    source = excluded.source,
    imported_at = excluded.imported_at
`

func (q *Queries) UpsertReading(ctx context.Context, arg ReadingRow) error {
	_, err := q.db.ExecContext(ctx, upsertReading,
		arg.Date,
		arg.MaxTemp,
		arg.MeanTemp,
		arg.MinTemp,
		arg.MaxHumidity,
		arg.MeanHumidity,
		arg.MinHumidity,
		arg.Source,
	)
	return err
}

const listReadings = `
SELECT date, max_temp, mean_temp, min_temp, max_humidity, mean_humidity, min_humidity, source
FROM readings
ORDER BY date
`

func (q *Queries) ListReadings(ctx context.Context) ([]ReadingRow, error) {
	rows, err := q.db.QueryContext(ctx, listReadings)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ReadingRow
	for rows.Next() {
		var i ReadingRow
		if err := rows.Scan(
			&i.Date,
			&i.MaxTemp,
			&i.MeanTemp,
			&i.MinTemp,
			&i.MaxHumidity,
			&i.MeanHumidity,
			&i.MinHumidity,
			&i.Source,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countReadings = `SELECT COUNT(*) FROM readings`

func (q *Queries) CountReadings(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countReadings).Scan(&count)
	return count, err
}

// ImportRunRow mirrors the import_runs table.
type ImportRunRow struct {
	MessageID   string
	DataDir     string
	Status      string
	Readings    int64
	Error       string
	RequestedAt time.Time
	FinishedAt  time.Time
}

const upsertImportRun = `
INSERT INTO import_runs (message_id, data_dir, status, readings, error, requested_at, finished_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(message_id) DO UPDATE SET
    status = excluded.status,
    readings = excluded.readings,
    error = excluded.error,
    finished_at = excluded.finished_at
`

func (q *Queries) UpsertImportRun(ctx context.Context, arg ImportRunRow) error {
	_, err := q.db.ExecContext(ctx, upsertImportRun,
		arg.MessageID,
		arg.DataDir,
		arg.Status,
		arg.Readings,
		arg.Error,
		arg.RequestedAt.UTC(),
		arg.FinishedAt.UTC(),
	)
	return err
}

const getImportRun = `
SELECT message_id, data_dir, status, readings, error, requested_at, finished_at
FROM import_runs
WHERE message_id = ?
`

func (q *Queries) GetImportRun(ctx context.Context, messageID string) (ImportRunRow, error) {
	var i ImportRunRow
	err := q.db.QueryRowContext(ctx, getImportRun, messageID).Scan(
		&i.MessageID,
		&i.DataDir,
		&i.Status,
		&i.Readings,
		&i.Error,
		&i.RequestedAt,
		&i.FinishedAt,
	)
	return i, err
}
