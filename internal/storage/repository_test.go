package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"weatherman/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "db", "weatherman.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.db")
	v1, err := RunMigrations(path)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	v2, err := RunMigrations(path)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if v1 != 1 || v2 != 1 {
		t.Fatalf("expected schema version 1, got %d and %d", v1, v2)
	}
}

func TestUpsertAndLoadReadings(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	in := []core.Reading{
		{Date: core.NewDate(2011, 3, 2), MaxTemp: core.Value(20), MinTemp: core.Missing(), MeanHumidity: core.Value(70.5)},
		{Date: core.NewDate(2011, 3, 1), MaxTemp: core.Value(18), MinTemp: core.Value(4)},
	}
	n, err := repo.UpsertReadings(ctx, in, "weatherfiles")
	if err != nil || n != 2 {
		t.Fatalf("upsert: n=%d err=%v", n, err)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 readings, got %d", len(got))
	}
	if got[0].Date.Day() != 1 || got[1].Date.Day() != 2 {
		t.Fatalf("expected date order, got %v then %v", got[0].Date, got[1].Date)
	}
	if got[1].MinTemp.Valid {
		t.Fatalf("expected missing min temp to round trip as missing")
	}
	if !got[1].MeanHumidity.Valid || got[1].MeanHumidity.Value != 70.5 {
		t.Fatalf("unexpected mean humidity %+v", got[1].MeanHumidity)
	}
}

func TestUpsertReplacesExistingDay(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	day := core.NewDate(2011, 3, 1)

	if _, err := repo.UpsertReadings(ctx, []core.Reading{{Date: day, MaxTemp: core.Value(10)}}, "a"); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.UpsertReadings(ctx, []core.Reading{{Date: day, MaxTemp: core.Value(12)}}, "b"); err != nil {
		t.Fatal(err)
	}
	count, err := repo.Count(ctx)
	if err != nil || count != 1 {
		t.Fatalf("expected one row, got %d (%v)", count, err)
	}
	got, _ := repo.Load(ctx)
	if got[0].MaxTemp.Value != 12 {
		t.Fatalf("expected replaced value 12, got %v", got[0].MaxTemp)
	}
}

func TestUpsertRollsBackOnInvalidReading(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.UpsertReadings(ctx, []core.Reading{
		{Date: core.NewDate(2011, 3, 1), MaxTemp: core.Value(10)},
		{},
	}, "bad")
	if !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
	if count, _ := repo.Count(ctx); count != 0 {
		t.Fatalf("expected rollback, found %d rows", count)
	}
}

func TestImportRuns(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.GetImport(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	requested := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	run := ImportRun{MessageID: "m1", DataDir: "/data/2011", Status: ImportFailed, Error: "boom", RequestedAt: requested}
	if err := repo.RecordImport(ctx, run); err != nil {
		t.Fatalf("record: %v", err)
	}
	run.Status = ImportCompleted
	run.Error = ""
	run.Readings = 31
	if err := repo.RecordImport(ctx, run); err != nil {
		t.Fatalf("record again: %v", err)
	}

	got, err := repo.GetImport(ctx, "m1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != ImportCompleted || got.Readings != 31 || got.Error != "" || got.DataDir != "/data/2011" {
		t.Fatalf("unexpected run %+v", got)
	}
	if !got.RequestedAt.Equal(requested) {
		t.Fatalf("requested_at mismatch: %v", got.RequestedAt)
	}
}

func TestPing(t *testing.T) {
	if err := newTestRepo(t).Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
