package files

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"weatherman/internal/core"
)

const header = "PKT,Max TemperatureC,Mean TemperatureC,Min TemperatureC,Dew PointC,MeanDew PointC,Min DewpointC,Max Humidity, Mean Humidity, Min Humidity\n"

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadParsesAllFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Murree_weather_2004_Aug.txt", header+
		"2004-8-1,36,30,24,23,19,16,68,48,29\n"+
		"2004-8-2,37,31,25,23,19,16,70,50,30\n")
	writeFile(t, dir, "Murree_weather_2004_Jul.txt", header+
		"2004-7-1,30,25,20,23,19,16,60,45,28\n")
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "nested"), "ignored.txt", header+"2004-9-1,1,1,1,1,1,1,1,1,1\n")

	got, err := New(dir).Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 readings, got %d", len(got))
	}
	// name order: Aug file before Jul file
	if got[0].Date.Month() != 8 || got[2].Date.Month() != 7 {
		t.Fatalf("unexpected order: %v %v %v", got[0].Date, got[1].Date, got[2].Date)
	}
}

func TestLoadSkipsHeaderBlankAndBadRows(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", header+
		"\n"+
		"2004-8-1,36,30,24,23,19,16,68,48,29\n"+
		"<!-- 0.262:0.00 -->\n"+
		"not-a-date,1,1,1,1,1,1,1,1,1\n"+
		"2004-8-3,,30,24,23,19,16,68,48,29\n")

	got, err := New(dir).Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 readings, got %d: %+v", len(got), got)
	}
	if got[1].MaxTemp.Valid {
		t.Fatalf("expected missing max temp on second reading")
	}
}

func TestLoadEmptyDirectory(t *testing.T) {
	got, err := New(t.TempDir()).Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no readings, got %d", len(got))
	}
}

func TestLoadMissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "absent")).Load(context.Background())
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestLoadHonoursCancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", header+"2004-8-1,36,30,24,23,19,16,68,48,29\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(dir).Load(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestLoadFollowsSymlinks(t *testing.T) {
	src := t.TempDir()
	writeFile(t, src, "2004_Aug.txt", header+"2004-8-1,36,30,24,23,19,16,68,48,29\n")
	if err := os.Mkdir(filepath.Join(src, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(src, "sub"), "ignored.txt", header+"2004-9-1,1,1,1,1,1,1,1,1,1\n")

	dir := t.TempDir()
	if err := os.Symlink(filepath.Join(src, "2004_Aug.txt"), filepath.Join(dir, "linked.txt")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	if err := os.Symlink(filepath.Join(src, "sub"), filepath.Join(dir, "linked_dir")); err != nil {
		t.Fatal(err)
	}

	got, err := New(dir).Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || !got[0].Date.Equal(core.NewDate(2004, 8, 1).Time) {
		t.Fatalf("expected the linked file's reading, got %+v", got)
	}
}

func TestLoadBrokenSymlink(t *testing.T) {
	dir := t.TempDir()
	if err := os.Symlink(filepath.Join(dir, "missing.txt"), filepath.Join(dir, "dangling.txt")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	if _, err := New(dir).Load(context.Background()); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
}
