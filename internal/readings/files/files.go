package files

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"weatherman/internal/core"
	applog "weatherman/internal/log"
	"weatherman/internal/readings"
)

// Store reads daily weather files from a directory. Each regular file has a
// header line followed by one comma-separated row per day.
type Store struct {
	dir string
}

var _ readings.Source = (*Store)(nil)

func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the directory the store reads from.
func (s *Store) Dir() string {
	return s.dir
}

// Load parses every file in the directory in name order. Symlinks are
// followed; subdirectories, including linked ones, are ignored. Rows with an
// unparseable date are dropped.
func (s *Store) Load(ctx context.Context) ([]core.Reading, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read data directory %s: %w", s.dir, err)
	}
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentReadings)

	var out []core.Reading
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(s.dir, e.Name())
		if !e.Type().IsRegular() {
			info, err := os.Stat(path)
			if err != nil {
				return nil, fmt.Errorf("stat %s: %w", path, err)
			}
			if !info.Mode().IsRegular() {
				continue
			}
		}
		rs, skipped, err := parseFile(path)
		if err != nil {
			return nil, err
		}
		if skipped > 0 {
			logger.DebugContext(ctx, "Skipped rows with invalid date",
				applog.FieldFile, e.Name(),
				"skipped", skipped)
		}
		out = append(out, rs...)
	}
	logger.DebugContext(ctx, "Loaded readings",
		applog.FieldDataDir, s.dir,
		applog.FieldReadings, len(out))
	return out, nil
}

// parseFile returns the readings of one file and how many rows were dropped
// for an invalid date.
func parseFile(path string) ([]core.Reading, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var (
		out     []core.Reading
		skipped int
		header  = true
	)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if header {
			header = false
			continue
		}
		r, err := readings.ParseLine(sc.Text())
		switch {
		case err == nil:
			out = append(out, r)
		case errors.Is(err, core.ErrInvalidDate):
			skipped++
		}
	}
	if err := sc.Err(); err != nil {
		return nil, 0, fmt.Errorf("scan %s: %w", path, err)
	}
	return out, skipped, nil
}
