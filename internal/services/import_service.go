package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"weatherman/internal/amqp"
	applog "weatherman/internal/log"
	"weatherman/internal/readings"
	"weatherman/internal/readings/files"
)

var (
	ErrOutsideRoot     = errors.New("directory is outside the import root")
	ErrImportsDisabled = errors.New("imports are not configured")
	ErrNotDirectory    = errors.New("not a directory")
)

// ImportService moves directories of weather files into the database.
// Requests are published over AMQP and executed by the worker.
type ImportService struct {
	root      string
	writer    readings.Writer
	publisher amqp.Publisher
}

// NewImportService confines every import to root. writer may be nil in the
// web process, publisher may be nil in the worker.
func NewImportService(root string, writer readings.Writer, publisher amqp.Publisher) *ImportService {
	return &ImportService{
		root:      root,
		writer:    writer,
		publisher: publisher,
	}
}

// ResolveDir maps dir onto an absolute path under the import root. Relative
// paths are taken relative to the root. Symlinks must not lead outside it.
func (s *ImportService) ResolveDir(dir string) (string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return "", fmt.Errorf("%w: empty directory", ErrOutsideRoot)
	}
	root, err := filepath.Abs(s.root)
	if err != nil {
		return "", fmt.Errorf("resolve import root: %w", err)
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	dir = filepath.Clean(dir)

	if !within(root, dir) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, dir)
	}

	// A path that does not exist yet is checked again when it is imported.
	realDir, err := filepath.EvalSymlinks(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return dir, nil
	case err != nil:
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}
	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", fmt.Errorf("resolve import root: %w", err)
	}
	if !within(realRoot, realDir) {
		return "", fmt.Errorf("%w: %s resolves to %s", ErrOutsideRoot, dir, realDir)
	}
	return dir, nil
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// RequestImport publishes an import request for dir and returns it.
func (s *ImportService) RequestImport(ctx context.Context, dir string) (*amqp.ImportRequestMessage, error) {
	if s.publisher == nil {
		return nil, ErrImportsDisabled
	}
	resolved, err := s.ResolveDir(dir)
	if err != nil {
		return nil, err
	}
	msg := amqp.NewImportRequestMessage(resolved)
	if err := s.publisher.PublishImportRequest(ctx, msg); err != nil {
		return nil, fmt.Errorf("publish import request: %w", err)
	}
	return msg, nil
}

// Import loads every reading in dir and upserts it, returning the count.
func (s *ImportService) Import(ctx context.Context, dir string) (int, error) {
	if s.writer == nil {
		return 0, ErrImportsDisabled
	}
	resolved, err := s.ResolveDir(dir)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", resolved, err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("%w: %s", ErrNotDirectory, resolved)
	}

	rs, err := files.New(resolved).Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load readings: %w", err)
	}
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentImport)
	if len(rs) == 0 {
		logger.WarnContext(ctx, "Import directory has no readings", applog.FieldDataDir, resolved)
		return 0, nil
	}

	n, err := s.writer.UpsertReadings(ctx, rs, resolved)
	if err != nil {
		return 0, fmt.Errorf("save readings: %w", err)
	}
	logger.InfoContext(ctx, "Imported readings",
		applog.FieldDataDir, resolved,
		applog.FieldReadings, n)
	return n, nil
}

// Enabled reports whether import requests can be published.
func (s *ImportService) Enabled() bool {
	return s.publisher != nil
}
