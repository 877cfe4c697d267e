package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"weatherman/internal/amqp"
	"weatherman/internal/readings/memory"
)

type fakePublisher struct {
	published []*amqp.ImportRequestMessage
	err       error
}

func (f *fakePublisher) PublishImportRequest(_ context.Context, msg *amqp.ImportRequestMessage) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, msg)
	return nil
}

const header = "PKT,Max TemperatureC,Mean TemperatureC,Min TemperatureC,Dew PointC,MeanDew PointC,Min DewpointC,Max Humidity, Mean Humidity, Min Humidity\n"

func TestResolveDir(t *testing.T) {
	root := t.TempDir()
	s := NewImportService(root, nil, nil)

	tests := []struct {
		name string
		in   string
		want string
		err  error
	}{
		{"relative", "2011", filepath.Join(root, "2011"), nil},
		{"absolute inside", filepath.Join(root, "a", "b"), filepath.Join(root, "a", "b"), nil},
		{"root itself", root, root, nil},
		{"dot dot escape", "../etc", "", ErrOutsideRoot},
		{"absolute outside", "/etc", "", ErrOutsideRoot},
		{"empty", "  ", "", ErrOutsideRoot},
		{"sneaky clean", "a/../../x", "", ErrOutsideRoot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ResolveDir(tt.in)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("expected %v, got %v", tt.err, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("ResolveDir(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestRequestImport(t *testing.T) {
	root := t.TempDir()
	pub := &fakePublisher{}
	s := NewImportService(root, nil, pub)

	msg, err := s.RequestImport(context.Background(), "2011")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pub.published) != 1 || pub.published[0] != msg {
		t.Fatalf("expected message to be published")
	}
	if msg.DataDir != filepath.Join(root, "2011") {
		t.Fatalf("unexpected data dir %q", msg.DataDir)
	}

	if _, err := s.RequestImport(context.Background(), "../x"); !errors.Is(err, ErrOutsideRoot) {
		t.Fatalf("expected ErrOutsideRoot, got %v", err)
	}
}

func TestRequestImportDisabled(t *testing.T) {
	s := NewImportService(t.TempDir(), nil, nil)
	if s.Enabled() {
		t.Fatal("service without publisher should be disabled")
	}
	if _, err := s.RequestImport(context.Background(), "x"); !errors.Is(err, ErrImportsDisabled) {
		t.Fatalf("expected ErrImportsDisabled, got %v", err)
	}
}

func TestRequestImportPublishError(t *testing.T) {
	boom := errors.New("boom")
	s := NewImportService(t.TempDir(), nil, &fakePublisher{err: boom})
	if _, err := s.RequestImport(context.Background(), "x"); !errors.Is(err, boom) {
		t.Fatalf("expected publish error, got %v", err)
	}
}

func TestImport(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "2011")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	body := header +
		"2011-3-1,20,15,10,5,4,3,80,60,40\n" +
		"2011-3-2,21,16,11,5,4,3,81,61,41\n"
	if err := os.WriteFile(filepath.Join(dir, "Murree_weather_2011_Mar.txt"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	store := memory.New()
	s := NewImportService(root, store, nil)
	n, err := s.Import(context.Background(), "2011")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 readings imported, got %d", n)
	}
	if c, _ := store.Count(context.Background()); c != 2 {
		t.Fatalf("expected store to hold 2 readings, got %d", c)
	}
}

func TestImportErrors(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "file.txt")
	if err := os.WriteFile(file, []byte(header), 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewImportService(root, memory.New(), nil)

	if _, err := s.Import(context.Background(), "missing"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not exist, got %v", err)
	}
	if _, err := s.Import(context.Background(), "file.txt"); !errors.Is(err, ErrNotDirectory) {
		t.Fatalf("expected ErrNotDirectory, got %v", err)
	}
	if _, err := NewImportService(root, nil, nil).Import(context.Background(), "."); !errors.Is(err, ErrImportsDisabled) {
		t.Fatalf("expected ErrImportsDisabled without writer, got %v", err)
	}
}

func TestImportEmptyDirectory(t *testing.T) {
	root := t.TempDir()
	n, err := NewImportService(root, memory.New(), nil).Import(context.Background(), ".")
	if err != nil || n != 0 {
		t.Fatalf("expected zero readings without error, got %d, %v", n, err)
	}
}

func TestResolveDirSymlinks(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	if err := os.Mkdir(filepath.Join(outside, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(root, "2011"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(outside, filepath.Join(root, "escape")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	if err := os.Symlink(filepath.Join(root, "2011"), filepath.Join(root, "latest")); err != nil {
		t.Fatal(err)
	}
	s := NewImportService(root, memory.New(), nil)

	tests := []struct {
		name string
		in   string
		err  error
	}{
		{"link leaving root", "escape", ErrOutsideRoot},
		{"path below link leaving root", "escape/sub", ErrOutsideRoot},
		{"link inside root", "latest", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.ResolveDir(tt.in)
			if tt.err == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.err != nil && !errors.Is(err, tt.err) {
				t.Fatalf("expected %v, got %v", tt.err, err)
			}
		})
	}

	if _, err := s.Import(context.Background(), "escape"); !errors.Is(err, ErrOutsideRoot) {
		t.Fatalf("import through escaping link: expected ErrOutsideRoot, got %v", err)
	}
}
