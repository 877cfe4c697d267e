package readings

import (
	"context"

	"weatherman/internal/core"
)

// Ports for reading sources.
type (
	// Source loads every available daily reading. Implementations return a
	// fresh slice per call; callers may keep it without copying.
	Source interface {
		Load(ctx context.Context) ([]core.Reading, error)
	}

	// Writer persists readings, replacing any existing reading for the same day.
	Writer interface {
		UpsertReadings(ctx context.Context, rs []core.Reading, source string) (int, error)
	}
)
