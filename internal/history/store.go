// Package history persists conversion results. The backend is chosen from
// the DSN: postgres URLs open a pgx-backed store, anything else is treated
// as a sqlite file path.
package history

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Record is one stored conversion.
type Record struct {
	ID              uuid.UUID
	ImagePath       string
	ContentType     string
	LaTeXCode       string
	RawResponse     string
	IsValid         bool
	ValidationError string
	Provider        string
	DurationMS      int64
	CreatedAt       time.Time
}

// Store is the persistence contract the service and CLI depend on.
type Store interface {
	Save(ctx context.Context, rec Record) error
	List(ctx context.Context, limit int) ([]Record, error)
	Close() error
}

// Open selects a backend by DSN shape.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return openPostgres(ctx, dsn, logger)
	}
	return openSQLite(ctx, dsn, logger)
}
