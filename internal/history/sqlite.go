package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS conversions (
	id               TEXT PRIMARY KEY,
	image_path       TEXT NOT NULL,
	content_type     TEXT NOT NULL,
	latex_code       TEXT NOT NULL,
	raw_response     TEXT NOT NULL,
	is_valid         INTEGER NOT NULL,
	validation_error TEXT NOT NULL DEFAULT '',
	provider         TEXT NOT NULL DEFAULT '',
	duration_ms      INTEGER NOT NULL DEFAULT 0,
	created_at       TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS conversions_created_at ON conversions (created_at);
`

type sqliteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func openSQLite(ctx context.Context, path string, logger *slog.Logger) (Store, error) {
	logger.Info("history.open", "backend", "sqlite", "path", path)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite schema: %w", err)
	}
	return &sqliteStore{db: db, logger: logger}, nil
}

func (s *sqliteStore) Save(ctx context.Context, rec Record) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversions
			(id, image_path, content_type, latex_code, raw_response,
			 is_valid, validation_error, provider, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID.String(), rec.ImagePath, rec.ContentType, rec.LaTeXCode, rec.RawResponse,
		boolToInt(rec.IsValid), rec.ValidationError, rec.Provider, rec.DurationMS, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert conversion: %w", err)
	}
	return nil
}

func (s *sqliteStore) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, image_path, content_type, latex_code, raw_response,
		       is_valid, validation_error, provider, duration_ms, created_at
		FROM conversions
		ORDER BY created_at DESC, id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query conversions: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec     Record
			id      string
			isValid int
		)
		if err := rows.Scan(&id, &rec.ImagePath, &rec.ContentType, &rec.LaTeXCode,
			&rec.RawResponse, &isValid, &rec.ValidationError, &rec.Provider,
			&rec.DurationMS, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan conversion: %w", err)
		}
		rec.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parse conversion id: %w", err)
		}
		rec.IsValid = isValid != 0
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
