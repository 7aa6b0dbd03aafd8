package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS conversions (
	id               UUID PRIMARY KEY,
	image_path       TEXT NOT NULL,
	content_type     TEXT NOT NULL,
	latex_code       TEXT NOT NULL,
	raw_response     TEXT NOT NULL,
	is_valid         BOOLEAN NOT NULL,
	validation_error TEXT NOT NULL DEFAULT '',
	provider         TEXT NOT NULL DEFAULT '',
	duration_ms      BIGINT NOT NULL DEFAULT 0,
	created_at       TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS conversions_created_at ON conversions (created_at);
`

type postgresStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func openPostgres(ctx context.Context, dsn string, logger *slog.Logger) (Store, error) {
	logger.Info("history.open", "backend", "postgres")

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate postgres schema: %w", err)
	}
	return &postgresStore{db: db, logger: logger}, nil
}

func (s *postgresStore) Save(ctx context.Context, rec Record) error {
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
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rec.ID, rec.ImagePath, rec.ContentType, rec.LaTeXCode, rec.RawResponse,
		rec.IsValid, rec.ValidationError, rec.Provider, rec.DurationMS, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert conversion: %w", err)
	}
	return nil
}

func (s *postgresStore) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, image_path, content_type, latex_code, raw_response,
		       is_valid, validation_error, provider, duration_ms, created_at
		FROM conversions
		ORDER BY created_at DESC, id
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query conversions: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.ImagePath, &rec.ContentType, &rec.LaTeXCode,
			&rec.RawResponse, &rec.IsValid, &rec.ValidationError, &rec.Provider,
			&rec.DurationMS, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan conversion: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *postgresStore) Close() error {
	return s.db.Close()
}
