package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/image-to-tex/internal/history"
)

// Service is a tiny façade over the history store that produces XLSX bytes
// for exports.
type Service struct {
	store  history.Store
	logger *slog.Logger
}

func NewService(store history.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// ExportConversionsXLSX returns an XLSX workbook (as bytes) for the most
// recent conversions, newest first. limit <= 0 means the store default.
func (s *Service) ExportConversionsXLSX(ctx context.Context, limit int) ([]byte, error) {
	start := time.Now()

	recs, err := s.store.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("query conversions: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Conversions"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Converted At",
		"Image Path",
		"Content Type",
		"Provider",
		"Valid",
		"Validation Error",
		"Duration (ms)",
		"LaTeX Code",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range recs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, r.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
		write(2, r.ImagePath)
		write(3, r.ContentType)
		write(4, r.Provider)
		write(5, r.IsValid)
		write(6, r.ValidationError)
		write(7, r.DurationMS)
		write(8, truncate(r.LaTeXCode, 500))

		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 20) // timestamp
	_ = f.SetColWidth(sheet, "B", "B", 40) // path
	_ = f.SetColWidth(sheet, "C", "D", 14) // type, provider
	_ = f.SetColWidth(sheet, "F", "F", 42) // validation error
	_ = f.SetColWidth(sheet, "H", "H", 60) // latex

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
