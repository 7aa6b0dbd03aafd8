package export

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/image-to-tex/internal/history"
)

type memStore struct {
	recs []history.Record
}

func (m *memStore) Save(_ context.Context, rec history.Record) error {
	m.recs = append(m.recs, rec)
	return nil
}

func (m *memStore) List(_ context.Context, limit int) ([]history.Record, error) {
	if limit > 0 && limit < len(m.recs) {
		return m.recs[:limit], nil
	}
	return m.recs, nil
}

func (m *memStore) Close() error { return nil }

func TestExportConversionsXLSX(t *testing.T) {
	store := &memStore{recs: []history.Record{
		{
			ImagePath:   "eq.png",
			ContentType: "equation",
			LaTeXCode:   `\frac{a}{b}`,
			IsValid:     true,
			Provider:    "claude",
			DurationMS:  900,
			CreatedAt:   time.Date(2026, 8, 2, 12, 0, 0, 0, time.UTC),
		},
		{
			ImagePath:       "tbl.png",
			ContentType:     "table",
			LaTeXCode:       `\begin{tabular}{c} x`,
			IsValid:         false,
			ValidationError: "Unbalanced braces: {} count mismatch",
			Provider:        "openai",
			DurationMS:      1200,
			CreatedAt:       time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		},
	}}

	svc := NewService(store, nil)
	data, err := svc.ExportConversionsXLSX(context.Background(), 0)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Conversions")
	require.NoError(t, err)
	require.Len(t, rows, 3) // header + 2 records

	assert.Equal(t, "Converted At", rows[0][0])
	assert.Equal(t, "eq.png", rows[1][1])
	assert.Equal(t, "equation", rows[1][2])
	assert.Equal(t, "claude", rows[1][3])
	assert.Equal(t, "tbl.png", rows[2][1])
	assert.Contains(t, rows[2][5], "Unbalanced braces")
}

func TestExportEmptyHistory(t *testing.T) {
	svc := NewService(&memStore{}, nil)
	data, err := svc.ExportConversionsXLSX(context.Background(), 10)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Conversions")
	require.NoError(t, err)
	assert.Len(t, rows, 1) // header only
}
