// Package server exposes the converter over HTTP: health, convert (multipart
// and JSON), conversion history, and history export.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/joseph-ayodele/image-to-tex/internal/common"
	"github.com/joseph-ayodele/image-to-tex/internal/converter"
	"github.com/joseph-ayodele/image-to-tex/internal/export"
	"github.com/joseph-ayodele/image-to-tex/internal/history"
	"github.com/joseph-ayodele/image-to-tex/internal/latex"
)

// ImageConverter is what the handlers need from the orchestrator.
type ImageConverter interface {
	Convert(ctx context.Context, imagePath string, contentType latex.ContentType, autoDetect bool) (*converter.Result, error)
	Configured() map[string]bool
}

// Service holds the explicitly constructed dependencies for all handlers.
// It is built at service start and torn down at service stop; no package
// state is involved.
type Service struct {
	conv   ImageConverter
	store  history.Store // optional
	logger *slog.Logger
}

func NewService(conv ImageConverter, store history.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{conv: conv, store: store, logger: logger}
}

// Routes returns the service handler.
func (s *Service) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /convert", s.handleConvert)
	mux.HandleFunc("POST /convert/json", s.handleConvertJSON)
	mux.HandleFunc("GET /conversions", s.handleConversions)
	mux.HandleFunc("GET /conversions/export", s.handleExport)
	return mux
}

// ConversionResponse mirrors converter.Result for wire output.
type ConversionResponse struct {
	LaTeXCode       string `json:"latex_code"`
	ContentType     string `json:"content_type"`
	IsValid         bool   `json:"is_valid"`
	ValidationError string `json:"validation_error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Service) handleRoot(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"message": "Image-to-LaTeX API",
		"version": common.Version,
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if s.conv == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, errorResponse{
			Error: "service not initialized: check provider credentials",
		})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":           "healthy",
		"version":          common.Version,
		"models_available": s.conv.Configured(),
	})
}

func (s *Service) handleConversions(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "history is not enabled"})
		return
	}
	recs, err := s.store.List(r.Context(), 100)
	if err != nil {
		s.logger.Error("server.conversions.list_failed", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to list conversions"})
		return
	}

	type item struct {
		ID              string `json:"id"`
		ImagePath       string `json:"image_path"`
		ContentType     string `json:"content_type"`
		IsValid         bool   `json:"is_valid"`
		ValidationError string `json:"validation_error,omitempty"`
		Provider        string `json:"provider"`
		DurationMS      int64  `json:"duration_ms"`
		CreatedAt       string `json:"created_at"`
	}
	out := make([]item, 0, len(recs))
	for _, rec := range recs {
		out = append(out, item{
			ID:              rec.ID.String(),
			ImagePath:       rec.ImagePath,
			ContentType:     rec.ContentType,
			IsValid:         rec.IsValid,
			ValidationError: rec.ValidationError,
			Provider:        rec.Provider,
			DurationMS:      rec.DurationMS,
			CreatedAt:       rec.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"conversions": out})
}

func (s *Service) handleExport(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "history is not enabled"})
		return
	}
	data, err := export.NewService(s.store, s.logger).ExportConversionsXLSX(r.Context(), 0)
	if err != nil {
		s.logger.Error("server.export.failed", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "export failed"})
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="conversions.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("server.write_json_failed", "error", err)
	}
}

// writeConversionError maps the error taxonomy onto HTTP statuses: bad input
// is the client's fault, everything else is ours.
func (s *Service) writeConversionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrImageInvalid), errors.Is(err, common.ErrInvalidInput):
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, common.ErrNoCredentials):
		s.writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	default:
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}
