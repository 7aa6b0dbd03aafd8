package server

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/image-to-tex/internal/converter"
	"github.com/joseph-ayodele/image-to-tex/internal/history"
	"github.com/joseph-ayodele/image-to-tex/internal/imagefile"
	"github.com/joseph-ayodele/image-to-tex/internal/latex"
)

const maxUploadMemory = 32 << 20

// convertOptions carries the per-request knobs shared by the multipart and
// JSON entry points.
type convertOptions struct {
	ContentType string
	Inline      bool
	Caption     string
	Title       string
	Author      string
}

// handleConvert accepts a multipart upload and returns the extracted LaTeX.
// The upload is staged to a temp file so the pipeline sees a regular path,
// same as the CLI and the watcher.
func (s *Service) handleConvert(w http.ResponseWriter, r *http.Request) {
	if s.conv == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, errorResponse{
			Error: "service not initialized: check provider credentials",
		})
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart form: " + err.Error()})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing file field"})
		return
	}
	defer file.Close()

	opts := convertOptions{
		ContentType: strings.ToLower(r.FormValue("content_type")),
		Inline:      r.FormValue("inline") == "true",
		Caption:     r.FormValue("caption"),
		Title:       r.FormValue("title"),
		Author:      r.FormValue("author"),
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "failed to read upload"})
		return
	}

	tmpPath, err := s.stageUpload(data, filepath.Ext(header.Filename))
	if err != nil {
		s.logger.Error("server.convert.stage_failed", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to stage upload"})
		return
	}
	defer os.Remove(tmpPath)

	s.convertAndRespond(w, r, tmpPath, opts)
}

// stageUpload writes uploaded bytes to a temp file carrying the original
// extension, since the image gate sniffs both extension and content.
func (s *Service) stageUpload(data []byte, ext string) (string, error) {
	if ext == "" {
		ext = extForMediaType(imagefile.DetectMediaType(data))
	}
	tmp, err := os.CreateTemp("", "upload-*"+ext)
	if err != nil {
		return "", err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

func extForMediaType(mediaType string) string {
	switch mediaType {
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}

func (s *Service) convertAndRespond(w http.ResponseWriter, r *http.Request, imagePath string, opts convertOptions) {
	declared, autoDetect, err := resolveContentType(opts.ContentType)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	result, err := s.conv.Convert(r.Context(), imagePath, declared, autoDetect)
	if err != nil {
		s.logger.Error("server.convert.failed", "error", err)
		s.writeConversionError(w, err)
		return
	}

	code := result.LaTeXCode
	switch declared {
	case latex.Equation:
		code = latex.WrapEquation(code, opts.Inline)
	case latex.Table:
		code = latex.WrapTable(code, opts.Caption)
	case latex.Document:
		code = latex.CreateFullDocument(code, opts.Title, opts.Author, "article")
	}

	s.record(r, result)

	s.writeJSON(w, http.StatusOK, ConversionResponse{
		LaTeXCode:       code,
		ContentType:     string(result.ContentType),
		IsValid:         result.IsValid,
		ValidationError: result.ValidationError,
	})
}

// resolveContentType maps the wire value onto the pipeline's typing. Empty
// and "auto" both mean detect from the output.
func resolveContentType(v string) (latex.ContentType, bool, error) {
	switch v {
	case "", "auto":
		return latex.Unknown, true, nil
	case "equation", "table", "diagram", "document":
		return latex.ContentType(v), false, nil
	default:
		return latex.Unknown, false, fmt.Errorf("unsupported content_type %q", v)
	}
}

func (s *Service) record(r *http.Request, result *converter.Result) {
	if s.store == nil {
		return
	}
	rec := history.Record{
		ID:              result.ID,
		ImagePath:       result.ImagePath,
		ContentType:     string(result.ContentType),
		LaTeXCode:       result.LaTeXCode,
		RawResponse:     result.RawResponse,
		IsValid:         result.IsValid,
		ValidationError: result.ValidationError,
		Provider:        result.Provider,
		DurationMS:      result.Elapsed.Milliseconds(),
	}
	if err := s.store.Save(r.Context(), rec); err != nil {
		s.logger.Warn("server.history.save_failed", "error", err)
	}
}

// handleConvertJSON accepts a base64 payload validated against the request
// schema before any decoding work happens.
func (s *Service) handleConvertJSON(w http.ResponseWriter, r *http.Request) {
	if s.conv == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, errorResponse{
			Error: "service not initialized: check provider credentials",
		})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxUploadMemory*2))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "failed to read request body"})
		return
	}
	if err := validateConvertRequest(body); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	var req struct {
		ImageBase64 string `json:"image_base64"`
		ContentType string `json:"content_type"`
		Inline      bool   `json:"inline"`
		Caption     string `json:"caption"`
		Title       string `json:"title"`
		Author      string `json:"author"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	data, err := base64.StdEncoding.DecodeString(req.ImageBase64)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "image_base64 is not valid base64"})
		return
	}

	tmpPath, err := s.stageUpload(data, "")
	if err != nil {
		s.logger.Error("server.convert.stage_failed", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to stage upload"})
		return
	}
	defer os.Remove(tmpPath)

	s.convertAndRespond(w, r, tmpPath, convertOptions{
		ContentType: strings.ToLower(req.ContentType),
		Inline:      req.Inline,
		Caption:     req.Caption,
		Title:       req.Title,
		Author:      req.Author,
	})
}
