// Package imagefile validates and preprocesses input images before any
// provider call. Format detection always inspects the decoded header, never
// the file extension.
package imagefile

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/joseph-ayodele/image-to-tex/internal/common"
)

// SupportedFormats is the allowed set of decoded format names.
var SupportedFormats = map[string]struct{}{
	"png":  {},
	"jpeg": {},
	"gif":  {},
	"webp": {},
	"bmp":  {},
	"tiff": {},
}

// Limits bounds what Validate accepts.
type Limits struct {
	MaxSizeMB int64
}

// DefaultLimits matches the documented defaults.
var DefaultLimits = Limits{MaxSizeMB: 20}

// Metadata describes a validated image file.
type Metadata struct {
	Path      string
	Format    string
	Width     int
	Height    int
	SizeBytes int64
}

// SizeMB reports the file size in megabytes.
func (m Metadata) SizeMB() float64 {
	return float64(m.SizeBytes) / (1024 * 1024)
}

// Validate checks that path names a regular, size-bounded image file in a
// supported format. All failures wrap common.ErrImageInvalid.
func Validate(path string, limits Limits) error {
	_, err := Info(path, limits)
	return err
}

// Info validates path and returns its metadata.
func Info(path string, limits Limits) (Metadata, error) {
	if limits.MaxSizeMB <= 0 {
		limits = DefaultLimits
	}

	fi, err := os.Stat(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: image file not found: %s", common.ErrImageInvalid, path)
	}
	if !fi.Mode().IsRegular() {
		return Metadata{}, fmt.Errorf("%w: path is not a file: %s", common.ErrImageInvalid, path)
	}

	maxBytes := limits.MaxSizeMB * 1024 * 1024
	if fi.Size() > maxBytes {
		return Metadata{}, fmt.Errorf("%w: image file too large: %.2fMB (max: %dMB)",
			common.ErrImageInvalid, float64(fi.Size())/(1024*1024), limits.MaxSizeMB)
	}

	f, err := os.Open(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: failed to open image: %v", common.ErrImageInvalid, err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: failed to decode image header: %v", common.ErrImageInvalid, err)
	}
	if _, ok := SupportedFormats[format]; !ok {
		return Metadata{}, fmt.Errorf("%w: unsupported image format: %s (supported: %s)",
			common.ErrImageInvalid, format, supportedList())
	}

	return Metadata{
		Path:      path,
		Format:    format,
		Width:     cfg.Width,
		Height:    cfg.Height,
		SizeBytes: fi.Size(),
	}, nil
}

// Preprocess downscales an image whose longest edge exceeds maxDimension,
// preserving aspect ratio, and writes the result alongside the original as
// <stem>_processed<ext>. The original file is never modified. When no
// resizing is needed the input path is returned.
//
// WebP has no Go encoder, so downscaled webp input is written as PNG.
func Preprocess(path string, maxDimension int) (string, error) {
	if maxDimension <= 0 {
		maxDimension = 2048
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: failed to open image: %v", common.ErrImageInvalid, err)
	}
	defer f.Close()

	src, format, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("%w: failed to decode image: %v", common.ErrImageInvalid, err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	longest := w
	if h > longest {
		longest = h
	}
	if longest <= maxDimension {
		return path, nil
	}

	ratio := float64(maxDimension) / float64(longest)
	newW := int(float64(w) * ratio)
	newH := int(float64(h) * ratio)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)
	if format == "webp" {
		ext = ".png"
	}
	outPath := filepath.Join(filepath.Dir(path), stem+"_processed"+ext)

	out, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("create processed image: %w", err)
	}
	defer out.Close()

	switch format {
	case "jpeg":
		err = jpeg.Encode(out, dst, &jpeg.Options{Quality: 90})
	case "gif":
		err = gif.Encode(out, dst, nil)
	case "bmp":
		err = bmp.Encode(out, dst)
	case "tiff":
		err = tiff.Encode(out, dst, nil)
	default:
		err = png.Encode(out, dst)
	}
	if err != nil {
		return "", fmt.Errorf("encode processed image: %w", err)
	}

	return outPath, nil
}

// DetectMediaType sniffs a MIME media type from raw image bytes, defaulting
// to image/png when the format cannot be determined.
func DetectMediaType(data []byte) string {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "image/png"
	}
	switch format {
	case "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	case "bmp":
		return "image/bmp"
	case "tiff":
		return "image/tiff"
	default:
		return "image/png"
	}
}

func supportedList() string {
	names := make([]string, 0, len(SupportedFormats))
	for name := range SupportedFormats {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
