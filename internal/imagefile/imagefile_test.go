package imagefile

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/image-to-tex/internal/common"
)

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: uint8(x % 256), A: 255})
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestValidateOK(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "eq.png", 64, 32)

	require.NoError(t, Validate(path, DefaultLimits))

	meta, err := Info(path, DefaultLimits)
	require.NoError(t, err)
	assert.Equal(t, "png", meta.Format)
	assert.Equal(t, 64, meta.Width)
	assert.Equal(t, 32, meta.Height)
	assert.Greater(t, meta.SizeBytes, int64(0))
}

func TestValidateMissingFile(t *testing.T) {
	err := Validate(filepath.Join(t.TempDir(), "nope.png"), DefaultLimits)
	assert.ErrorIs(t, err, common.ErrImageInvalid)
	assert.Contains(t, err.Error(), "not found")
}

func TestValidateDirectory(t *testing.T) {
	err := Validate(t.TempDir(), DefaultLimits)
	assert.ErrorIs(t, err, common.ErrImageInvalid)
}

func TestValidateTooLarge(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.png")
	// 2 MB of junk against a 1 MB cap; the size check fires before decoding
	require.NoError(t, os.WriteFile(path, make([]byte, 2*1024*1024), 0o644))

	err := Validate(path, Limits{MaxSizeMB: 1})
	assert.ErrorIs(t, err, common.ErrImageInvalid)
	assert.Contains(t, err.Error(), "too large")
}

func TestValidateFormatByContentNotExtension(t *testing.T) {
	dir := t.TempDir()
	// extension lies: the content is plain text
	path := filepath.Join(dir, "fake.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))

	err := Validate(path, DefaultLimits)
	assert.ErrorIs(t, err, common.ErrImageInvalid)
}

func TestInfoDetectsJPEGWithPNGExtension(t *testing.T) {
	dir := t.TempDir()
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))

	path := filepath.Join(dir, "actually-jpeg.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	meta, err := Info(path, DefaultLimits)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", meta.Format)
}

func TestPreprocessNoResizeNeeded(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "small.png", 100, 50)

	out, err := Preprocess(path, 2048)
	require.NoError(t, err)
	assert.Equal(t, path, out)
}

func TestPreprocessDownscales(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "wide.png", 400, 100)

	out, err := Preprocess(path, 200)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "wide_processed.png"), out)

	meta, err := Info(out, DefaultLimits)
	require.NoError(t, err)
	assert.Equal(t, 200, meta.Width)
	assert.Equal(t, 50, meta.Height)

	// original untouched
	orig, err := Info(path, DefaultLimits)
	require.NoError(t, err)
	assert.Equal(t, 400, orig.Width)
}

func TestDetectMediaType(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))

	var pngBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, img))
	assert.Equal(t, "image/png", DetectMediaType(pngBuf.Bytes()))

	var jpgBuf bytes.Buffer
	require.NoError(t, jpeg.Encode(&jpgBuf, img, nil))
	assert.Equal(t, "image/jpeg", DetectMediaType(jpgBuf.Bytes()))

	assert.Equal(t, "image/png", DetectMediaType([]byte("garbage")))
}
