package imaging

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
)

func solid(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 120, B: 40, A: 255})
		}
	}
	return img
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solid(w, h)))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func writeJPEG(t *testing.T, path string, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, solid(w, h), nil))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return buf.Bytes()
}

func TestRender_JPEGPassthrough(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.jpg")
	orig := writeJPEG(t, path, 40, 20)

	out, err := Renderer{}.Render(path)
	require.NoError(t, err)
	assert.Equal(t, orig, out)
}

func TestRender_PNGTranscoded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.PNG")
	writePNG(t, path, 30, 10)

	out, err := Renderer{}.Render(path)
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Width)
	assert.Equal(t, 10, cfg.Height)
}

func TestRender_Downscales(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wide.jpeg")
	writeJPEG(t, path, 200, 100)

	out, err := Renderer{MaxDimension: 50}.Render(path)
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Width)
	assert.Equal(t, 25, cfg.Height)
}

func TestRender_SmallJPEGUntouchedWithLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "small.jpg")
	orig := writeJPEG(t, path, 20, 20)

	out, err := Renderer{MaxDimension: 100}.Render(path)
	require.NoError(t, err)
	assert.Equal(t, orig, out)
}

func TestRender_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Renderer{}.Render(filepath.Join(dir, "missing.jpg"))
	assert.Error(t, err)

	broken := filepath.Join(dir, "broken.png")
	require.NoError(t, os.WriteFile(broken, []byte("not a png"), 0o644))
	_, err = Renderer{}.Render(broken)
	assert.Error(t, err)
}

func TestWriteArtifact(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.png")
	dst := filepath.Join(dir, "output.jpg")
	writePNG(t, src, 8, 8)

	data, err := Renderer{}.WriteArtifact(src, dst)
	require.NoError(t, err)

	onDisk, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, data, onDisk)
}

func TestFitDimensions(t *testing.T) {
	tests := []struct {
		w, h, limit  int
		wantW, wantH int
	}{
		{100, 50, 0, 100, 50},
		{100, 50, 200, 100, 50},
		{400, 200, 100, 100, 50},
		{200, 400, 100, 50, 100},
		{1000, 1, 10, 10, 1},
	}
	for _, tt := range tests {
		w, h := FitDimensions(tt.w, tt.h, tt.limit)
		assert.Equal(t, tt.wantW, w)
		assert.Equal(t, tt.wantH, h)
	}
}
