// Package imaging turns a picked season image into the JPEG bytes that are
// served and written to the shared output artifact.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"

	"github.com/zapponejosh/seasonal-greetings/internal/filestore"
)

// ContentType is the media type of everything Render produces.
const ContentType = "image/jpeg"

// Quality is the JPEG quality used when re-encoding.
const Quality = 90

// Renderer produces served image bytes.
type Renderer struct {
	// MaxDimension bounds the longer side of the output; 0 disables scaling.
	MaxDimension int
}

// Render reads the image at path and returns JPEG bytes.
//
// JPEG sources within MaxDimension are passed through byte for byte. PNG
// sources are always re-encoded, and anything larger than MaxDimension is
// scaled down keeping its aspect ratio.
func (r Renderer) Render(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	isJPEG := ext == ".jpg" || ext == ".jpeg"

	if isJPEG && r.MaxDimension <= 0 {
		return data, nil
	}

	var img image.Image
	switch ext {
	case ".jpg", ".jpeg":
		img, err = jpeg.Decode(bytes.NewReader(data))
	case ".png":
		img, err = png.Decode(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unsupported format: %s", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}

	bounds := img.Bounds()
	w, h := FitDimensions(bounds.Dx(), bounds.Dy(), r.MaxDimension)
	if w == bounds.Dx() && h == bounds.Dy() {
		if isJPEG {
			return data, nil
		}
		return encode(img)
	}

	resized := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)
	return encode(resized)
}

// WriteArtifact renders src and atomically replaces dst with the result,
// returning the bytes written.
func (r Renderer) WriteArtifact(src, dst string) ([]byte, error) {
	data, err := r.Render(src)
	if err != nil {
		return nil, err
	}
	if err := filestore.WriteFileAtomic(dst, data, 0o644); err != nil {
		return nil, fmt.Errorf("write output: %w", err)
	}
	return data, nil
}

// FitDimensions scales w x h so the longer side is at most limit, keeping the
// aspect ratio. Images already within bounds, or limit <= 0, are unchanged.
func FitDimensions(w, h, limit int) (int, int) {
	if limit <= 0 || (w <= limit && h <= limit) {
		return w, h
	}
	if w >= h {
		return limit, max(1, h*limit/w)
	}
	return max(1, w*limit/h), limit
}

func encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: Quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
