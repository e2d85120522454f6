// Package imaging normalizes extracted document images: decode, drop
// decorative tiny images, downscale oversized ones and re-encode as PNG.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	// MinDimension filters out icons, bullets and tracking pixels.
	MinDimension = 50
	// MaxDimension is the longest allowed side after normalization.
	MaxDimension = 1920
)

// ErrTooSmall marks images below MinDimension on either side; callers skip
// those rather than failing the document.
var ErrTooSmall = errors.New("imaging: image below minimum dimension")

// Decode parses raw image bytes, returning the decoded image and format name.
func Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return img, format, nil
}

// Downscale shrinks img so its longest side is at most MaxDimension,
// preserving aspect ratio. Images already within bounds pass through.
func Downscale(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	long := w
	if h > long {
		long = h
	}
	if long <= MaxDimension {
		return img
	}
	scale := float64(MaxDimension) / float64(long)
	nw := int(float64(w) * scale)
	nh := int(float64(h) * scale)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// EncodePNG serializes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Process runs the full normalization pipeline on raw image bytes. It returns
// ErrTooSmall for images under MinDimension on either side.
func Process(data []byte) ([]byte, error) {
	img, _, err := Decode(data)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	if b.Dx() < MinDimension || b.Dy() < MinDimension {
		return nil, ErrTooSmall
	}
	return EncodePNG(Downscale(img))
}
