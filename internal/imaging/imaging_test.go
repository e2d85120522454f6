package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func solidImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 120, G: 40, B: 200, A: 255})
		}
	}
	return img
}

func TestProcessRejectsTinyImages(t *testing.T) {
	data, err := EncodePNG(solidImage(32, 200))
	require.NoError(t, err)

	_, err = Process(data)
	require.ErrorIs(t, err, ErrTooSmall)
}

func TestProcessKeepsNormalImages(t *testing.T) {
	data, err := EncodePNG(solidImage(640, 480))
	require.NoError(t, err)

	out, err := Process(data)
	require.NoError(t, err)

	img, format, err := Decode(out)
	require.NoError(t, err)
	require.Equal(t, "png", format)
	require.Equal(t, 640, img.Bounds().Dx())
	require.Equal(t, 480, img.Bounds().Dy())
}

func TestDownscaleBoundsLongestSide(t *testing.T) {
	out := Downscale(solidImage(3840, 1080))
	require.Equal(t, MaxDimension, out.Bounds().Dx())
	require.Equal(t, 540, out.Bounds().Dy())
}

func TestDownscalePassThrough(t *testing.T) {
	src := solidImage(800, 600)
	require.Equal(t, src, Downscale(src))
}

func TestDecodeGarbageFails(t *testing.T) {
	_, _, err := Decode([]byte("not an image"))
	require.Error(t, err)
}
