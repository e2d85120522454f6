//go:build !ocr

package ocr

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTesseractStubReportsNotEnabled(t *testing.T) {
	engine, err := New(Config{Type: "tesseract"})
	require.NoError(t, err)

	_, err = engine.Recognize(context.Background(), []byte("png-bytes"))
	require.ErrorIs(t, err, ErrNotEnabled)
}
