//go:build !ocr

package ocr

import "context"

// Stub keeps the "tesseract" backend name registered in builds without the
// ocr tag so that configuration errors surface clearly at request time.
type tesseractEngine struct{}

func init() {
	Register("tesseract", createTesseractEngine)
}

func createTesseractEngine(cfg Config) (Engine, error) {
	return &tesseractEngine{}, nil
}

func (e *tesseractEngine) Name() string {
	return "tesseract"
}

func (e *tesseractEngine) Recognize(ctx context.Context, image []byte) (string, error) {
	return "", ErrNotEnabled
}
