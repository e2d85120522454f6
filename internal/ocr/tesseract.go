//go:build ocr

package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// tesseractEngine runs the system Tesseract install through gosseract. A
// fresh client per call keeps recognition safe under concurrent enrichment.
type tesseractEngine struct {
	lang string
}

func init() {
	Register("tesseract", createTesseractEngine)
}

func createTesseractEngine(cfg Config) (Engine, error) {
	lang := strings.TrimSpace(cfg.Lang)
	if lang == "" {
		lang = "eng"
	}
	return &tesseractEngine{lang: lang}, nil
}

func (e *tesseractEngine) Name() string {
	return "tesseract"
}

func (e *tesseractEngine) Recognize(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(strings.Split(e.lang, "+")...); err != nil {
		return "", fmt.Errorf("set ocr language: %w", err)
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("set ocr image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize image: %w", err)
	}
	return strings.TrimSpace(text), nil
}
