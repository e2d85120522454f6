// Package ocr extracts text from document images. Two backends are
// available: local Tesseract (compiled in with the "ocr" build tag) and a
// remote multimodal endpoint speaking the OpenAI chat-completions protocol.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotEnabled is returned by the Tesseract backend when the binary was
// built without the "ocr" tag.
var ErrNotEnabled = errors.New("ocr: tesseract support not enabled, rebuild with -tags ocr")

// Engine recognizes the text content of a single image.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, image []byte) (string, error)
}

// Config selects and parameterizes the OCR backend.
type Config struct {
	Type    string `json:"type"`
	Lang    string `json:"lang"`
	Model   string `json:"model"`
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url"`
}

type Factory func(cfg Config) (Engine, error)

var registry = map[string]Factory{}

func Register(name string, factory Factory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registry[key] = factory
}

func New(cfg Config) (Engine, error) {
	key := strings.ToLower(strings.TrimSpace(cfg.Type))
	if key == "" {
		return nil, fmt.Errorf("ocr.type is required")
	}
	factory := registry[key]
	if factory == nil {
		return nil, fmt.Errorf("unsupported ocr type: %s", cfg.Type)
	}
	return factory(cfg)
}
