// Package vision produces natural-language captions for document images via
// multimodal model backends.
package vision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnavailable is returned when a backend is not configured (missing key or
// endpoint). Enrichment treats it like any other per-image failure.
var ErrUnavailable = errors.New("vision backend unavailable")

const defaultPrompt = "Describe the content of this image in one or two concise sentences. " +
	"Focus on text, tables, charts and diagrams if present."

// Model captions a single image. The image is raw encoded bytes with its MIME
// type (image/png unless stated otherwise).
type Model interface {
	Name() string
	Caption(ctx context.Context, image []byte, mime string) (string, error)
}

// Config selects the captioning backend per request.
type Config struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	APIKey   string `json:"api_key"`
	BaseURL  string `json:"base_url"`
	Prompt   string `json:"prompt"`
}

func (c Config) prompt() string {
	if strings.TrimSpace(c.Prompt) != "" {
		return c.Prompt
	}
	return defaultPrompt
}

type Factory func(cfg Config) (Model, error)

var registry = map[string]Factory{}

func Register(name string, factory Factory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registry[key] = factory
}

func New(cfg Config) (Model, error) {
	key := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if key == "" {
		return nil, fmt.Errorf("vision.provider is required")
	}
	factory := registry[key]
	if factory == nil {
		return nil, fmt.Errorf("unsupported vision provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

func decodeBody(data []byte, dst interface{}) error {
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode vision response: %w", err)
	}
	return nil
}
