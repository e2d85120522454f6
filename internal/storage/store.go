// Package storage uploads extracted document images to object storage and
// hands back publicly reachable URLs.
package storage

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Store persists image payloads and returns the public URL of the object.
type Store interface {
	UploadBytes(ctx context.Context, data []byte, ext string) (string, error)
	UploadFile(ctx context.Context, filePath string, ext string) (string, error)
}

// Config selects a backend by name; Data carries backend-specific settings
// and is decoded by the chosen factory.
type Config struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type Factory func(args interface{}) (Store, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

func Register(name string, factory Factory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registryMu.Lock()
	registry[key] = factory
	registryMu.Unlock()
}

func New(cfg Config) (Store, error) {
	key := strings.ToLower(strings.TrimSpace(cfg.Type))
	if key == "" {
		return nil, fmt.Errorf("storage.type is required")
	}
	registryMu.RLock()
	factory := registry[key]
	registryMu.RUnlock()
	if factory == nil {
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
	return factory(cfg.Data)
}

func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return fmt.Errorf("storage config is required")
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode storage config: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode storage config: %w", err)
	}
	return nil
}

// BuildKey produces a collision-free object key of the form
// {prefix}/images/{uuid}{ext}.
func BuildKey(prefix, ext string) string {
	u := uuid.New()
	name := hex.EncodeToString(u[:]) + ext
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return path.Join("images", name)
	}
	return path.Join(prefix, "images", name)
}
