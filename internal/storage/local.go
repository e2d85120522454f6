package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type localConfig struct {
	Dir       string `json:"dir"`
	Prefix    string `json:"prefix"`
	PublicURL string `json:"public_url"`
}

// localStore writes objects under a directory tree. Mostly useful for
// development and tests.
type localStore struct {
	cfg *localConfig
}

func init() {
	Register("local", createLocalStore)
}

func createLocalStore(args interface{}) (Store, error) {
	cfg := &localConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	if cfg.Dir == "" {
		return nil, fmt.Errorf("local storage dir is required")
	}
	return &localStore{cfg: cfg}, nil
}

func (s *localStore) objectURL(key string) string {
	if s.cfg.PublicURL != "" {
		return strings.TrimSuffix(s.cfg.PublicURL, "/") + "/" + key
	}
	return "file://" + filepath.Join(s.cfg.Dir, filepath.FromSlash(key))
}

func (s *localStore) write(key string, r io.Reader) error {
	dst := filepath.Join(s.cfg.Dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, r)
	return err
}

func (s *localStore) UploadBytes(ctx context.Context, data []byte, ext string) (string, error) {
	_ = ctx
	key := BuildKey(s.cfg.Prefix, ext)
	if err := s.write(key, bytes.NewReader(data)); err != nil {
		return "", err
	}
	return s.objectURL(key), nil
}

func (s *localStore) UploadFile(ctx context.Context, filePath string, ext string) (string, error) {
	_ = ctx
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("open upload source: %w", err)
	}
	defer f.Close()
	key := BuildKey(s.cfg.Prefix, ext)
	if err := s.write(key, f); err != nil {
		return "", err
	}
	return s.objectURL(key), nil
}
