package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"

	commons3 "github.com/xxxsen/common/s3"
)

type cosConfig struct {
	SecretID  string `json:"secret_id"`
	SecretKey string `json:"secret_key"`
	Region    string `json:"region"`
	Bucket    string `json:"bucket"`
	Prefix    string `json:"prefix"`
}

// cosStore uploads through Tencent COS's S3-compatible endpoint.
type cosStore struct {
	client *commons3.S3Client
	cfg    *cosConfig
}

func init() {
	Register("cos", createCOSStore)
}

func createCOSStore(args interface{}) (Store, error) {
	cfg := &cosConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	if cfg.SecretID == "" || cfg.SecretKey == "" || cfg.Region == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("cos secret_id/secret_key/region/bucket are required")
	}
	client, err := commons3.New(
		commons3.WithEndpoint(fmt.Sprintf("cos.%s.myqcloud.com", cfg.Region)),
		commons3.WithSecret(cfg.SecretID, cfg.SecretKey),
		commons3.WithBucket(cfg.Bucket),
		commons3.WithRegion(cfg.Region),
		commons3.WithSSL(true),
	)
	if err != nil {
		return nil, err
	}
	return &cosStore{client: client, cfg: cfg}, nil
}

func (s *cosStore) objectURL(key string) string {
	return fmt.Sprintf("https://%s.cos.%s.myqcloud.com/%s", s.cfg.Bucket, s.cfg.Region, key)
}

func (s *cosStore) UploadBytes(ctx context.Context, data []byte, ext string) (string, error) {
	key := BuildKey(s.cfg.Prefix, ext)
	if _, err := s.client.Upload(ctx, key, bytes.NewReader(data), int64(len(data))); err != nil {
		return "", fmt.Errorf("cos upload: %w", err)
	}
	return s.objectURL(key), nil
}

func (s *cosStore) UploadFile(ctx context.Context, filePath string, ext string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("open upload source: %w", err)
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return "", err
	}
	key := BuildKey(s.cfg.Prefix, ext)
	if _, err := s.client.Upload(ctx, key, f, st.Size()); err != nil {
		return "", fmt.Errorf("cos upload: %w", err)
	}
	return s.objectURL(key), nil
}
