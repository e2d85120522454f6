package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"

	"github.com/xxxsen/docreader/internal/ocr"
)

type Config struct {
	Port            int              `json:"port"`
	TempDir         string           `json:"temp_dir"`
	MaxBodySizeMB   int              `json:"max_body_size_mb"`
	RateLimitMillis int              `json:"rate_limit_millis"`
	CORSAllowlist   []string         `json:"cors_allowlist"`
	CleanupCron     string           `json:"cleanup_cron"`
	CleanupMaxAgeH  int              `json:"cleanup_max_age_hours"`
	LogConfig       logger.LogConfig `json:"log_config"`
	OCR             ocr.Config       `json:"ocr"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.MaxBodySizeMB <= 0 {
		cfg.MaxBodySizeMB = 64
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.CleanupCron == "" {
		cfg.CleanupCron = "0 * * * *"
	}
	if cfg.CleanupMaxAgeH <= 0 {
		cfg.CleanupMaxAgeH = 24
	}
	if cfg.OCR.Type == "" {
		cfg.OCR.Type = "tesseract"
	}
	return &cfg, nil
}
