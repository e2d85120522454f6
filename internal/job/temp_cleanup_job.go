package job

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// TempCleanupJob sweeps stale transient artifacts (spilled documents and
// page image dirs) that survived a crash mid-ingestion. Normal requests
// remove their own artifacts.
type TempCleanupJob struct {
	dir    string
	maxAge time.Duration
}

func NewTempCleanupJob(dir string, maxAge time.Duration) *TempCleanupJob {
	if dir == "" {
		dir = os.TempDir()
	}
	return &TempCleanupJob{dir: dir, maxAge: maxAge}
}

func (j *TempCleanupJob) Name() string {
	return "temp_cleanup"
}

func (j *TempCleanupJob) Run(ctx context.Context) error {
	maxAge := j.maxAge
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	cutoff := time.Now().Add(-maxAge)

	entries, err := os.ReadDir(j.dir)
	if err != nil {
		return err
	}
	removed := 0
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), "docreader-") {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(j.dir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			logutil.GetLogger(ctx).Warn("remove stale artifact failed",
				zap.String("path", path), zap.Error(err))
			continue
		}
		removed++
	}
	if removed > 0 {
		logutil.GetLogger(ctx).Info("stale artifacts removed", zap.Int("count", removed))
	}
	return nil
}
