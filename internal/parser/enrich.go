package parser

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/xxxsen/docreader/internal/ocr"
	"github.com/xxxsen/docreader/internal/vision"
)

const (
	defaultEnrichConcurrency = 5
	enrichStageTimeout       = 30 * time.Second
)

type enrichTask struct {
	url  string
	data []byte
}

type enrichResult struct {
	OCRText string
	Caption string
}

// enricher runs OCR and captioning over a batch of images under a global
// in-flight ceiling. Per-image failures degrade to empty strings; the batch
// itself never fails and always yields one result per task, in order.
type enricher struct {
	sem          *semaphore.Weighted
	engine       ocr.Engine
	model        vision.Model
	cache        *lru.Cache[string, enrichResult]
	stageTimeout time.Duration
}

func newEnricher(engine ocr.Engine, model vision.Model, cache *lru.Cache[string, enrichResult]) *enricher {
	return &enricher{
		sem:          semaphore.NewWeighted(defaultEnrichConcurrency),
		engine:       engine,
		model:        model,
		cache:        cache,
		stageTimeout: enrichStageTimeout,
	}
}

func (e *enricher) enrichAll(ctx context.Context, tasks []enrichTask) []enrichResult {
	results := make([]enrichResult, len(tasks))
	var wg sync.WaitGroup
	for i := range tasks {
		if err := e.sem.Acquire(ctx, 1); err != nil {
			// Context gone; remaining images stay unenriched.
			break
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer e.sem.Release(1)
			results[i] = e.enrichOne(ctx, tasks[i])
			tasks[i].data = nil
		}(i)
	}
	wg.Wait()
	return results
}

func (e *enricher) enrichOne(ctx context.Context, task enrichTask) enrichResult {
	if e.cache != nil {
		if cached, ok := e.cache.Get(task.url); ok {
			return cached
		}
	}
	var res enrichResult
	if e.engine != nil && len(task.data) > 0 {
		ocrCtx, cancel := context.WithTimeout(ctx, e.stageTimeout)
		text, err := e.engine.Recognize(ocrCtx, task.data)
		cancel()
		if err != nil {
			logutil.GetLogger(ctx).Warn("image ocr failed",
				zap.String("url", task.url), zap.Error(err))
		} else {
			res.OCRText = text
		}
	}
	// Captioning is only worth a model call when the image carries text.
	if res.OCRText != "" && e.model != nil {
		capCtx, cancel := context.WithTimeout(ctx, e.stageTimeout)
		caption, err := e.model.Caption(capCtx, task.data, "image/png")
		cancel()
		if err != nil {
			logutil.GetLogger(ctx).Warn("image captioning failed",
				zap.String("url", task.url), zap.Error(err))
		} else {
			res.Caption = caption
		}
	}
	if e.cache != nil {
		e.cache.Add(task.url, res)
	}
	return res
}
