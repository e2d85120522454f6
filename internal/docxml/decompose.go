package docxml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/docreader/internal/imaging"
	"github.com/xxxsen/docreader/internal/storage"
)

// smallDocBlocks is the size below which decomposition runs sequentially;
// the pool overhead is not worth it for short documents.
const smallDocBlocks = 30

// Options tune one decomposition run.
type Options struct {
	// EnableImages extracts, normalizes and uploads embedded images.
	EnableImages bool
	// MaxPages truncates the page map; 0 means unlimited.
	MaxPages int
	// Workers bounds the page worker pool; 0 derives it from NumCPU.
	Workers int
	// TempDir hosts transient artifacts; "" means the system temp dir.
	TempDir string
}

// Result is the flattened document: markdown-ish text with image references
// substituted, plus the payload of every uploaded image keyed by its URL.
type Result struct {
	Text     string
	ImageMap map[string][]byte
}

// contentItem is one ordered piece of a processed page: either plain text or
// an image placeholder pointing at a transient file.
type contentItem struct {
	text  string
	relID string
	path  string
}

type pageOutput struct {
	items []contentItem
	err   error
}

// Decompose runs the page-parallel extraction pipeline: map pages, fan the
// spans out to workers that each re-open the document from src, then stitch
// results back in page order. Transient artifacts are removed in all cases;
// a failed page degrades to empty content.
func Decompose(ctx context.Context, src *Source, store storage.Store, opts Options) (*Result, error) {
	r, closer, err := src.OpenReader()
	if err != nil {
		return nil, err
	}
	blocks := r.Blocks()
	spans := MapPages(blocks, opts.MaxPages)
	if len(spans) == 0 {
		closer.Close()
		return &Result{ImageMap: map[string][]byte{}}, nil
	}

	tmpDir, err := os.MkdirTemp(opts.TempDir, "docreader-pages-*")
	if err != nil {
		closer.Close()
		return nil, fmt.Errorf("create transient dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	results := make(map[int]pageOutput, len(spans))
	if len(blocks) < smallDocBlocks {
		for _, span := range spans {
			items, perr := extractItems(ctx, r, span, tmpDir, opts.EnableImages)
			results[span.Page] = pageOutput{items: items, err: perr}
		}
		closer.Close()
	} else {
		closer.Close()
		var mu sync.Mutex
		var wg sync.WaitGroup
		tasks := make(chan PageSpan)
		workers := opts.Workers
		if workers <= 0 {
			workers = runtime.NumCPU()
		}
		if workers > len(spans) {
			workers = len(spans)
		}
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for span := range tasks {
					items, perr := processPage(ctx, src, span, tmpDir, opts.EnableImages)
					mu.Lock()
					results[span.Page] = pageOutput{items: items, err: perr}
					mu.Unlock()
				}
			}()
		}
		for _, span := range spans {
			tasks <- span
		}
		close(tasks)
		wg.Wait()
	}

	return assemble(ctx, store, spans, results)
}

// processPage is one worker task: open a fresh view of the document and
// extract the span's content.
func processPage(ctx context.Context, src *Source, span PageSpan, tmpDir string, images bool) ([]contentItem, error) {
	r, closer, err := src.OpenReader()
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return extractItems(ctx, r, span, tmpDir, images)
}

func extractItems(ctx context.Context, r *Reader, span PageSpan, tmpDir string, images bool) ([]contentItem, error) {
	blocks := r.Blocks()
	if span.End > len(blocks) {
		span.End = len(blocks)
	}
	var items []contentItem
	for _, b := range blocks[span.Start:span.End] {
		if b.Text != "" {
			items = append(items, contentItem{text: b.Text})
		}
		if !images {
			continue
		}
		for _, relID := range b.Images {
			item, err := extractImage(r, relID, tmpDir)
			if err != nil {
				if errors.Is(err, imaging.ErrTooSmall) {
					continue
				}
				logutil.GetLogger(ctx).Warn("skip unreadable embedded image",
					zap.String("rel_id", relID), zap.Error(err))
				continue
			}
			items = append(items, item)
		}
	}
	return items, nil
}

func extractImage(r *Reader, relID string, tmpDir string) (contentItem, error) {
	data, _, err := r.ReadMedia(relID)
	if err != nil {
		return contentItem{}, err
	}
	png, err := imaging.Process(data)
	if err != nil {
		return contentItem{}, err
	}
	f, err := os.CreateTemp(tmpDir, "img-*.png")
	if err != nil {
		return contentItem{}, err
	}
	if _, err := f.Write(png); err != nil {
		f.Close()
		return contentItem{}, err
	}
	if err := f.Close(); err != nil {
		return contentItem{}, err
	}
	return contentItem{relID: relID, path: f.Name()}, nil
}

// assemble uploads each unique image once, substitutes markdown references
// and concatenates page texts in ascending page order.
func assemble(ctx context.Context, store storage.Store, spans []PageSpan, results map[int]pageOutput) (*Result, error) {
	imageMap := map[string][]byte{}
	urlByRel := map[string]string{}
	var pages []string

	for _, span := range spans {
		out := results[span.Page]
		if out.err != nil {
			logutil.GetLogger(ctx).Error("page decomposition failed",
				zap.Int("page", span.Page), zap.Error(out.err))
			continue
		}
		var parts []string
		for _, item := range out.items {
			if item.path == "" {
				parts = append(parts, item.text)
				continue
			}
			url, ok := urlByRel[item.relID]
			if !ok {
				u, err := store.UploadFile(ctx, item.path, ".png")
				if err != nil {
					logutil.GetLogger(ctx).Warn("upload extracted image failed",
						zap.String("rel_id", item.relID), zap.Error(err))
					continue
				}
				payload, err := os.ReadFile(item.path)
				if err != nil {
					logutil.GetLogger(ctx).Warn("read transient image failed",
						zap.String("path", item.path), zap.Error(err))
					continue
				}
				urlByRel[item.relID] = u
				imageMap[u] = payload
				url = u
			}
			parts = append(parts, fmt.Sprintf("![](%s)", url))
		}
		if text := strings.Join(parts, "\n"); text != "" {
			pages = append(pages, text)
		}
	}
	return &Result{Text: strings.Join(pages, "\n\n"), ImageMap: imageMap}, nil
}
