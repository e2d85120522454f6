// Package parser is the ingestion facade: it dispatches payloads to
// format-specific readers, chunks the flattened text and enriches referenced
// images.
package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/docreader/internal/chunking"
	"github.com/xxxsen/docreader/internal/ocr"
	apperr "github.com/xxxsen/docreader/internal/pkg/errors"
	"github.com/xxxsen/docreader/internal/storage"
	"github.com/xxxsen/docreader/internal/textenc"
	"github.com/xxxsen/docreader/internal/vision"
)

const enrichCacheSize = 512

// parsed is the output of a format reader before chunking. imageMap holds
// the payload of every image already uploaded during parsing, keyed by URL;
// a nil value means the bytes must be re-fetched for enrichment.
type parsed struct {
	text     string
	imageMap map[string][]byte
}

// parseRequest bundles everything a format reader may need.
type parseRequest struct {
	name    string
	content []byte
	cfg     ReadConfig
	store   storage.Store
}

type formatReader struct {
	parse func(p *Parser, ctx context.Context, req parseRequest) (parsed, error)
	// imageBearing formats get their chunks scanned for image references.
	imageBearing bool
}

// Parser is safe for concurrent use. The OCR engine is fixed at process
// start; storage and vision backends are built per request.
type Parser struct {
	engine  ocr.Engine
	tempDir string
	cache   *lru.Cache[string, enrichResult]
	formats map[string]formatReader
}

// New builds the facade. engine may be nil when OCR is not configured;
// tempDir hosts transient decomposition artifacts ("" = system default).
func New(engine ocr.Engine, tempDir string) (*Parser, error) {
	cache, err := lru.New[string, enrichResult](enrichCacheSize)
	if err != nil {
		return nil, err
	}
	p := &Parser{engine: engine, tempDir: tempDir, cache: cache}
	p.formats = map[string]formatReader{
		"docx":     {parse: (*Parser).parseDocx, imageBearing: true},
		"doc":      {parse: (*Parser).parseDocx, imageBearing: true},
		"pdf":      {parse: (*Parser).parsePDF, imageBearing: true},
		"md":       {parse: (*Parser).parseMarkdown, imageBearing: true},
		"markdown": {parse: (*Parser).parseMarkdown, imageBearing: true},
		"txt":      {parse: (*Parser).parseText},
		"jpg":      {parse: (*Parser).parseImage, imageBearing: true},
		"jpeg":     {parse: (*Parser).parseImage, imageBearing: true},
		"png":      {parse: (*Parser).parseImage, imageBearing: true},
		"gif":      {parse: (*Parser).parseImage, imageBearing: true},
		"bmp":      {parse: (*Parser).parseImage, imageBearing: true},
		"tiff":     {parse: (*Parser).parseImage, imageBearing: true},
		"webp":     {parse: (*Parser).parseImage, imageBearing: true},
	}
	return p, nil
}

// ParseFile ingests an uploaded document. fileType may be empty, in which
// case it is inferred from the file name extension.
func (p *Parser) ParseFile(ctx context.Context, name, fileType string, content []byte, cfg ReadConfig) (*Result, error) {
	cfg.fillDefaults()
	ft := strings.ToLower(strings.TrimSpace(fileType))
	if ft == "" {
		ft = strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	}
	reader, ok := p.formats[ft]
	if !ok {
		return nil, fmt.Errorf("%w: file type %q", apperr.ErrUnsupportedFormat, ft)
	}

	store, err := buildStore(cfg)
	if err != nil {
		return nil, err
	}
	req := parseRequest{name: name, content: content, cfg: cfg, store: store}
	out, err := reader.parse(p, ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperr.ErrParseFailed, ft, err)
	}
	return p.finish(ctx, out, cfg, store, reader.imageBearing)
}

// ParseURL ingests a web page.
func (p *Parser) ParseURL(ctx context.Context, pageURL, title string, cfg ReadConfig) (*Result, error) {
	cfg.fillDefaults()
	store, err := buildStore(cfg)
	if err != nil {
		return nil, err
	}
	out, err := p.parseWeb(ctx, pageURL, title)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrParseFailed, err)
	}
	return p.finish(ctx, out, cfg, store, true)
}

func buildStore(cfg ReadConfig) (storage.Store, error) {
	if cfg.StorageConfig == nil {
		return nil, nil
	}
	store, err := storage.New(*cfg.StorageConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrStorageFailed, err)
	}
	return store, nil
}

// finish runs the shared tail of every ingestion: sanitize, chunk, and for
// image-bearing formats resolve and enrich chunk image references.
func (p *Parser) finish(ctx context.Context, out parsed, cfg ReadConfig, store storage.Store, imageBearing bool) (*Result, error) {
	text := textenc.Sanitize(out.text)
	raw := chunking.ChunkText(text, cfg.Separators, chunking.Options{
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
		MaxChunks:    cfg.MaxChunks,
	})
	res := &Result{Chunks: make([]Chunk, 0, len(raw))}
	for _, c := range raw {
		res.Chunks = append(res.Chunks, Chunk{Content: c.Content, Seq: c.Seq, Start: c.Start, End: c.End})
	}
	if !imageBearing || !cfg.EnableMultimodal {
		return res, nil
	}
	p.attachImages(ctx, res, out.imageMap, cfg, store)
	return res, nil
}

// attachImages scans chunks for image references, resolves them, enriches
// each distinct image once and attaches per-chunk records.
func (p *Parser) attachImages(ctx context.Context, res *Result, imageMap map[string][]byte, cfg ReadConfig, store storage.Store) {
	refsByChunk := make([][]imageRef, len(res.Chunks))
	var urls []string
	for i := range res.Chunks {
		refsByChunk[i] = scanChunkImages(res.Chunks[i].Content)
		for _, ref := range refsByChunk[i] {
			urls = append(urls, ref.url)
		}
	}
	if len(urls) == 0 {
		return
	}

	resolvedByURL := resolveImages(ctx, urls, imageMap, store)

	var model vision.Model
	if cfg.VisionConfig != nil {
		m, err := vision.New(*cfg.VisionConfig)
		if err != nil {
			logutil.GetLogger(ctx).Warn("build vision backend failed", zap.Error(err))
		} else {
			model = m
		}
	}
	enr := newEnricher(p.engine, model, p.cache)

	var tasks []enrichTask
	taskIndex := map[string]int{}
	for _, r := range resolvedByURL {
		if r.data == nil {
			continue
		}
		if _, ok := taskIndex[r.finalURL]; ok {
			continue
		}
		taskIndex[r.finalURL] = len(tasks)
		tasks = append(tasks, enrichTask{url: r.finalURL, data: r.data})
	}
	enriched := enr.enrichAll(ctx, tasks)

	for i := range res.Chunks {
		for _, ref := range refsByChunk[i] {
			r := resolvedByURL[ref.url]
			rec := ImageRecord{
				URL:         r.finalURL,
				OriginalURL: r.originalURL,
				Start:       ref.start,
				End:         ref.end,
			}
			if idx, ok := taskIndex[r.finalURL]; ok && idx < len(enriched) {
				rec.OCRText = enriched[idx].OCRText
				rec.Caption = enriched[idx].Caption
			}
			res.Chunks[i].Images = append(res.Chunks[i].Images, rec)
		}
	}
}
