package parser

import (
	"context"
	"fmt"

	"github.com/xxxsen/docreader/internal/docxml"
	"github.com/xxxsen/docreader/internal/imaging"
	"github.com/xxxsen/docreader/internal/pdfdoc"
	"github.com/xxxsen/docreader/internal/textenc"
	"github.com/xxxsen/docreader/internal/webdoc"
)

func (p *Parser) parseText(ctx context.Context, req parseRequest) (parsed, error) {
	_ = ctx
	return parsed{text: textenc.Decode(req.content)}, nil
}

// parseMarkdown keeps the source untouched; image references are picked up
// later by the chunk scan and fetched on demand.
func (p *Parser) parseMarkdown(ctx context.Context, req parseRequest) (parsed, error) {
	_ = ctx
	return parsed{text: textenc.Decode(req.content)}, nil
}

// parseDocx also serves .doc uploads: modern files mislabeled as .doc are
// really OOXML containers and open fine; genuine legacy binaries fail with
// an explicit error.
func (p *Parser) parseDocx(ctx context.Context, req parseRequest) (parsed, error) {
	src, err := docxml.NewSource(req.content, p.tempDir)
	if err != nil {
		return parsed{}, err
	}
	defer src.Cleanup()

	enableImages := req.cfg.EnableMultimodal && req.store != nil
	res, err := docxml.Decompose(ctx, src, req.store, docxml.Options{
		EnableImages: enableImages,
		MaxPages:     req.cfg.MaxPages,
		TempDir:      p.tempDir,
	})
	if err != nil {
		return parsed{}, fmt.Errorf("decompose document (legacy binary .doc is not supported): %w", err)
	}
	return parsed{text: res.Text, imageMap: res.ImageMap}, nil
}

func (p *Parser) parsePDF(ctx context.Context, req parseRequest) (parsed, error) {
	_ = ctx
	text, err := pdfdoc.ExtractText(req.content)
	if err != nil {
		return parsed{}, err
	}
	return parsed{text: text}, nil
}

// parseImage uploads the normalized image and emits a single markdown
// reference as the document text, so the regular chunk/enrich pipeline
// applies.
func (p *Parser) parseImage(ctx context.Context, req parseRequest) (parsed, error) {
	if req.store == nil {
		return parsed{}, fmt.Errorf("image ingestion requires a storage_config")
	}
	data, err := imaging.Process(req.content)
	if err != nil {
		return parsed{}, err
	}
	url, err := req.store.UploadBytes(ctx, data, ".png")
	if err != nil {
		return parsed{}, err
	}
	return parsed{
		text:     fmt.Sprintf("![](%s)", url),
		imageMap: map[string][]byte{url: data},
	}, nil
}

func (p *Parser) parseWeb(ctx context.Context, pageURL, title string) (parsed, error) {
	data, err := webdoc.Fetch(ctx, pageURL)
	if err != nil {
		return parsed{}, err
	}
	pageTitle, text, err := webdoc.Extract(data, pageURL)
	if err != nil {
		return parsed{}, err
	}
	if title == "" {
		title = pageTitle
	}
	if title != "" {
		text = "# " + title + "\n\n" + text
	}
	return parsed{text: text}, nil
}
