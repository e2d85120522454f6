package parser

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/docreader/internal/imaging"
	"github.com/xxxsen/docreader/internal/storage"
	"github.com/xxxsen/docreader/internal/webdoc"
)

// chunkImageRe matches markdown image references and HTML img tags inside
// chunk content.
var chunkImageRe = regexp.MustCompile(`!\[[^\]]*\]\(([^)\s]+)[^)]*\)|<img\s[^>]*src="([^"]+)"`)

type imageRef struct {
	url   string
	start int
	end   int
}

func scanChunkImages(content string) []imageRef {
	var refs []imageRef
	for _, m := range chunkImageRe.FindAllStringSubmatchIndex(content, -1) {
		ref := imageRef{start: m[0], end: m[1]}
		if m[2] >= 0 {
			ref.url = content[m[2]:m[3]]
		} else if m[4] >= 0 {
			ref.url = content[m[4]:m[5]]
		}
		if ref.url != "" {
			refs = append(refs, ref)
		}
	}
	return refs
}

// resolved is one image reference after resolution: its final public URL,
// the original reference when a re-upload happened, and the normalized
// payload for enrichment (nil when the bytes could not be obtained).
type resolved struct {
	finalURL    string
	originalURL string
	data        []byte
}

// resolveImages turns every distinct referenced URL into a resolved entry.
// Bytes come from the decomposition imageMap when present, otherwise from a
// download; external images are re-uploaded when a store is configured.
func resolveImages(ctx context.Context, urls []string, imageMap map[string][]byte, store storage.Store) map[string]resolved {
	out := make(map[string]resolved, len(urls))
	for _, u := range urls {
		if _, done := out[u]; done {
			continue
		}
		out[u] = resolveOne(ctx, u, imageMap, store)
	}
	return out
}

func resolveOne(ctx context.Context, u string, imageMap map[string][]byte, store storage.Store) resolved {
	// Images uploaded during decomposition resolve from memory and keep
	// their storage URL.
	if data, ok := imageMap[u]; ok && data != nil {
		return resolved{finalURL: u, data: data}
	}
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		return resolved{finalURL: u}
	}
	raw, err := webdoc.Fetch(ctx, u)
	if err != nil {
		logutil.GetLogger(ctx).Warn("fetch referenced image failed",
			zap.String("url", u), zap.Error(err))
		return resolved{finalURL: u}
	}
	data, err := imaging.Process(raw)
	if err != nil {
		if !errors.Is(err, imaging.ErrTooSmall) {
			logutil.GetLogger(ctx).Warn("normalize referenced image failed",
				zap.String("url", u), zap.Error(err))
		}
		return resolved{finalURL: u}
	}
	if _, ours := imageMap[u]; ours || store == nil {
		return resolved{finalURL: u, data: data}
	}
	uploaded, err := store.UploadBytes(ctx, data, ".png")
	if err != nil {
		logutil.GetLogger(ctx).Warn("re-upload referenced image failed",
			zap.String("url", u), zap.Error(err))
		return resolved{finalURL: u, data: data}
	}
	return resolved{finalURL: uploaded, originalURL: u, data: data}
}
