package docxml

const (
	// largeDocBlocks is the block count above which page boundaries are
	// estimated instead of scanned.
	largeDocBlocks = 1000
	// estimatedBlocksPerPage drives the estimate for large documents.
	estimatedBlocksPerPage = 25
)

// PageSpan is a half-open block range [Start, End) belonging to one page.
// Page numbers are dense from 0 and every span is non-empty.
type PageSpan struct {
	Page  int
	Start int
	End   int
}

// MapPages groups blocks into pages. Large documents get a fixed
// blocks-per-page estimate; everything else is a sequential scan that opens
// a new page on an explicit page break and closes one on a section boundary.
// maxPages > 0 truncates the result.
func MapPages(blocks []Block, maxPages int) []PageSpan {
	if len(blocks) == 0 {
		return nil
	}
	var spans []PageSpan
	if len(blocks) >= largeDocBlocks {
		for start := 0; start < len(blocks); start += estimatedBlocksPerPage {
			end := start + estimatedBlocksPerPage
			if end > len(blocks) {
				end = len(blocks)
			}
			spans = append(spans, PageSpan{Page: len(spans), Start: start, End: end})
		}
		return truncate(spans, maxPages)
	}

	start := 0
	for i, b := range blocks {
		if b.PageBreak && i > start {
			spans = append(spans, PageSpan{Page: len(spans), Start: start, End: i})
			start = i
		}
		if b.SectionEnd && i+1 > start {
			spans = append(spans, PageSpan{Page: len(spans), Start: start, End: i + 1})
			start = i + 1
		}
	}
	if start < len(blocks) {
		spans = append(spans, PageSpan{Page: len(spans), Start: start, End: len(blocks)})
	}
	return truncate(spans, maxPages)
}

func truncate(spans []PageSpan, maxPages int) []PageSpan {
	if maxPages > 0 && len(spans) > maxPages {
		return spans[:maxPages]
	}
	return spans
}
