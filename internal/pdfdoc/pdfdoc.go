// Package pdfdoc extracts text from PDF payloads, page by page.
package pdfdoc

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractText returns the concatenated plain text of every page, pages
// separated by blank lines. Pages that fail to decode are skipped; the
// document fails only when no page yields text and at least one page errored.
func ExtractText(data []byte) (text string, err error) {
	// The underlying parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var pages []string
	var lastErr error
	total := reader.NumPage()
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, perr := page.GetPlainText(nil)
		if perr != nil {
			lastErr = perr
			continue
		}
		if content = strings.TrimSpace(content); content != "" {
			pages = append(pages, content)
		}
	}
	if len(pages) == 0 && lastErr != nil {
		return "", fmt.Errorf("extract pdf text: %w", lastErr)
	}
	return strings.Join(pages, "\n\n"), nil
}
