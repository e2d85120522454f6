// Package webdoc fetches web pages and flattens them to markdown-ish text
// suitable for chunking: scripts and boilerplate stripped, images rewritten
// to markdown references with absolute URLs.
package webdoc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const (
	defaultFetchTimeout = 30 * time.Second
	maxBodySize         = 32 << 20
	userAgent           = "docreader/1.0"
)

// skipped subtrees contribute no content.
var skippedElements = map[string]struct{}{
	"script": {}, "style": {}, "noscript": {}, "iframe": {},
	"nav": {}, "header": {}, "footer": {}, "aside": {}, "form": {},
}

// block elements terminate the current line.
var blockElements = map[string]struct{}{
	"p": {}, "div": {}, "section": {}, "article": {}, "li": {}, "tr": {},
	"h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
	"br": {}, "blockquote": {}, "pre": {}, "table": {},
}

// Fetch downloads a page with a bounded body size.
func Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultFetchTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build fetch request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", pageURL, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", pageURL, err)
	}
	return data, nil
}

// Extract parses an HTML document and returns its title and flattened text.
// Image sources are resolved against baseURL and emitted as markdown
// references in place.
func Extract(data []byte, baseURL string) (string, string, error) {
	doc, err := html.Parse(strings.NewReader(string(data)))
	if err != nil {
		return "", "", fmt.Errorf("parse html: %w", err)
	}
	base, _ := url.Parse(baseURL)

	var title string
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			name := strings.ToLower(n.Data)
			if _, skip := skippedElements[name]; skip {
				return
			}
			if name == "title" && title == "" {
				title = strings.TrimSpace(textContent(n))
				return
			}
			if name == "img" {
				if ref := imageRef(n, base); ref != "" {
					sb.WriteString("\n")
					sb.WriteString(ref)
					sb.WriteString("\n")
				}
				return
			}
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				sb.WriteString(text)
				sb.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode {
			if _, block := blockElements[strings.ToLower(n.Data)]; block {
				sb.WriteString("\n")
			}
		}
	}
	walk(doc)

	return title, normalize(sb.String()), nil
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func imageRef(n *html.Node, base *url.URL) string {
	var src, alt string
	for _, attr := range n.Attr {
		switch strings.ToLower(attr.Key) {
		case "src":
			src = strings.TrimSpace(attr.Val)
		case "alt":
			alt = strings.TrimSpace(attr.Val)
		}
	}
	if src == "" || strings.HasPrefix(src, "data:") {
		return ""
	}
	if base != nil {
		if u, err := url.Parse(src); err == nil {
			src = base.ResolveReference(u).String()
		}
	}
	return fmt.Sprintf("![%s](%s)", alt, src)
}

// normalize collapses trailing spaces and runs of blank lines.
func normalize(text string) string {
	lines := strings.Split(text, "\n")
	var out []string
	blank := true
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
