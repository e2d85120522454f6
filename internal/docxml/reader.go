// Package docxml reads Office Open XML word documents: text, tables, page
// boundaries and embedded images, structured for page-parallel decomposition.
package docxml

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"
)

// Block is one body-level element (paragraph or table) with everything the
// page mapper and page workers need.
type Block struct {
	// Text is the plain text of a paragraph, or the markdown rendering of a
	// table.
	Text string
	// Images lists relationship IDs of embedded images, in run order.
	Images []string
	// PageBreak reports an explicit page break rendered before this block.
	PageBreak bool
	// SectionEnd reports a section boundary on this block; the page closes
	// after it.
	SectionEnd bool
	// Table marks blocks rendered from a table.
	Table bool
}

// Reader gives random access to a parsed document: its ordered blocks and
// its media parts.
type Reader struct {
	zr     *zip.Reader
	blocks []Block
	rels   map[string]string
}

// NewReader parses word/document.xml and the document relationships from an
// open archive.
func NewReader(zr *zip.Reader) (*Reader, error) {
	r := &Reader{zr: zr, rels: map[string]string{}}

	data, err := r.fileContent("word/document.xml")
	if err != nil {
		return nil, fmt.Errorf("read document part: %w", err)
	}
	var doc documentXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse document part: %w", err)
	}

	// Relationships are optional for text-only documents.
	if relData, err := r.fileContent("word/_rels/document.xml.rels"); err == nil {
		var rels relationshipsXML
		if err := xml.Unmarshal(relData, &rels); err != nil {
			return nil, fmt.Errorf("parse relationships: %w", err)
		}
		for _, rel := range rels.Relationships {
			r.rels[rel.ID] = rel.Target
		}
	}

	for _, raw := range doc.Body.Blocks {
		switch {
		case raw.Paragraph != nil:
			r.blocks = append(r.blocks, parseParagraph(raw.Paragraph))
		case raw.Table != nil:
			r.blocks = append(r.blocks, Block{Text: renderTable(raw.Table), Table: true})
		}
	}
	return r, nil
}

// Blocks returns the document's body elements in order.
func (r *Reader) Blocks() []Block {
	return r.blocks
}

// ReadMedia resolves a relationship ID to its media part and returns the raw
// bytes plus the filename extension (including the dot).
func (r *Reader) ReadMedia(relID string) ([]byte, string, error) {
	target, ok := r.rels[relID]
	if !ok {
		return nil, "", fmt.Errorf("unknown relationship: %s", relID)
	}
	name := path.Clean("word/" + strings.TrimPrefix(target, "/"))
	data, err := r.fileContent(name)
	if err != nil {
		return nil, "", fmt.Errorf("read media %s: %w", name, err)
	}
	return data, strings.ToLower(path.Ext(name)), nil
}

func (r *Reader) fileContent(name string) ([]byte, error) {
	for _, f := range r.zr.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("file not found: %s", name)
}

func parseParagraph(p *paragraphXML) Block {
	var b Block
	b.SectionEnd = p.Props.SectPr != nil

	var sb strings.Builder
	collect := func(runs []runXML) {
		for _, run := range runs {
			if len(run.LastRendered) > 0 {
				b.PageBreak = true
			}
			for _, br := range run.Breaks {
				if br.Type == "page" {
					b.PageBreak = true
				}
			}
			for _, t := range run.Texts {
				sb.WriteString(t.Value)
			}
			for range run.Tabs {
				sb.WriteString("\t")
			}
			for _, d := range run.Drawings {
				for _, holder := range []*graphicHolderXML{d.Inline, d.Anchor} {
					if holder != nil && holder.Blip != nil && holder.Blip.Embed != "" {
						b.Images = append(b.Images, holder.Blip.Embed)
					}
				}
			}
		}
	}
	collect(p.Runs)
	for _, link := range p.Hyperlinks {
		collect(link.Runs)
	}
	b.Text = sb.String()
	return b
}

// renderTable converts a table into a markdown table; the first row becomes
// the header. Pipe characters in cells are escaped.
func renderTable(t *tableXML) string {
	if len(t.Rows) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, row := range t.Rows {
		sb.WriteString("|")
		for _, cell := range row.Cells {
			sb.WriteString(" ")
			sb.WriteString(cellText(&cell))
			sb.WriteString(" |")
		}
		sb.WriteString("\n")
		if i == 0 {
			sb.WriteString("|")
			for range row.Cells {
				sb.WriteString(" --- |")
			}
			sb.WriteString("\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func cellText(c *tableCellXML) string {
	var parts []string
	for i := range c.Paragraphs {
		b := parseParagraph(&c.Paragraphs[i])
		if b.Text != "" {
			parts = append(parts, b.Text)
		}
	}
	text := strings.Join(parts, " ")
	return strings.ReplaceAll(text, "|", "\\|")
}
