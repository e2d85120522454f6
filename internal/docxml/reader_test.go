package docxml

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

const documentHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"
 xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"
 xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
 xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"
 xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture">
<w:body>`

const documentFooter = `</w:body></w:document>`

func para(text string) string {
	return fmt.Sprintf(`<w:p><w:r><w:t>%s</w:t></w:r></w:p>`, text)
}

func imagePara(relID string) string {
	return fmt.Sprintf(`<w:p><w:r><w:drawing><wp:inline>`+
		`<a:graphic><a:graphicData><pic:pic><pic:blipFill><a:blip r:embed="%s"/></pic:blipFill></pic:pic></a:graphicData></a:graphic>`+
		`</wp:inline></w:drawing></w:r></w:p>`, relID)
}

func buildArchive(t *testing.T, body string, media map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	write := func(name string, data []byte) {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	write("[Content_Types].xml", []byte(`<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`))
	write("word/document.xml", []byte(documentHeader+body+documentFooter))
	if len(media) > 0 {
		rels := `<?xml version="1.0"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`
		i := 1
		for name := range media {
			rels += fmt.Sprintf(`<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="media/%s"/>`, i, name)
			write("word/media/"+name, media[name])
			i++
		}
		rels += `</Relationships>`
		write("word/_rels/document.xml.rels", []byte(rels))
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func openTestReader(t *testing.T, payload []byte) *Reader {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
	require.NoError(t, err)
	r, err := NewReader(zr)
	require.NoError(t, err)
	return r
}

func TestReaderExtractsParagraphText(t *testing.T) {
	payload := buildArchive(t, para("first paragraph")+para("second paragraph"), nil)
	r := openTestReader(t, payload)

	blocks := r.Blocks()
	require.Len(t, blocks, 2)
	require.Equal(t, "first paragraph", blocks[0].Text)
	require.Equal(t, "second paragraph", blocks[1].Text)
	require.False(t, blocks[0].PageBreak)
}

func TestReaderDetectsPageBreaks(t *testing.T) {
	body := para("page one") +
		`<w:p><w:r><w:br w:type="page"/></w:r><w:r><w:t>page two</w:t></w:r></w:p>` +
		`<w:p><w:r><w:lastRenderedPageBreak/><w:t>page three</w:t></w:r></w:p>` +
		`<w:p><w:pPr><w:sectPr/></w:pPr><w:r><w:t>section end</w:t></w:r></w:p>`
	r := openTestReader(t, buildArchive(t, body, nil))

	blocks := r.Blocks()
	require.Len(t, blocks, 4)
	require.True(t, blocks[1].PageBreak)
	require.True(t, blocks[2].PageBreak)
	require.True(t, blocks[3].SectionEnd)
}

func TestReaderCollectsImageRelIDs(t *testing.T) {
	payload := buildArchive(t, para("intro")+imagePara("rId1"),
		map[string][]byte{"image1.png": testPNG(t, 80, 80)})
	r := openTestReader(t, payload)

	blocks := r.Blocks()
	require.Len(t, blocks, 2)
	require.Equal(t, []string{"rId1"}, blocks[1].Images)

	data, ext, err := r.ReadMedia("rId1")
	require.NoError(t, err)
	require.Equal(t, ".png", ext)
	require.NotEmpty(t, data)

	_, _, err = r.ReadMedia("rId99")
	require.Error(t, err)
}

func TestReaderRendersTablesAsMarkdown(t *testing.T) {
	body := `<w:tbl>` +
		`<w:tr><w:tc><w:p><w:r><w:t>Name</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>Qty</w:t></w:r></w:p></w:tc></w:tr>` +
		`<w:tr><w:tc><w:p><w:r><w:t>bolt</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>12</w:t></w:r></w:p></w:tc></w:tr>` +
		`</w:tbl>`
	r := openTestReader(t, buildArchive(t, body, nil))

	blocks := r.Blocks()
	require.Len(t, blocks, 1)
	require.True(t, blocks[0].Table)
	require.Equal(t, "| Name | Qty |\n| --- | --- |\n| bolt | 12 |", blocks[0].Text)
}

func TestReaderMissingDocumentPart(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err := zw.Create("[Content_Types].xml")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	_, err = NewReader(zr)
	require.Error(t, err)
}
