package docxml

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/docreader/internal/storage"
)

func testStore(t *testing.T) (storage.Store, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.New(storage.Config{
		Type: "local",
		Data: map[string]interface{}{
			"dir":        dir,
			"public_url": "http://files.local",
		},
	})
	require.NoError(t, err)
	return store, dir
}

func TestDecomposeTextOnly(t *testing.T) {
	payload := buildArchive(t, para("alpha")+para("beta")+
		`<w:p><w:r><w:br w:type="page"/></w:r><w:r><w:t>gamma</w:t></w:r></w:p>`, nil)
	src, err := NewSource(payload, "")
	require.NoError(t, err)
	defer src.Cleanup()

	store, _ := testStore(t)
	res, err := Decompose(context.Background(), src, store, Options{})
	require.NoError(t, err)
	require.Equal(t, "alpha\nbeta\n\ngamma", res.Text)
	require.Empty(t, res.ImageMap)
}

func TestDecomposeUploadsEachImageOnce(t *testing.T) {
	media := map[string][]byte{"image1.png": testPNG(t, 120, 90)}
	// The same relationship is referenced twice; it must be uploaded once
	// and both placeholders must point at the same URL.
	body := para("before") + imagePara("rId1") + para("between") + imagePara("rId1")
	src, err := NewSource(buildArchive(t, body, media), "")
	require.NoError(t, err)
	defer src.Cleanup()

	store, dir := testStore(t)
	res, err := Decompose(context.Background(), src, store, Options{EnableImages: true})
	require.NoError(t, err)

	require.Len(t, res.ImageMap, 1)
	var url string
	for u := range res.ImageMap {
		url = u
	}
	require.Equal(t, 2, strings.Count(res.Text, "![]("+url+")"))

	uploaded, err := filepath.Glob(filepath.Join(dir, "images", "*.png"))
	require.NoError(t, err)
	require.Len(t, uploaded, 1)
}

func TestDecomposeSkipsTinyImages(t *testing.T) {
	media := map[string][]byte{"image1.png": testPNG(t, 16, 16)}
	src, err := NewSource(buildArchive(t, para("text")+imagePara("rId1"), media), "")
	require.NoError(t, err)
	defer src.Cleanup()

	store, _ := testStore(t)
	res, err := Decompose(context.Background(), src, store, Options{EnableImages: true})
	require.NoError(t, err)
	require.Equal(t, "text", res.Text)
	require.Empty(t, res.ImageMap)
}

func TestDecomposeImagesDisabled(t *testing.T) {
	media := map[string][]byte{"image1.png": testPNG(t, 120, 90)}
	src, err := NewSource(buildArchive(t, para("text")+imagePara("rId1"), media), "")
	require.NoError(t, err)
	defer src.Cleanup()

	store, _ := testStore(t)
	res, err := Decompose(context.Background(), src, store, Options{EnableImages: false})
	require.NoError(t, err)
	require.Equal(t, "text", res.Text)
	require.Empty(t, res.ImageMap)
}

func TestDecomposeLargeDocumentUsesWorkerPool(t *testing.T) {
	var body strings.Builder
	for i := 0; i < 120; i++ {
		body.WriteString(para("paragraph"))
	}
	src, err := NewSource(buildArchive(t, body.String(), nil), "")
	require.NoError(t, err)
	defer src.Cleanup()

	store, _ := testStore(t)
	res, err := Decompose(context.Background(), src, store, Options{Workers: 4})
	require.NoError(t, err)
	require.Equal(t, 120, strings.Count(res.Text, "paragraph"))
}

func TestDecomposeWorkerPoolPreservesPageOrder(t *testing.T) {
	// The first page is by far the largest, so with one worker per page the
	// later pages finish before it; stitching must still follow page order.
	pageBreak := `<w:p><w:r><w:br w:type="page"/></w:r></w:p>`
	var body strings.Builder
	var want []string

	var first []string
	for i := 0; i < 40; i++ {
		text := fmt.Sprintf("first-%02d", i)
		body.WriteString(para(text))
		first = append(first, text)
	}
	want = append(want, strings.Join(first, "\n"))

	body.WriteString(pageBreak)
	var second []string
	for i := 0; i < 5; i++ {
		text := fmt.Sprintf("second-%d", i)
		body.WriteString(para(text))
		second = append(second, text)
	}
	want = append(want, strings.Join(second, "\n"))

	body.WriteString(pageBreak)
	var third []string
	for i := 0; i < 5; i++ {
		text := fmt.Sprintf("third-%d", i)
		body.WriteString(para(text))
		third = append(third, text)
	}
	want = append(want, strings.Join(third, "\n"))

	src, err := NewSource(buildArchive(t, body.String(), nil), "")
	require.NoError(t, err)
	defer src.Cleanup()

	store, _ := testStore(t)
	res, err := Decompose(context.Background(), src, store, Options{Workers: 3})
	require.NoError(t, err)
	require.Equal(t, strings.Join(want, "\n\n"), res.Text)
}

func TestDecomposeCleansTransientArtifacts(t *testing.T) {
	tmp := t.TempDir()
	media := map[string][]byte{"image1.png": testPNG(t, 120, 90)}
	src, err := NewSource(buildArchive(t, imagePara("rId1"), media), "")
	require.NoError(t, err)
	defer src.Cleanup()

	store, _ := testStore(t)
	_, err = Decompose(context.Background(), src, store, Options{EnableImages: true, TempDir: tmp})
	require.NoError(t, err)

	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestSourceMemoryRoundTrip(t *testing.T) {
	payload := buildArchive(t, para("hello"), nil)
	src, err := NewSource(payload, "")
	require.NoError(t, err)
	defer src.Cleanup()

	r, closer, err := src.OpenReader()
	require.NoError(t, err)
	defer closer.Close()
	require.Equal(t, "hello", r.Blocks()[0].Text)

	require.NoError(t, src.Cleanup())
}
