package webdoc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html>
<head><title>Release Notes</title><script>track();</script></head>
<body>
<nav><a href="/">home</a></nav>
<article>
<h1>Version 2.0</h1>
<p>Faster parsing and better memory usage.</p>
<img src="/assets/chart.png" alt="benchmark chart">
<p>See the <a href="/docs">docs</a> for details.</p>
</article>
<footer>copyright</footer>
</body>
</html>`

func TestExtractStripsBoilerplate(t *testing.T) {
	title, text, err := Extract([]byte(samplePage), "https://example.org/releases/2.0")
	require.NoError(t, err)

	require.Equal(t, "Release Notes", title)
	require.Contains(t, text, "Version 2.0")
	require.Contains(t, text, "Faster parsing and better memory usage.")
	require.Contains(t, text, "docs")
	require.NotContains(t, text, "track()")
	require.NotContains(t, text, "home")
	require.NotContains(t, text, "copyright")
}

func TestExtractResolvesImageURLs(t *testing.T) {
	_, text, err := Extract([]byte(samplePage), "https://example.org/releases/2.0")
	require.NoError(t, err)
	require.Contains(t, text, "![benchmark chart](https://example.org/assets/chart.png)")
}

func TestExtractSkipsDataURIImages(t *testing.T) {
	page := `<html><body><img src="data:image/png;base64,AAAA" alt="x"><p>body</p></body></html>`
	_, text, err := Extract([]byte(page), "")
	require.NoError(t, err)
	require.NotContains(t, text, "![")
	require.Contains(t, text, "body")
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, userAgent, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	data, err := Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Contains(t, string(data), "Version 2.0")
}

func TestFetchNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := Fetch(context.Background(), srv.URL)
	require.Error(t, err)
}
