package site

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func projectServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<!DOCTYPE html><html><head>
<link rel="stylesheet" href="/styles/main.css">
</head><body>
<a href="/about.html">About</a>
<img src="/img/hero.webp" alt="Vue du campus" loading="lazy">
</body></html>`))
	})
	mux.HandleFunc("/about.html", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><img src="/img/team.jpg" alt="L'équipe au complet"></body></html>`))
	})
	mux.HandleFunc("/styles/main.css", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/css")
		_, _ = w.Write([]byte("@import url(\"base.css\");\n/* entry */\n.btn { color: red; }\n"))
	})
	mux.HandleFunc("/styles/base.css", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/css")
		_, _ = w.Write([]byte(":root { --color-primary: #336699; }\n"))
	})
	mux.HandleFunc("/img/hero.webp", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/webp")
		w.Header().Set("Content-Length", "2048")
	})
	mux.HandleFunc("/img/team.jpg", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Header().Set("Content-Length", "4096")
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchProject(t *testing.T) {
	srv := projectServer(t)

	input, err := FetchProject(context.Background(), srv.URL, &Options{Client: srv.Client()})
	require.NoError(t, err)

	require.Len(t, input.Pages, 2, "entry page plus one crawled link")
	assert.Len(t, input.Pages[0].Images, 1)
	assert.Equal(t, "/img/hero.webp", input.Pages[0].Images[0].Src)
	assert.True(t, input.Pages[0].Images[0].HasLazyLoading)

	// RawCSS keeps the import statement, CompiledCSS inlines it.
	assert.Contains(t, input.RawCSS, "@import")
	assert.NotContains(t, input.CompiledCSS, "@import")
	assert.Contains(t, input.CompiledCSS, "--color-primary")
	assert.Contains(t, input.CompiledCSS, ".btn")
	assert.NotContains(t, input.CompiledCSS, "/* entry */")

	// Image HEAD probes surface as network requests with sizes.
	var imageRequests int
	for _, req := range input.NetworkRequests {
		if req.ResourceType == "image" {
			imageRequests++
			assert.Positive(t, req.ResourceSize)
		}
	}
	assert.Equal(t, 2, imageRequests)
}

func TestFetchProjectMaxPages(t *testing.T) {
	srv := projectServer(t)

	input, err := FetchProject(context.Background(), srv.URL, &Options{Client: srv.Client(), MaxPages: 1})
	require.NoError(t, err)
	assert.Len(t, input.Pages, 1)
}

func TestFetchProjectUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	_, err := FetchProject(context.Background(), srv.URL, &Options{Client: srv.Client()})
	assert.Error(t, err)
}
