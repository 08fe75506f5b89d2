package site

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/atelierweb/webaudit"
	"github.com/atelierweb/webaudit/internal/analyzer"
)

const (
	defaultMaxPages  = 5
	maxImportDepth   = 4
	maxImageProbes   = 25
	maxFetchBytes    = 4 << 20
	defaultUserAgent = "webaudit/1.0"
)

// Options tunes project collection. The zero value is usable.
type Options struct {
	Client   *http.Client
	MaxPages int
}

func (o *Options) client() *http.Client {
	if o != nil && o.Client != nil {
		return o.Client
	}
	return &http.Client{Timeout: 15 * time.Second}
}

func (o *Options) maxPages() int {
	if o != nil && o.MaxPages > 0 {
		return o.MaxPages
	}
	return defaultMaxPages
}

// FetchProject downloads a project's entry page, follows same-host
// links one level deep, gathers its stylesheets and compiles them
// into a single sheet with same-host @imports inlined.
func FetchProject(ctx context.Context, projectURL string, opts *Options) (webaudit.ProjectInput, error) {
	input := webaudit.ProjectInput{URL: projectURL}

	base, err := url.Parse(projectURL)
	if err != nil {
		return input, fmt.Errorf("parse project url: %w", err)
	}
	if base.Scheme == "" {
		base.Scheme = "https"
		input.URL = base.String()
	}

	f := &fetcher{client: opts.client()}

	entryHTML, err := f.fetchText(ctx, base.String(), "document", &input.NetworkRequests)
	if err != nil {
		return input, fmt.Errorf("fetch %s: %w", base, err)
	}
	entry := extractPage(entryHTML)
	input.Pages = append(input.Pages, webaudit.Page{
		URL:    normalizePageURL(base),
		HTML:   entryHTML,
		Images: entry.Images,
	})

	// Shallow crawl: links found on the entry page only.
	for _, link := range sameHostLinks(base, entry.Links) {
		if len(input.Pages) >= opts.maxPages() {
			break
		}
		pageHTML, err := f.fetchText(ctx, link, "document", &input.NetworkRequests)
		if err != nil {
			continue
		}
		input.Pages = append(input.Pages, webaudit.Page{
			URL:    link,
			HTML:   pageHTML,
			Images: extractPage(pageHTML).Images,
		})
	}

	input.RawCSS, input.CompiledCSS = f.collectCSS(ctx, base, input.Pages, &input.NetworkRequests)
	f.probeImages(ctx, base, input.Pages, &input.NetworkRequests)
	return input, nil
}

type fetcher struct {
	client *http.Client
}

func (f *fetcher) fetchText(ctx context.Context, rawURL, resourceType string, requests *[]analyzer.NetworkRequest) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return "", err
	}
	*requests = append(*requests, analyzer.NetworkRequest{
		URL:          rawURL,
		ResourceSize: int64(len(body)),
		MimeType:     resp.Header.Get("Content-Type"),
		ResourceType: resourceType,
	})
	return string(body), nil
}

// collectCSS gathers every stylesheet referenced by the pages. RawCSS
// keeps the sources as authored; CompiledCSS strips comments and
// inlines same-host @imports so the analyzers see the full cascade.
func (f *fetcher) collectCSS(ctx context.Context, base *url.URL, pages []webaudit.Page, requests *[]analyzer.NetworkRequest) (raw, compiled string) {
	seen := make(map[string]bool)
	var rawParts, compiledParts []string

	for _, page := range pages {
		pageURL, err := url.Parse(page.URL)
		if err != nil {
			pageURL = base
		}
		ex := extractPage(page.HTML)
		for _, inline := range ex.InlineCSS {
			rawParts = append(rawParts, inline)
			compiledParts = append(compiledParts, f.inlineImports(ctx, pageURL, inline, seen, 0, requests))
		}
		for _, href := range ex.Stylesheets {
			sheetURL, err := pageURL.Parse(href)
			if err != nil || seen[sheetURL.String()] {
				continue
			}
			seen[sheetURL.String()] = true
			css, err := f.fetchText(ctx, sheetURL.String(), "stylesheet", requests)
			if err != nil {
				continue
			}
			rawParts = append(rawParts, css)
			compiledParts = append(compiledParts, f.inlineImports(ctx, sheetURL, css, seen, 0, requests))
		}
	}
	return strings.Join(rawParts, "\n"), analyzer.StripComments(strings.Join(compiledParts, "\n"))
}

// inlineImports replaces same-host @import statements with the body of
// the imported sheet, recursively, bounded by maxImportDepth. External
// imports are left in place so the imports analyzer still sees them.
func (f *fetcher) inlineImports(ctx context.Context, sheetURL *url.URL, css string, seen map[string]bool, depth int, requests *[]analyzer.NetworkRequest) string {
	if depth >= maxImportDepth {
		return css
	}
	out := css
	for _, imp := range analyzer.ExtractImports(css) {
		if strings.HasPrefix(imp.Path, "http://") || strings.HasPrefix(imp.Path, "https://") || strings.HasPrefix(imp.Path, "//") {
			continue
		}
		target, err := sheetURL.Parse(imp.Path)
		if err != nil || target.Host != sheetURL.Host {
			continue
		}
		var body string
		if !seen[target.String()] {
			seen[target.String()] = true
			body, err = f.fetchText(ctx, target.String(), "stylesheet", requests)
			if err != nil {
				body = ""
			} else {
				body = f.inlineImports(ctx, target, body, seen, depth+1, requests)
			}
		}
		out = removeImport(out, imp.Path)
		if body != "" {
			out = body + "\n" + out
		}
	}
	return out
}

// removeImport drops the @import statement naming path from css.
func removeImport(css, path string) string {
	var kept []string
	for _, line := range strings.Split(css, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "@import") && strings.Contains(trimmed, path) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// probeImages issues HEAD requests for page images so the images
// analyzer has size and MIME data to grade weight against. Bounded to
// keep the audit polite.
func (f *fetcher) probeImages(ctx context.Context, base *url.URL, pages []webaudit.Page, requests *[]analyzer.NetworkRequest) {
	seen := make(map[string]bool)
	probes := 0
	for _, page := range pages {
		pageURL, err := url.Parse(page.URL)
		if err != nil {
			pageURL = base
		}
		for _, img := range page.Images {
			if probes >= maxImageProbes || img.Src == "" || strings.HasPrefix(img.Src, "data:") {
				continue
			}
			target, err := pageURL.Parse(img.Src)
			if err != nil || seen[target.String()] {
				continue
			}
			seen[target.String()] = true
			probes++

			req, err := http.NewRequestWithContext(ctx, http.MethodHead, target.String(), nil)
			if err != nil {
				continue
			}
			req.Header.Set("User-Agent", defaultUserAgent)
			resp, err := f.client.Do(req)
			if err != nil {
				continue
			}
			resp.Body.Close()
			if resp.StatusCode >= 400 || resp.ContentLength < 0 {
				continue
			}
			*requests = append(*requests, analyzer.NetworkRequest{
				URL:          target.String(),
				ResourceSize: resp.ContentLength,
				MimeType:     resp.Header.Get("Content-Type"),
				ResourceType: "image",
			})
		}
	}
}
