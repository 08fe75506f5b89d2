// Package site collects a project's pages, stylesheets and image
// inventory, either over HTTP or from a local directory, and shapes
// them into the input the auditor consumes.
package site

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/atelierweb/webaudit/internal/analyzer"
)

// pageExtract is everything pulled out of one HTML document.
type pageExtract struct {
	Images      []analyzer.ImageRecord
	Stylesheets []string // hrefs of <link rel="stylesheet">
	InlineCSS   []string // contents of <style> blocks
	Links       []string // hrefs of <a>
}

// extractPage walks an HTML document and collects images, stylesheet
// references, inline styles and anchors. A parse error returns an
// empty extract; html.Parse is lenient so this is rare.
func extractPage(htmlText string) pageExtract {
	var ex pageExtract
	doc, err := html.Parse(strings.NewReader(htmlText))
	if err != nil {
		return ex
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "img":
				ex.Images = append(ex.Images, imageFromNode(n))
			case "link":
				if strings.EqualFold(attr(n, "rel"), "stylesheet") {
					if href := attr(n, "href"); href != "" {
						ex.Stylesheets = append(ex.Stylesheets, href)
					}
				}
			case "style":
				if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					ex.InlineCSS = append(ex.InlineCSS, n.FirstChild.Data)
				}
			case "a":
				if href := attr(n, "href"); href != "" {
					ex.Links = append(ex.Links, href)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return ex
}

func imageFromNode(n *html.Node) analyzer.ImageRecord {
	rec := analyzer.ImageRecord{
		Src:            attr(n, "src"),
		HasLazyLoading: strings.EqualFold(attr(n, "loading"), "lazy"),
	}
	rec.AriaHidden = strings.EqualFold(attr(n, "aria-hidden"), "true")
	if alt, ok := lookupAttr(n, "alt"); ok {
		rec.Alt = alt
	} else {
		rec.Alt = "no alt"
	}
	return rec
}

func attr(n *html.Node, name string) string {
	v, _ := lookupAttr(n, name)
	return v
}

func lookupAttr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}

// sameHostLinks resolves anchors against base and keeps only those on
// the same host, normalized and deduplicated, excluding base itself.
func sameHostLinks(base *url.URL, hrefs []string) []string {
	seen := map[string]bool{normalizePageURL(base): true}
	var out []string
	for _, href := range hrefs {
		if strings.HasPrefix(href, "#") || strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") {
			continue
		}
		u, err := base.Parse(href)
		if err != nil || u.Host != base.Host {
			continue
		}
		if ext := pathExt(u.Path); ext != "" && ext != "html" && ext != "htm" {
			continue
		}
		key := normalizePageURL(u)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, key)
	}
	return out
}

func normalizePageURL(u *url.URL) string {
	c := *u
	c.Fragment = ""
	c.RawQuery = ""
	s := c.String()
	return strings.TrimSuffix(s, "/")
}

func pathExt(p string) string {
	idx := strings.LastIndex(p, ".")
	if idx == -1 || strings.Contains(p[idx:], "/") {
		return ""
	}
	return strings.ToLower(p[idx+1:])
}

// ExtractClasses is a convenience used by the stats command to count
// distinct class names across pages.
func ExtractClasses(htmlText string) []string {
	doc, err := html.Parse(strings.NewReader(htmlText))
	if err != nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, cls := range strings.Fields(attr(n, "class")) {
				if !seen[cls] {
					seen[cls] = true
					out = append(out, cls)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out
}
