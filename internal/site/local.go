package site

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/atelierweb/webaudit"
	"github.com/atelierweb/webaudit/internal/analyzer"
)

// LoadStats tracks file discovery for verbose output.
type LoadStats struct {
	FilesDiscovered int
	FilesScanned    int
	FilesSkipped    int
}

// LoadLocal builds a project input from a directory on disk instead of
// a live site. HTML files become pages, CSS files are concatenated and
// compiled with relative @imports resolved against the file tree.
func LoadLocal(dir string) (webaudit.ProjectInput, LoadStats, error) {
	input := webaudit.ProjectInput{URL: "file://" + filepath.ToSlash(dir)}
	stats := LoadStats{}

	gi := loadGitIgnore(dir)
	htmlFiles, err := globFiles(dir, "**/*.html", gi, &stats)
	if err != nil {
		return input, stats, fmt.Errorf("glob html: %w", err)
	}
	cssFiles, err := globFiles(dir, "**/*.css", gi, &stats)
	if err != nil {
		return input, stats, fmt.Errorf("glob css: %w", err)
	}
	if len(htmlFiles) == 0 && len(cssFiles) == 0 {
		return input, stats, fmt.Errorf("no html or css files under %s", dir)
	}

	for _, path := range htmlFiles {
		data, err := os.ReadFile(path) // #nosec G304 - paths come from the audited directory
		if err != nil {
			continue
		}
		htmlText := string(data)
		input.Pages = append(input.Pages, webaudit.Page{
			URL:    "file://" + filepath.ToSlash(path),
			HTML:   htmlText,
			Images: extractPage(htmlText).Images,
		})
	}

	var rawParts, compiledParts []string
	seen := make(map[string]bool)
	for _, path := range cssFiles {
		data, err := os.ReadFile(path) // #nosec G304 - paths come from the audited directory
		if err != nil {
			continue
		}
		css := string(data)
		rawParts = append(rawParts, css)
		if !seen[path] {
			seen[path] = true
			compiledParts = append(compiledParts, inlineLocalImports(path, css, seen, 0))
		}
	}
	input.RawCSS = strings.Join(rawParts, "\n")
	input.CompiledCSS = analyzer.StripComments(strings.Join(compiledParts, "\n"))
	return input, stats, nil
}

// globFiles expands one pattern under dir with two-layer filtering:
// skip minified/vendor artifacts first, then anything the project's
// .gitignore excludes.
func globFiles(dir, pattern string, gi *ignore.GitIgnore, stats *LoadStats) ([]string, error) {
	matches, err := doublestar.FilepathGlob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, err
	}

	var files []string
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}
		stats.FilesDiscovered++
		if shouldSkipFile(dir, match, gi) {
			stats.FilesSkipped++
			continue
		}
		files = append(files, match)
		stats.FilesScanned++
	}
	sort.Strings(files)
	return files, nil
}

func shouldSkipFile(dir, path string, gi *ignore.GitIgnore) bool {
	base := filepath.Base(path)
	if strings.HasSuffix(base, ".min.css") || strings.HasSuffix(base, ".min.html") {
		return true
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	if strings.HasPrefix(rel, "node_modules"+string(filepath.Separator)) ||
		strings.HasPrefix(rel, "vendor"+string(filepath.Separator)) {
		return true
	}
	if gi != nil && gi.MatchesPath(rel) {
		return true
	}
	return false
}

// loadGitIgnore reads the project's .gitignore. A missing file
// degrades gracefully to no filtering.
func loadGitIgnore(dir string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(dir, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}

// inlineLocalImports resolves relative @imports against the importing
// file's directory, bounded like the HTTP compiler.
func inlineLocalImports(path, css string, seen map[string]bool, depth int) string {
	if depth >= maxImportDepth {
		return css
	}
	out := css
	for _, imp := range analyzer.ExtractImports(css) {
		if strings.HasPrefix(imp.Path, "http://") || strings.HasPrefix(imp.Path, "https://") || strings.HasPrefix(imp.Path, "//") {
			continue
		}
		target := filepath.Join(filepath.Dir(path), filepath.FromSlash(imp.Path))
		var body string
		if !seen[target] {
			seen[target] = true
			data, err := os.ReadFile(target) // #nosec G304 - resolved within the audited directory
			if err == nil {
				body = inlineLocalImports(target, string(data), seen, depth+1)
			}
		}
		out = removeImport(out, imp.Path)
		if body != "" {
			out = body + "\n" + out
		}
	}
	return out
}
