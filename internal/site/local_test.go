package site

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProjectFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoadLocal(t *testing.T) {
	dir := t.TempDir()
	writeProjectFile(t, dir, "index.html", `<html><body>
<img src="img/hero.webp" alt="Vue du campus" loading="lazy">
</body></html>`)
	writeProjectFile(t, dir, "styles/main.css", "@import url(\"base.css\");\n/* main */\n.btn { color: red; }\n")
	writeProjectFile(t, dir, "styles/base.css", ":root { --color-primary: #336699; }\n")
	writeProjectFile(t, dir, "styles/lib.min.css", ".x{}")
	writeProjectFile(t, dir, "vendor/reset.css", "* { margin: 0; }")
	writeProjectFile(t, dir, "drafts/old.css", ".old {}")
	writeProjectFile(t, dir, ".gitignore", "drafts/\n")

	input, stats, err := LoadLocal(dir)
	require.NoError(t, err)

	require.Len(t, input.Pages, 1)
	assert.Contains(t, input.Pages[0].URL, "index.html")
	require.Len(t, input.Pages[0].Images, 1)
	assert.True(t, input.Pages[0].Images[0].HasLazyLoading)

	assert.Contains(t, input.RawCSS, "@import")
	assert.NotContains(t, input.CompiledCSS, "@import")
	assert.Contains(t, input.CompiledCSS, "--color-primary")
	assert.Contains(t, input.CompiledCSS, ".btn")
	assert.NotContains(t, input.CompiledCSS, "/* main */")
	assert.NotContains(t, input.CompiledCSS, ".old")
	assert.NotContains(t, input.CompiledCSS, "margin: 0")
	assert.NotContains(t, input.CompiledCSS, ".x{}")

	assert.Equal(t, 6, stats.FilesDiscovered)
	assert.Equal(t, 3, stats.FilesScanned)
	assert.Equal(t, 3, stats.FilesSkipped)
}

func TestLoadLocalEmpty(t *testing.T) {
	_, _, err := LoadLocal(t.TempDir())
	assert.Error(t, err)
}
