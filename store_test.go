package webaudit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://example.org", "example-org"},
		{"https://marie.github.io/portfolio/", "marie-github-io-portfolio"},
		{"http://localhost:8080", "localhost-8080"},
		{"", "projet"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, Slug(tt.url))
		})
	}
}

func TestStoreSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	report := &AuditReport{ProjectURL: "https://example.org"}
	path, err := store.Save(report)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "example-org.json"), path)

	loaded, err := store.Load("example-org")
	require.NoError(t, err)
	assert.Equal(t, report.ProjectURL, loaded.ProjectURL)
}

func TestStoreLoadAll(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	for _, u := range []string{"https://beta.example", "https://alpha.example"} {
		_, err := store.Save(&AuditReport{ProjectURL: u})
		require.NoError(t, err)
	}
	// Malformed files are skipped, not fatal.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o640))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o640))

	reports, err := store.LoadAll()
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "https://alpha.example", reports[0].ProjectURL)
	assert.Equal(t, "https://beta.example", reports[1].ProjectURL)
}

func TestStoreLoadAllMissingDir(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "absent"))
	reports, err := store.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, reports)
}
