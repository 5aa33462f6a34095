package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kaizen/diagnostic"
)

func TestDiscoverFilesFindsSourceExtensions(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.js"), []byte("var x=1;"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.ts"), []byte("let y=1;"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.txt"), []byte("not source"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "node_modules"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "node_modules", "dep.js"), []byte("var z=1;"), 0o644))

	files, err := discoverFiles(dir, nil, nil)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestDiscoverFilesHonorsExclude(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.js"), []byte("var x=1;"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "dist"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dist", "b.js"), []byte("var y=1;"), 0o644))

	files, err := discoverFiles(dir, nil, []string{"dist/*"})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(dir, "a.js"), files[0])
}

func TestDiscoverFilesSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.js")
	require.NoError(t, os.WriteFile(path, []byte("var x=1;"), 0o644))

	files, err := discoverFiles(path, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, files)
}

func TestWriteReportEachFormat(t *testing.T) {
	diags := []diagnostic.Diagnostic{{
		RuleID: "Q030", Severity: diagnostic.Warning, Confidence: diagnostic.High,
		Message: "unexpected var", File: "a.js",
		Start: diagnostic.Location{Line: 1, Column: 1}, End: diagnostic.Location{Line: 1, Column: 4},
	}}

	for _, format := range []string{"text", "json", "ndjson", "csv", "sarif"} {
		dir := t.TempDir()
		path := filepath.Join(dir, "out")
		f, err := os.Create(path)
		require.NoError(t, err)

		err = writeReport(f, format, diags, 1, "/wd", "/wd/a.js")
		require.NoError(t, err, format)
		require.NoError(t, f.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotEmpty(t, data, format)
	}
}

func TestSplitGitHubRepoValid(t *testing.T) {
	owner, repo, err := splitGitHubRepo("acme-corp/web-app")
	require.NoError(t, err)
	assert.Equal(t, "acme-corp", owner)
	assert.Equal(t, "web-app", repo)
}

func TestSplitGitHubRepoRejectsMissingSlash(t *testing.T) {
	_, _, err := splitGitHubRepo("web-app")
	require.Error(t, err)
}

func TestSplitGitHubRepoRejectsEmptyParts(t *testing.T) {
	_, _, err := splitGitHubRepo("acme-corp/")
	require.Error(t, err)
}

func TestWriteReportUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	_ = buf
	dir := t.TempDir()
	f, err := os.Create(filepath.Join(dir, "out"))
	require.NoError(t, err)
	defer f.Close()

	err = writeReport(f, "yaml", nil, 0, "/wd", "/wd")
	require.Error(t, err)
}
