package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstallHookRejectsUnsupportedHook(t *testing.T) {
	dir := t.TempDir()
	err := installHook(dir, "post-commit", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")
}

func TestInstallHookRequiresGitDir(t *testing.T) {
	dir := t.TempDir()
	err := installHook(dir, "pre-commit", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".git/hooks")
}

func TestInstallHookWritesExecutableHook(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git", "hooks"), 0o755))

	require.NoError(t, installHook(dir, "pre-commit", false))

	data, err := os.ReadFile(filepath.Join(dir, ".git", "hooks", "pre-commit"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "kaizen check")
}

func TestInstallHookRefusesOverwriteWithoutForce(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git", "hooks"), 0o755))
	require.NoError(t, installHook(dir, "pre-commit", false))

	err := installHook(dir, "pre-commit", false)
	require.Error(t, err)
}
