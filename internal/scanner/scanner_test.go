package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"nuverify/internal/version"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o755))
}

func TestScanFindsNuExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "deploy.nu"), "ls\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "not a script\n")

	scripts := New([]string{dir}, zap.NewNop()).ScanAll()
	require.Len(t, scripts, 1)
	assert.Equal(t, filepath.Join(dir, "deploy.nu"), scripts[0].Path)
}

func TestScanFindsExtensionlessShebang(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "backup"), "#!/usr/bin/env nu\nls\n")
	writeFile(t, filepath.Join(dir, "other"), "#!/bin/bash\necho hi\n")

	scripts := New([]string{dir}, zap.NewNop()).ScanAll()
	require.Len(t, scripts, 1)
	assert.Equal(t, filepath.Join(dir, "backup"), scripts[0].Path)
	assert.True(t, scripts[0].HasShebang)
}

func TestHeaderCommentTakesPriority(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, MarkerFileName), "0.92.0\n")
	writeFile(t, filepath.Join(dir, "script.nu"),
		"#!/usr/bin/env nu\n\n# nushell-compatible-with: 0.95.0\n\nls\n")

	scripts := New([]string{dir}, zap.NewNop()).ScanAll()
	require.Len(t, scripts, 1)
	assert.Equal(t, "0.95.0", scripts[0].CompatibleVersion)
	assert.Equal(t, MethodCommentHeader, scripts[0].Method)
}

func TestHeaderCommentOnlyInCommentPrefix(t *testing.T) {
	dir := t.TempDir()
	// Marker appears after the first non-comment line, so it must be ignored.
	writeFile(t, filepath.Join(dir, "script.nu"),
		"ls\n# nushell-compatible-with: 0.95.0\n")

	scripts := New([]string{dir}, zap.NewNop()).ScanAll()
	require.Len(t, scripts, 1)
	assert.Equal(t, MethodDefaultAssumption, scripts[0].Method)
}

func TestDirectoryMarkerFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, MarkerFileName), "0.93.0\n")
	writeFile(t, filepath.Join(root, "sub", "script.nu"), "ls\n")

	scripts := New([]string{root}, zap.NewNop()).ScanAll()
	require.Len(t, scripts, 1)
	assert.Equal(t, "0.93.0", scripts[0].CompatibleVersion)
	assert.Equal(t, MethodDirectoryFile, scripts[0].Method)
}

func TestNearestMarkerWins(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, MarkerFileName), "0.90.0\n")
	writeFile(t, filepath.Join(root, "sub", MarkerFileName), "0.94.0\n")
	writeFile(t, filepath.Join(root, "sub", "script.nu"), "ls\n")

	scripts := New([]string{root}, zap.NewNop()).ScanAll()
	require.Len(t, scripts, 1)
	assert.Equal(t, "0.94.0", scripts[0].CompatibleVersion)
}

func TestDefaultAssumption(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "script.nu"), "ls\n")

	scripts := New([]string{dir}, zap.NewNop()).ScanAll()
	require.Len(t, scripts, 1)
	assert.Equal(t, version.Fallback, scripts[0].CompatibleVersion)
	assert.Equal(t, MethodDefaultAssumption, scripts[0].Method)
}

func TestMissingDirectorySkipped(t *testing.T) {
	scripts := New([]string{filepath.Join(t.TempDir(), "absent")}, zap.NewNop()).ScanAll()
	assert.Empty(t, scripts)
}
