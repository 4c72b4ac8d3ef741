package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunIndexIndexesCodebase(t *testing.T) {
	srv := fakeOllamaServer(t, 8)
	defer srv.Close()

	dir := t.TempDir()
	writeTestConfig(t, dir, srv.URL)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"),
		[]byte("package main\n\nfunc Hello() string { return \"hi\" }\n"), 0o644))
	chdir(t, dir)

	quietFlag = false
	forceFlag = false
	watchFlag = false

	out, err := captureStdout(t, func() error {
		return runIndex(newTestCmd(), nil)
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Indexing complete:")
	assert.Contains(t, out, "Files:  1")
}

func TestRunIndexQuietModeSuppressesProgress(t *testing.T) {
	srv := fakeOllamaServer(t, 8)
	defer srv.Close()

	dir := t.TempDir()
	writeTestConfig(t, dir, srv.URL)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"),
		[]byte("package main\n\nfunc Hello() string { return \"hi\" }\n"), 0o644))
	chdir(t, dir)

	quietFlag = true
	forceFlag = false
	watchFlag = false
	defer func() { quietFlag = false }()

	out, err := captureStdout(t, func() error {
		return runIndex(newTestCmd(), nil)
	})
	require.NoError(t, err)
	assert.NotContains(t, out, "Validating embedder")
	assert.Contains(t, out, "indexed 1 files")
}
