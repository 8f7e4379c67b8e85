package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCapturing invokes run and returns its exit code plus everything
// written to stdout.
func runCapturing(t *testing.T, args []string) (int, string) {
	t.Helper()

	r, w, err := os.Pipe()
	require.NoError(t, err)

	code := run(args, w, w)
	require.NoError(t, w.Close())

	out, err := io.ReadAll(r)
	require.NoError(t, err)

	return code, string(out)
}

func TestRun_NewScaffoldsProjectNonInteractively(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(cwd)

	code, out := runCapturing(t, []string{"new", "widget", "--yes"})
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "created")

	_, err = os.Stat(filepath.Join(dir, "widget", "forge.toml"))
	assert.NoError(t, err)
}

func TestRun_BuildFailsCleanlyWithoutForgeToml(t *testing.T) {
	dir := t.TempDir()
	code, _ := runCapturing(t, []string{"build", "--root", dir})
	assert.NotEqual(t, 0, code)
}
