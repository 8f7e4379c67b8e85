package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteProject_CWritesCTemplate(t *testing.T) {
	dir := t.TempDir()
	written, err := WriteProject(dir, Answers{Name: "widget", Compiler: "gcc", Profile: "debug"})
	require.NoError(t, err)
	assert.Len(t, written, 2)

	toml, err := os.ReadFile(filepath.Join(dir, "forge.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(toml), `compiler = "gcc"`)
	assert.Contains(t, string(toml), `target = "widget"`)

	_, err = os.Stat(filepath.Join(dir, "src", "main.c"))
	assert.NoError(t, err)
}

func TestWriteProject_CPPCompilerWritesCPPTemplate(t *testing.T) {
	dir := t.TempDir()
	_, err := WriteProject(dir, Answers{Name: "widget", Compiler: "g++"})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "src", "main.cpp"))
	assert.NoError(t, err)
}

func TestWriteProject_RefusesExistingForgeToml(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "forge.toml"), []byte(""), 0o644))

	_, err := WriteProject(dir, Answers{Name: "widget"})
	assert.Error(t, err)
}
