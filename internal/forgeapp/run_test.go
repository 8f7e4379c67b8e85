package forgeapp

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgebuild/forge/internal/forgecfg"
)

// writeFakeCompiler drops a shell script standing in for cc: it locates
// the -o and -MF argument values and writes stub content to each,
// without caring about the rest of the flags.
func writeFakeCompiler(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "fakecc")
	script := `#!/bin/sh
prev=""
out=""
dep=""
for a in "$@"; do
  case "$prev" in
    -o) out="$a" ;;
    -MF) dep="$a" ;;
  esac
  prev="$a"
done
if [ -n "$dep" ]; then printf 'stub: stub\n' > "$dep"; fi
if [ -n "$out" ]; then printf 'stub\n' > "$out"; fi
`
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestRun_FreshBuildSucceeds(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell-script stand-in compiler requires a POSIX shell")
	}
	root := t.TempDir()
	srcDir := filepath.Join(root, "src")
	require.NoError(t, os.MkdirAll(srcDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "main.c"), []byte("int main(){return 0;}"), 0o644))

	cc := writeFakeCompiler(t, root)

	toml := "[build]\ncompiler = \"" + cc + "\"\ntarget = \"app\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "forge.toml"), []byte(toml), 0o644))

	req := forgecfg.Request{Root: root}
	summary, err := Run(context.Background(), req, nil)
	require.NoError(t, err)
	require.NotNil(t, summary.Status)
	assert.True(t, summary.Status.Ok())
	assert.Equal(t, ExitSuccess, summary.ExitCode)
	assert.Equal(t, []string{""}, summary.Members)

	_, err = os.Stat(filepath.Join(root, "build", "app"))
	assert.NoError(t, err)
}

func TestRun_ConfigErrorShortCircuitsBeforeScheduling(t *testing.T) {
	root := t.TempDir()
	// No forge.toml at all: Resolve must fail before any scanning/building.
	req := forgecfg.Request{Root: root}
	summary, err := Run(context.Background(), req, nil)
	require.Error(t, err)
	assert.Equal(t, ExitConfig, summary.ExitCode)
}
