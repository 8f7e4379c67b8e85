package execplan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgebuild/forge/internal/action"
	"github.com/forgebuild/forge/internal/cache"
)

// shellAction builds an Action whose "compiler" is /bin/sh running script,
// standing in for a fake compiler/linker the way SPEC_FULL.md's testable
// properties section describes exercising the executor end to end.
func shellAction(kind action.Kind, member, outputPath, script string) *action.Action {
	return &action.Action{
		ID:         fmt.Sprintf("%s:%s:%s", kind, member, outputPath),
		Kind:       kind,
		Member:     member,
		OutputPath: outputPath,
		Command:    "/bin/sh",
		Args:       []string{"-c", script},
	}
}

func graphOf(actions ...*action.Action) *action.Graph {
	g := &action.Graph{Actions: actions}
	return g
}

func openStore(t *testing.T, dir string) *cache.Store {
	t.Helper()
	s, err := cache.Open(dir)
	require.NoError(t, err)
	return s
}

func TestExecute_CompileThenLinkSucceeds(t *testing.T) {
	dir := t.TempDir()
	obj := filepath.Join(dir, "main.o")
	dep := filepath.Join(dir, "main.d")
	bin := filepath.Join(dir, "app")
	src := filepath.Join(dir, "main.c")
	require.NoError(t, os.WriteFile(src, []byte("int main(){return 0;}"), 0o644))

	compile := shellAction(action.Compile, "app", obj,
		fmt.Sprintf("echo obj > %s && printf '%%s: %%s\\n' %s %s > %s", obj, obj, src, dep))
	compile.TUPath = src
	compile.DepFilePath = dep
	compile.CommandLine = "cc -c main.c"
	compile.Key = cache.CompileKey("app", src, "debug", compile.CommandLine, "")

	link := shellAction(action.Link, "app", bin, fmt.Sprintf("echo bin > %s", bin))
	link.CommandLine = "cc main.o -o app"
	link.Predecessors = []int{0}
	link.Key = cache.LinkKey("app", "debug", link.CommandLine, []string{obj})

	g := finalizeForTest(graphOf(compile, link))

	store := openStore(t, dir)
	stores := action.Stores{"app": store}

	var mu sync.Mutex
	var events []ProgressEvent
	status, err := Execute(context.Background(), g, stores, 2, nil, func(e ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, e)
	})
	require.NoError(t, err)
	assert.True(t, status.Ok())
	assert.Len(t, events, 2)

	entry, ok := store.Lookup(link.Key)
	require.True(t, ok)
	assert.Equal(t, link.CommandLine, entry.CommandLine)
}

func TestExecute_SkippableActionNeverRunsSubprocess(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "main.o")
	require.NoError(t, os.WriteFile(output, []byte("cached"), 0o644))

	a := shellAction(action.Compile, "app", output, "exit 1")
	a.Skippable = true

	g := finalizeForTest(graphOf(a))
	store := openStore(t, dir)

	status, err := Execute(context.Background(), g, action.Stores{"app": store}, 1, nil, nil)
	require.NoError(t, err)
	assert.True(t, status.Ok())
}

func TestExecute_FailureBlocksDependents(t *testing.T) {
	dir := t.TempDir()
	obj := filepath.Join(dir, "main.o")
	bin := filepath.Join(dir, "app")

	compile := shellAction(action.Compile, "app", obj, "exit 1")
	link := shellAction(action.Link, "app", bin, fmt.Sprintf("echo bin > %s", bin))
	link.Predecessors = []int{0}

	g := finalizeForTest(graphOf(compile, link))
	store := openStore(t, dir)

	status, err := Execute(context.Background(), g, action.Stores{"app": store}, 1, nil, nil)
	require.NoError(t, err)
	assert.False(t, status.Ok())
	require.Len(t, status.Failures, 1)
	assert.Equal(t, 1, status.BlockedCount)
	assert.Equal(t, action.Blocked, link.State())
}

func TestExecute_CancellationBlocksUnstartedActions(t *testing.T) {
	dir := t.TempDir()
	obj := filepath.Join(dir, "main.o")

	a := shellAction(action.Compile, "app", obj, "exit 0")
	g := finalizeForTest(graphOf(a))
	store := openStore(t, dir)

	var cancel atomic.Bool
	cancel.Store(true)

	status, err := Execute(context.Background(), g, action.Stores{"app": store}, 1, &cancel, nil)
	require.NoError(t, err)
	assert.True(t, status.Cancelled)
	assert.Equal(t, action.Cancelled, a.State())
}

// finalizeForTest wires up dependent indices the way action.Build does,
// since these tests hand-construct graphs rather than going through the
// resolver/scanner pipeline.
func finalizeForTest(g *action.Graph) *action.Graph {
	g.Finalize()
	return g
}
