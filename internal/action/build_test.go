package action

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgebuild/forge/internal/cache"
	"github.com/forgebuild/forge/internal/forgecfg"
	"github.com/forgebuild/forge/internal/scan"
)

func singleMemberConfig(t *testing.T, root string) forgecfg.EffectiveConfig {
	t.Helper()
	return forgecfg.EffectiveConfig{
		Member: "app",
		Root:   root,
		Target: "app",
		Jobs:   1,
		Profile: forgecfg.Profile{Name: "debug", OptLevel: "0", DebugInfo: true},
		Paths:  forgecfg.Paths{Src: []string{"src"}, Build: filepath.Join(root, "build")},
		Compiler: forgecfg.Compiler{
			Command: "cc",
		},
	}
}

func TestBuild_FreshGraphHasNoSkippableActions(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "build"), 0o755))

	sourcePath := filepath.Join(root, "src", "main.c")
	require.NoError(t, os.MkdirAll(filepath.Dir(sourcePath), 0o755))
	require.NoError(t, os.WriteFile(sourcePath, []byte("int main(){return 0;}"), 0o644))

	cfg := singleMemberConfig(t, root)
	store, err := cache.Open(cfg.Paths.Build)
	require.NoError(t, err)

	result := &scan.Result{
		TUs: []scan.TU{{Path: sourcePath, Member: "app", OutputPath: filepath.Join(cfg.Paths.Build, "main.o")}},
	}

	g, err := Build([]forgecfg.EffectiveConfig{cfg}, map[string]*scan.Result{"app": result}, Stores{"app": store})
	require.NoError(t, err)
	require.Len(t, g.Actions, 2)

	compile := g.Actions[0]
	link := g.Actions[1]
	assert.Equal(t, Compile, compile.Kind)
	assert.False(t, compile.Skippable)
	assert.Equal(t, Link, link.Kind)
	assert.False(t, link.Skippable)
	assert.ElementsMatch(t, []int{0}, link.Predecessors)
	assert.Equal(t, []int{1}, g.Dependents(0))
}

func TestBuild_CrossMemberDependencyOrdersCompiles(t *testing.T) {
	root := t.TempDir()

	core := filepath.Join(root, "core")
	gui := filepath.Join(root, "gui")
	require.NoError(t, os.MkdirAll(filepath.Join(core, "build"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(gui, "build"), 0o755))

	coreSrc := filepath.Join(core, "src", "core.c")
	guiSrc := filepath.Join(gui, "src", "gui.c")
	require.NoError(t, os.MkdirAll(filepath.Dir(coreSrc), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Dir(guiSrc), 0o755))
	require.NoError(t, os.WriteFile(coreSrc, []byte("void core(){}"), 0o644))
	require.NoError(t, os.WriteFile(guiSrc, []byte("void gui(){}"), 0o644))

	coreCfg := singleMemberConfig(t, core)
	coreCfg.Member = "core"
	guiCfg := singleMemberConfig(t, gui)
	guiCfg.Member = "gui"
	guiCfg.DependsOn = []string{"core"}

	coreStore, err := cache.Open(coreCfg.Paths.Build)
	require.NoError(t, err)
	guiStore, err := cache.Open(guiCfg.Paths.Build)
	require.NoError(t, err)

	scans := map[string]*scan.Result{
		"core": {TUs: []scan.TU{{Path: coreSrc, Member: "core", OutputPath: filepath.Join(coreCfg.Paths.Build, "core.o")}}},
		"gui":  {TUs: []scan.TU{{Path: guiSrc, Member: "gui", OutputPath: filepath.Join(guiCfg.Paths.Build, "gui.o")}}},
	}
	stores := Stores{"core": coreStore, "gui": guiStore}

	g, err := Build([]forgecfg.EffectiveConfig{coreCfg, guiCfg}, scans, stores)
	require.NoError(t, err)
	require.Len(t, g.Actions, 4)

	coreLinkIdx := 1
	guiCompileIdx := 2
	guiLinkIdx := 3

	guiCompile := g.Actions[guiCompileIdx]
	assert.Contains(t, guiCompile.Predecessors, coreLinkIdx, "gui's compile must wait on core's link")

	guiLink := g.Actions[guiLinkIdx]
	assert.Contains(t, guiLink.Predecessors, coreLinkIdx)
	assert.Contains(t, guiLink.Predecessors, guiCompileIdx)
}
