package action

import (
	"fmt"
	"path/filepath"

	"github.com/forgebuild/forge/internal/cache"
	"github.com/forgebuild/forge/internal/forgecfg"
	"github.com/forgebuild/forge/internal/scan"
)

// Stores is the per-member cache handle set the builder consults to mark
// actions skippable. The executor later reuses the same handles to
// record new entries after a successful action.
type Stores map[string]*cache.Store

// Build constructs the full action DAG for a set of already
// topologically-sorted member configs, consulting each member's cache
// store to pre-compute skippability. configs must be given in the order
// forgecfg.Resolve returns them (dependencies before dependents).
func Build(configs []forgecfg.EffectiveConfig, scans map[string]*scan.Result, stores Stores) (*Graph, error) {
	g := &Graph{}
	memberLink := make(map[string]int)

	for _, cfg := range configs {
		store := stores[cfg.Member]
		if store == nil {
			return nil, fmt.Errorf("action: no cache store for member %q", cfg.Member)
		}
		result := scans[cfg.Member]
		if result == nil {
			return nil, fmt.Errorf("action: no scan result for member %q", cfg.Member)
		}

		var depLinkIdx []int
		for _, dep := range cfg.DependsOn {
			idx, ok := memberLink[dep]
			if !ok {
				return nil, fmt.Errorf("action: member %q depends on %q, which has no link action yet", cfg.Member, dep)
			}
			depLinkIdx = append(depLinkIdx, idx)
		}

		canonCompile := canonicalCompileLine(cfg)
		triple := crossTriple(cfg)

		compileIdx := make([]int, 0, len(result.TUs))
		objectPaths := make([]string, 0, len(result.TUs))
		for _, tu := range result.TUs {
			idx, err := addCompileAction(g, store, cfg, tu, canonCompile, triple, depLinkIdx)
			if err != nil {
				return nil, err
			}
			compileIdx = append(compileIdx, idx)
			objectPaths = append(objectPaths, tu.OutputPath)
		}

		linkIdx, err := addLinkAction(g, store, cfg, compileIdx, depLinkIdx, objectPaths)
		if err != nil {
			return nil, err
		}
		memberLink[cfg.Member] = linkIdx
	}

	g.Finalize()
	return g, nil
}

func addCompileAction(g *Graph, store *cache.Store, cfg forgecfg.EffectiveConfig, tu scan.TU, canonCompile, triple string, depLinkIdx []int) (int, error) {
	key := cache.CompileKey(cfg.Member, tu.Path, cfg.Profile.Name, canonCompile, triple)

	prev, hasPrev := store.Lookup(key)
	var inputs []cache.InputHash
	if hasPrev {
		for _, in := range prev.Inputs {
			h, err := store.HashPath(in.Path)
			if err != nil {
				inputs = nil
				hasPrev = false
				break
			}
			inputs = append(inputs, cache.InputHash{Path: in.Path, Hash: h})
		}
	}
	if !hasPrev {
		h, err := store.HashPath(tu.Path)
		if err != nil {
			return 0, fmt.Errorf("action: hashing %s: %w", tu.Path, err)
		}
		inputs = []cache.InputHash{{Path: tu.Path, Hash: h}}
	}

	skippable := hasPrev && store.IsValid(key, canonCompile, inputs)

	depFile := tu.OutputPath[:len(tu.OutputPath)-len(filepath.Ext(tu.OutputPath))] + ".d"
	args := compileArgs(cfg, canonCompile, tu.Path, tu.OutputPath, depFile)

	a := &Action{
		ID:           fmt.Sprintf("compile:%s:%s", cfg.Member, tu.Path),
		Kind:         Compile,
		Member:       cfg.Member,
		TUPath:       tu.Path,
		DepFilePath:  depFile,
		OutputPath:   tu.OutputPath,
		CommandLine:  canonCompile,
		Command:      compilerCommand(cfg),
		Args:         args,
		Key:          key,
		Inputs:       inputs,
		Predecessors: append([]int(nil), depLinkIdx...),
		Skippable:    skippable,
	}
	g.Actions = append(g.Actions, a)
	return len(g.Actions) - 1, nil
}

func addLinkAction(g *Graph, store *cache.Store, cfg forgecfg.EffectiveConfig, compileIdx, depLinkIdx []int, objectPaths []string) (int, error) {
	product := linkProduct(cfg.Target, effectiveFlags(cfg))
	outputPath := filepath.Join(cfg.Paths.Build, artifactName(cfg.Target, product))
	canonLink := canonicalLinkLine(cfg, product)
	key := cache.LinkKey(cfg.Member, cfg.Profile.Name, canonLink, objectPaths)

	_, hasPrev := store.Lookup(key)
	var inputs []cache.InputHash
	if hasPrev {
		for _, obj := range objectPaths {
			h, err := store.HashPath(obj)
			if err != nil {
				hasPrev = false
				inputs = nil
				break
			}
			inputs = append(inputs, cache.InputHash{Path: obj, Hash: h})
		}
	}

	allPredsSkippable := true
	for _, idx := range compileIdx {
		if !g.Actions[idx].Skippable {
			allPredsSkippable = false
			break
		}
	}
	for _, idx := range depLinkIdx {
		if !g.Actions[idx].Skippable {
			allPredsSkippable = false
			break
		}
	}

	skippable := hasPrev && allPredsSkippable && store.IsValid(key, canonLink, inputs)

	cmd, args := linkArgs(cfg, product, objectPaths, outputPath)

	preds := make([]int, 0, len(compileIdx)+len(depLinkIdx))
	preds = append(preds, compileIdx...)
	preds = append(preds, depLinkIdx...)

	a := &Action{
		ID:           fmt.Sprintf("link:%s", cfg.Member),
		Kind:         Link,
		Member:       cfg.Member,
		Product:      product,
		OutputPath:   outputPath,
		CommandLine:  canonLink,
		Command:      cmd,
		Args:         args,
		Key:          key,
		Inputs:       inputs,
		Predecessors: preds,
		Skippable:    skippable,
	}
	g.Actions = append(g.Actions, a)
	return len(g.Actions) - 1, nil
}

func artifactName(target string, product LinkProduct) string {
	switch product {
	case StaticArchive:
		return target + ".a"
	case SharedObject:
		return target + ".so"
	default:
		return target
	}
}
