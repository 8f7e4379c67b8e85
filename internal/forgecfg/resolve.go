package forgecfg

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/forgebuild/forge/internal/ctxlog"
)

// Resolve loads and merges forge.toml documents rooted at root, returning
// one EffectiveConfig per targeted member in workspace-topological order.
func Resolve(ctx context.Context, root string, req Request) ([]EffectiveConfig, error) {
	logger := ctxlog.FromContext(ctx)

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	// Best-effort .env load into the process environment. The resolver
	// itself reads no variable from it: build.compiler and build.jobs come
	// only from forge.toml layers and the request.
	_ = godotenv.Load(filepath.Join(absRoot, ".env"))

	rootDoc, err := loadDocument(absRoot)
	if err != nil {
		return nil, err
	}

	if len(rootDoc.Workspace.Members) == 0 {
		cfg, err := resolveSingleMember(ctx, absRoot, "", rootDoc, req)
		if err != nil {
			return nil, err
		}
		return []EffectiveConfig{cfg}, nil
	}

	logger.Debug("resolving workspace", "root", absRoot, "members", rootDoc.Workspace.Members)
	return resolveWorkspace(ctx, absRoot, rootDoc, req)
}

func resolveWorkspace(ctx context.Context, root string, rootDoc *document, req Request) ([]EffectiveConfig, error) {
	excluded := map[string]bool{}
	for _, m := range rootDoc.Workspace.Exclude {
		excluded[m] = true
	}

	selected := map[string]bool{}
	for _, m := range req.Members {
		selected[m] = true
	}

	members := make([]string, 0, len(rootDoc.Workspace.Members))
	declared := map[string]bool{}
	for _, m := range rootDoc.Workspace.Members {
		declared[m] = true
		if excluded[m] {
			continue
		}
		if len(selected) > 0 && !selected[m] {
			continue
		}
		members = append(members, m)
	}

	for dep := range rootDoc.Workspace.Dependencies {
		if !declared[dep] {
			return nil, &MemberMissingError{Member: dep}
		}
		for _, target := range rootDoc.Workspace.Dependencies[dep] {
			if !declared[target] {
				return nil, &MemberMissingError{Member: target}
			}
		}
	}

	order, err := topoSort(rootDoc.Workspace.Members, rootDoc.Workspace.Dependencies)
	if err != nil {
		return nil, err
	}

	// Keep only members that survive exclusion/selection, preserving the
	// topological order computed over the full declared set.
	wanted := make(map[string]bool, len(members))
	for _, m := range members {
		wanted[m] = true
	}
	ordered := make([]string, 0, len(members))
	for _, m := range order {
		if wanted[m] {
			ordered = append(ordered, m)
		}
	}

	rootLayer := layerFromDocument(rootDoc)

	configs := make([]EffectiveConfig, 0, len(ordered))
	for _, m := range ordered {
		memberDir := filepath.Join(root, m)
		memberDoc, err := loadDocument(memberDir)
		if err != nil {
			var missing *ConfigMissingError
			if errors.As(err, &missing) {
				return nil, &MemberMissingError{Member: m}
			}
			return nil, err
		}
		cfg, err := buildEffectiveConfig(ctx, memberDir, m, rootLayer, memberDoc, req)
		if err != nil {
			return nil, err
		}
		cfg.DependsOn = rootDoc.Workspace.Dependencies[m]
		configs = append(configs, cfg)
	}
	return configs, nil
}

func resolveSingleMember(ctx context.Context, root, name string, doc *document, req Request) (EffectiveConfig, error) {
	return buildEffectiveConfig(ctx, root, name, emptyLayer(), doc, req)
}

// buildEffectiveConfig applies the merge chain from spec.md §3:
// workspace base → member overrides → selected profile → cross overrides
// → request-line overrides.
func buildEffectiveConfig(ctx context.Context, dir, member string, base mergeLayer, doc *document, req Request) (EffectiveConfig, error) {
	merged := base.merge(layerFromDocument(doc))

	profileName := req.Profile
	if profileName == "" {
		profileName = doc.Build.DefaultProfile
	}
	if profileName == "" {
		profileName = "debug"
	}
	profile, err := resolveProfile(doc, profileName)
	if err != nil {
		return EffectiveConfig{}, err
	}
	merged = merged.merge(layerFromProfile(profile))

	cross := &CrossConfig{
		Target:       doc.Cross.Target,
		Toolchain:    doc.Cross.Toolchain,
		Sysroot:      doc.Cross.Sysroot,
		ExtraFlags:   doc.Cross.ExtraFlags,
		LibraryPaths: doc.Cross.LibraryPaths,
	}
	if req.CrossTarget != "" {
		cross.Target = req.CrossTarget
	}
	if req.Toolchain != "" {
		cross.Toolchain = req.Toolchain
	}
	if req.Sysroot != "" {
		cross.Sysroot = req.Sysroot
	}
	hasCross := cross.Target != "" || cross.Toolchain != "" || cross.Sysroot != "" || len(cross.ExtraFlags) > 0

	compiler := merged.compiler
	if hasCross && cross.Toolchain != "" {
		compiler = rewriteForToolchain(compiler, cross.Toolchain)
	}
	if compiler == "" {
		return EffectiveConfig{}, fmt.Errorf("%s: %w: build.compiler is required", dir, ErrConfigParse)
	}

	jobs := merged.jobs
	if req.Jobs > 0 {
		jobs = req.Jobs
	}

	warnAsErr := false
	if merged.warnAsErr != nil {
		warnAsErr = *merged.warnAsErr
	}

	src := merged.src
	if len(src) == 0 {
		src = []string{"src"}
	}
	buildDir := merged.build
	if buildDir == "" {
		buildDir = "build"
	}
	if !filepath.IsAbs(buildDir) {
		buildDir = filepath.Join(dir, buildDir)
	}

	return EffectiveConfig{
		Member:  member,
		Root:    dir,
		Target:  merged.target,
		Jobs:    jobs,
		Profile: profile,
		Paths: Paths{
			Src:     src,
			Include: merged.include,
			Build:   buildDir,
		},
		Compiler: Compiler{
			Command:          compiler,
			Flags:            merged.flags,
			Definitions:      merged.definitions,
			LibraryPaths:     merged.libPaths,
			Libraries:        merged.libs,
			WarningsAsErrors: warnAsErr,
		},
		Cross: cross,
	}, nil
}

// topoSort orders members so that every dependency precedes its
// dependents, breaking ties by declared order, and rejects cycles with a
// report naming the offending edge.
func topoSort(declared []string, deps map[string][]string) ([]string, error) {
	visiting := map[string]bool{}
	visited := map[string]bool{}
	var order []string
	var stack []string

	var visit func(name string) error
	visit = func(name string) error {
		if visited[name] {
			return nil
		}
		if visiting[name] {
			stack = append(stack, name)
			return &ConfigCycleError{Cycle: append([]string{}, stack...)}
		}
		visiting[name] = true
		stack = append(stack, name)

		for _, dep := range deps[name] {
			if err := visit(dep); err != nil {
				return err
			}
		}

		stack = stack[:len(stack)-1]
		visiting[name] = false
		visited[name] = true
		order = append(order, name)
		return nil
	}

	for _, name := range declared {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return order, nil
}
