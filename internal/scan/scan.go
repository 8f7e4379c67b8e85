// Package scan enumerates the translation units and include roots that
// make up one member's effective configuration, normalizing paths so
// that the rest of the core can key caches and outputs off them safely.
package scan

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/forgebuild/forge/internal/ctxlog"
	"github.com/forgebuild/forge/internal/forgecfg"
)

// recognized C/C++ source suffixes, per spec.md §4.2.
var sourceSuffixes = map[string]bool{
	".c": true, ".cc": true, ".cpp": true, ".cxx": true, ".c++": true,
	".m": true, ".mm": true,
}

// TU is one translation unit: a single source file belonging to one
// member, along with the output object path it will compile to.
type TU struct {
	Path       string // absolute, symlink-resolved
	Member     string
	OutputPath string // <build>/<profile>/<member-scoped path>.o
}

// Result is the output of scanning one member's effective configuration.
type Result struct {
	TUs          []TU
	IncludeRoots []string
}

// Scan enumerates source files under cfg.Paths.Src and collects include
// roots, without walking them (they are passed to the compiler as search
// directories instead).
func Scan(ctx context.Context, cfg forgecfg.EffectiveConfig) (*Result, error) {
	logger := ctxlog.FromContext(ctx)

	ignore, err := loadIgnore(cfg.Root, cfg.Paths.Src)
	if err != nil {
		return nil, err
	}

	var tus []TU
	for _, root := range cfg.Paths.Src {
		srcRoot := root
		if !filepath.IsAbs(srcRoot) {
			srcRoot = filepath.Join(cfg.Root, root)
		}
		found, err := walkSourceRoot(srcRoot, cfg.Member, cfg.Profile.Name, cfg.Paths.Build, cfg.Root, ignore)
		if err != nil {
			return nil, &IOError{Root: srcRoot, Cause: err}
		}
		tus = append(tus, found...)
	}

	if len(tus) == 0 {
		return nil, &NoSourcesError{Roots: cfg.Paths.Src, Elevated: cfg.Compiler.WarningsAsErrors}
	}

	sort.Slice(tus, func(i, j int) bool { return tus[i].Path < tus[j].Path })

	includeRoots := make([]string, 0, len(cfg.Paths.Include))
	for _, inc := range cfg.Paths.Include {
		if !filepath.IsAbs(inc) {
			inc = filepath.Join(cfg.Root, inc)
		}
		includeRoots = append(includeRoots, inc)
	}

	logger.Debug("scan complete", "member", cfg.Member, "tus", len(tus), "include_roots", len(includeRoots))
	return &Result{TUs: tus, IncludeRoots: includeRoots}, nil
}

// walkSourceRoot walks srcRoot recursively, following symlinked
// directories at most once each (a set of symlink-resolved directory paths
// detects and skips loops), and returns one TU per recognized source file.
func walkSourceRoot(srcRoot, member, profile, buildDir, memberRoot string, ignore ignoreMatcher) ([]TU, error) {
	absBuildDir := buildDir
	if !filepath.IsAbs(absBuildDir) {
		absBuildDir = filepath.Join(memberRoot, buildDir)
	}

	visited := map[string]bool{}
	var tus []TU

	var walk func(dir string) error
	walk = func(dir string) error {
		real, err := filepath.EvalSymlinks(dir)
		if err != nil {
			real = dir
		}
		if visited[real] {
			return nil
		}
		visited[real] = true

		entries, err := os.ReadDir(dir)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			full := filepath.Join(dir, entry.Name())
			info, err := entry.Info()
			if err != nil {
				return err
			}
			if info.IsDir() || info.Mode()&os.ModeSymlink != 0 {
				target := full
				if info.Mode()&os.ModeSymlink != 0 {
					resolved, err := filepath.EvalSymlinks(full)
					if err != nil {
						continue
					}
					st, err := os.Stat(resolved)
					if err != nil || !st.IsDir() {
						continue
					}
					target = resolved
				}
				if err := walk(target); err != nil {
					return err
				}
				continue
			}
			if !sourceSuffixes[strings.ToLower(filepath.Ext(entry.Name()))] {
				continue
			}
			if ignore != nil && ignore.Match(full) {
				continue
			}
			abs, err := filepath.Abs(full)
			if err != nil {
				return err
			}
			if resolved, err := filepath.EvalSymlinks(abs); err == nil {
				abs = resolved
			}
			tus = append(tus, TU{
				Path:       abs,
				Member:     member,
				OutputPath: objectPath(absBuildDir, profile, member, memberRoot, abs),
			})
		}
		return nil
	}

	if _, err := os.Stat(srcRoot); err != nil {
		return nil, err
	}
	if err := walk(srcRoot); err != nil {
		return nil, err
	}
	return tus, nil
}

// objectPath derives a per-member-scoped output path so that two TUs from
// different members never collide, per spec.md §3's invariant.
func objectPath(buildDir, profile, member, memberRoot, sourcePath string) string {
	rel, err := filepath.Rel(memberRoot, sourcePath)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(sourcePath)
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel)) + ".o"
	parts := []string{buildDir, profile}
	if member != "" {
		parts = append(parts, member)
	}
	parts = append(parts, rel)
	return filepath.Join(parts...)
}

