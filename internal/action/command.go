package action

import (
	"fmt"
	"sort"
	"strings"

	"github.com/forgebuild/forge/internal/forgecfg"
)

// crossTriple returns the cross-target triple for a config, or "" for a
// native build, used as the last field of a Compile action key.
func crossTriple(cfg forgecfg.EffectiveConfig) string {
	if cfg.Cross == nil {
		return ""
	}
	return cfg.Cross.Target
}

// effectiveFlags returns any cross extra flags followed by the member's
// compiler flags, in the order §4.4 prescribes: cross flags are prepended
// before base flags. Compiler.Flags already carries the selected profile's
// extra flags, which the resolver merges in after the base flags.
func effectiveFlags(cfg forgecfg.EffectiveConfig) []string {
	var flags []string
	if cfg.Cross != nil {
		flags = append(flags, cfg.Cross.ExtraFlags...)
	}
	flags = append(flags, cfg.Compiler.Flags...)
	return flags
}

// libraryPaths returns -L-style search paths, cross paths preceding
// compiler-section paths per §4.4.
func libraryPaths(cfg forgecfg.EffectiveConfig) []string {
	var paths []string
	if cfg.Cross != nil {
		paths = append(paths, cfg.Cross.LibraryPaths...)
	}
	paths = append(paths, cfg.Compiler.LibraryPaths...)
	return paths
}

// sortedDefinitions returns definitions as "NAME=value" or bare "NAME"
// pairs (for an empty value), sorted by name so the canonical command
// line is stable regardless of map iteration order.
func sortedDefinitions(defs map[string]string) []string {
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]string, 0, len(names))
	for _, name := range names {
		if v := defs[name]; v != "" {
			out = append(out, fmt.Sprintf("-D%s=%s", name, v))
		} else {
			out = append(out, fmt.Sprintf("-D%s", name))
		}
	}
	return out
}

// compilerCommand returns the effective compiler binary to invoke,
// already toolchain-rewritten by the resolver.
func compilerCommand(cfg forgecfg.EffectiveConfig) string {
	return cfg.Compiler.Command
}

// canonicalCompileLine builds the part of a Compile action's command line
// that is constant across every TU of a member: compiler, profile opt
// level/debug/LTO, cross sysroot, definitions, include roots, and base
// flags. It deliberately omits the source and object path arguments, per
// §4.3's "excluding input/output path arguments" rule.
func canonicalCompileLine(cfg forgecfg.EffectiveConfig) string {
	var parts []string
	parts = append(parts, compilerCommand(cfg))
	parts = append(parts, "-c")

	if cfg.Profile.OptLevel != "" {
		parts = append(parts, "-O"+cfg.Profile.OptLevel)
	}
	if cfg.Profile.DebugInfo {
		parts = append(parts, "-g")
	}
	if cfg.Profile.LTO {
		parts = append(parts, "-flto")
	}
	if cfg.Cross != nil && cfg.Cross.Sysroot != "" {
		parts = append(parts, "--sysroot="+cfg.Cross.Sysroot)
	}

	parts = append(parts, sortedDefinitions(cfg.Compiler.Definitions)...)

	for _, inc := range cfg.Paths.Include {
		parts = append(parts, "-I"+inc)
	}

	parts = append(parts, effectiveFlags(cfg)...)

	if cfg.Compiler.WarningsAsErrors {
		parts = append(parts, "-Werror")
	}

	return strings.Join(parts, " ")
}

// compileArgs builds the actual argv for invoking the compiler on one TU,
// given the canonical flag portion already assembled.
func compileArgs(cfg forgecfg.EffectiveConfig, canonical, tuPath, objectPath, depFilePath string) []string {
	fields := strings.Fields(canonical)
	args := append([]string(nil), fields[1:]...) // drop the compiler name itself
	args = append(args, "-MMD", "-MF", depFilePath)
	args = append(args, tuPath, "-o", objectPath)
	return args
}

// linkProduct decides the output artifact shape by the naming/flag
// convention spec.md §4.4 specifies: a target name beginning with "lib"
// together with an explicit "-shared" flag produces a shared object; a
// "lib"-prefixed target without that flag produces a static archive;
// anything else is an executable.
func linkProduct(target string, flags []string) LinkProduct {
	isLibName := strings.HasPrefix(target, "lib")
	hasShared := false
	for _, f := range flags {
		if f == "-shared" {
			hasShared = true
			break
		}
	}
	switch {
	case isLibName && hasShared:
		return SharedObject
	case isLibName:
		return StaticArchive
	default:
		return Executable
	}
}

// canonicalLinkLine builds the constant part of a member's link command
// line: the linker (same binary as the compiler, by convention), output
// kind flags, library search paths, and linked libraries. Object inputs
// are intentionally excluded — they form a separate, independently
// sorted component of the Link action key.
func canonicalLinkLine(cfg forgecfg.EffectiveConfig, product LinkProduct) string {
	var parts []string
	parts = append(parts, compilerCommand(cfg))

	switch product {
	case SharedObject:
		parts = append(parts, "-shared")
	case StaticArchive:
		parts = append(parts, "(ar)")
	}

	if cfg.Cross != nil && cfg.Cross.Sysroot != "" {
		parts = append(parts, "--sysroot="+cfg.Cross.Sysroot)
	}

	for _, p := range libraryPaths(cfg) {
		parts = append(parts, "-L"+p)
	}
	for _, lib := range cfg.Compiler.Libraries {
		parts = append(parts, "-l"+lib)
	}

	parts = append(parts, effectiveFlags(cfg)...)

	return strings.Join(parts, " ")
}

// linkArgs builds the actual argv for the link step. For a static
// archive, forge invokes `ar` directly instead of the compiler driver.
func linkArgs(cfg forgecfg.EffectiveConfig, product LinkProduct, objects []string, outputPath string) (command string, args []string) {
	if product == StaticArchive {
		return "ar", append([]string{"rcs", outputPath}, objects...)
	}

	fields := strings.Fields(canonicalLinkLine(cfg, product))
	cmd := fields[0]
	rest := append([]string(nil), fields[1:]...)
	rest = append(rest, objects...)
	rest = append(rest, "-o", outputPath)
	return cmd, rest
}
