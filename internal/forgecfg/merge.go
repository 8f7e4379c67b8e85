package forgecfg

import (
	"path/filepath"
)

// mergeLayer is one layer of the merge chain described in spec.md §3:
// scalar fields replace, list fields concatenate (this layer's entries
// appended after the accumulator's), map keys from this layer win on
// collision.
type mergeLayer struct {
	compiler    string
	target      string
	jobs        int
	src         []string
	include     []string
	build       string
	flags       []string
	definitions map[string]string
	libPaths    []string
	libs        []string
	warnAsErr   *bool // nil means "not set at this layer"
}

func emptyLayer() mergeLayer {
	return mergeLayer{definitions: map[string]string{}}
}

func (acc mergeLayer) merge(next mergeLayer) mergeLayer {
	out := acc
	if next.compiler != "" {
		out.compiler = next.compiler
	}
	if next.target != "" {
		out.target = next.target
	}
	if next.jobs != 0 {
		out.jobs = next.jobs
	}
	if next.build != "" {
		out.build = next.build
	}
	out.src = append(append([]string{}, acc.src...), next.src...)
	out.include = append(append([]string{}, acc.include...), next.include...)
	out.flags = append(append([]string{}, acc.flags...), next.flags...)
	out.libPaths = append(append([]string{}, acc.libPaths...), next.libPaths...)
	out.libs = append(append([]string{}, acc.libs...), next.libs...)

	merged := make(map[string]string, len(acc.definitions)+len(next.definitions))
	for k, v := range acc.definitions {
		merged[k] = v
	}
	for k, v := range next.definitions {
		merged[k] = v
	}
	out.definitions = merged

	if next.warnAsErr != nil {
		out.warnAsErr = next.warnAsErr
	}
	return out
}

func layerFromDocument(doc *document) mergeLayer {
	l := emptyLayer()
	l.compiler = doc.Build.Compiler
	l.target = doc.Build.Target
	l.jobs = doc.Build.Jobs
	l.src = []string(doc.Paths.Src)
	l.include = []string(doc.Paths.Include)
	l.build = doc.Paths.Build
	l.flags = doc.Compiler.Flags
	l.definitions = doc.Compiler.Definitions
	l.libPaths = doc.Compiler.LibraryPaths
	l.libs = doc.Compiler.Libraries
	if doc.Compiler.WarningsAsErrors {
		t := true
		l.warnAsErr = &t
	}
	return l
}

func layerFromProfile(p Profile) mergeLayer {
	l := emptyLayer()
	l.flags = append([]string{}, p.ExtraFlags...)
	return l
}

// resolveProfile picks a profile by name from a document, falling back to
// the two always-recognized names per spec.md §3.
func resolveProfile(doc *document, name string) (Profile, error) {
	if raw, ok := doc.Profiles[name]; ok {
		return Profile{
			Name:       name,
			OptLevel:   raw.OptLevel,
			DebugInfo:  raw.DebugInfo,
			LTO:        raw.LTO,
			ExtraFlags: raw.ExtraFlags,
		}, nil
	}
	switch name {
	case "debug":
		return Profile{Name: "debug", OptLevel: "0", DebugInfo: true}, nil
	case "release":
		return Profile{Name: "release", OptLevel: "2", DebugInfo: false}, nil
	default:
		return Profile{}, &UnknownProfileError{Name: name}
	}
}

// rewriteForToolchain applies the cross toolchain-prefix rule from
// spec.md §4.1: a bare compiler name is prefixed; an absolute path is
// left intact. A toolchain value ending in "/" is treated as a directory
// and the compiler's base name is appended, per the Open Question
// resolution in SPEC_FULL.md §9.
func rewriteForToolchain(compiler, toolchain string) string {
	if toolchain == "" || compiler == "" {
		return compiler
	}
	if filepath.IsAbs(compiler) {
		return compiler
	}
	// A trailing "/" marks a directory rather than a literal prefix, but
	// the substitution is identical: concatenate with the compiler's base name.
	return toolchain + filepath.Base(compiler)
}
