package forgecfg

import (
	"fmt"
	"sync/atomic"
)

// Request is the front end's description of one invocation: which root to
// build, which members to target, which profile and parallelism to use,
// and any cross-compilation overrides. It is the only input the resolver
// takes besides the filesystem itself.
type Request struct {
	Root        string
	Members     []string // empty means "all"
	Profile     string
	Jobs        int
	Cancel      *atomic.Bool
	CrossTarget string
	Toolchain   string
	Sysroot     string
}

// Profile is a named bundle of optimization/debug/LTO settings layered
// onto a member's base compiler flags.
type Profile struct {
	Name       string
	OptLevel   string
	DebugInfo  bool
	LTO        bool
	ExtraFlags []string
}

// CrossConfig describes a cross-compilation toolchain override.
type CrossConfig struct {
	Target       string
	Toolchain    string
	Sysroot      string
	ExtraFlags   []string
	LibraryPaths []string
}

// Paths holds a member's source, include, and build-output roots.
type Paths struct {
	Src     []string
	Include []string
	Build   string
}

// Compiler holds a member's compiler-section settings.
type Compiler struct {
	Command           string
	Flags             []string
	Definitions       map[string]string
	LibraryPaths      []string
	Libraries         []string
	WarningsAsErrors  bool
}

// Workspace describes a workspace's member list, exclusions, and inter-
// member dependency edges.
type Workspace struct {
	Members      []string
	Exclude      []string
	Dependencies map[string][]string
}

// EffectiveConfig is the fully-merged, per-member configuration the rest
// of the core consumes. It is the sole output of Resolve.
type EffectiveConfig struct {
	Member  string // relative path / name of the member, "" for a non-workspace root
	Root    string // absolute path to the member's directory
	Target  string // build.target
	Jobs    int
	Profile Profile

	Paths    Paths
	Compiler Compiler
	Cross    *CrossConfig

	DependsOn []string // member names this member's link step depends on
}

// document is the raw, format-level shape of forge.toml. Field names map
// to TOML keys via struct tags; Resolve translates a document into one or
// more EffectiveConfig values.
type document struct {
	Build struct {
		Compiler       string `toml:"compiler"`
		Target         string `toml:"target"`
		Jobs           int    `toml:"jobs"`
		DefaultProfile string `toml:"default_profile"`
	} `toml:"build"`

	Paths struct {
		Src     tomlStringList `toml:"src"`
		Include tomlStringList `toml:"include"`
		Build   string         `toml:"build"`
	} `toml:"paths"`

	Compiler struct {
		Flags            []string          `toml:"flags"`
		Definitions      map[string]string `toml:"definitions"`
		LibraryPaths     []string          `toml:"library_paths"`
		Libraries        []string          `toml:"libraries"`
		WarningsAsErrors bool              `toml:"warnings_as_errors"`
	} `toml:"compiler"`

	Profiles map[string]struct {
		OptLevel   string   `toml:"opt_level"`
		DebugInfo  bool     `toml:"debug_info"`
		LTO        bool     `toml:"lto"`
		ExtraFlags []string `toml:"extra_flags"`
	} `toml:"profiles"`

	Cross struct {
		Target       string   `toml:"target"`
		Toolchain    string   `toml:"toolchain"`
		Sysroot      string   `toml:"sysroot"`
		ExtraFlags   []string `toml:"extra_flags"`
		LibraryPaths []string `toml:"library_paths"`
	} `toml:"cross"`

	Workspace struct {
		Members      []string            `toml:"members"`
		Exclude      []string            `toml:"exclude"`
		Dependencies map[string][]string `toml:"dependencies"`
	} `toml:"workspace"`
}

// tomlStringList decodes either a bare string or a list of strings into a
// []string, matching the "string or list of strings" fields §6 allows for
// paths.src and paths.include. It implements toml.Unmarshaler directly
// since BurntSushi/toml has no bare-or-list convention of its own.
type tomlStringList []string

func (l *tomlStringList) UnmarshalTOML(data any) error {
	switch v := data.(type) {
	case string:
		*l = tomlStringList{v}
	case []any:
		out := make(tomlStringList, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("expected string list element, got %T", item)
			}
			out = append(out, s)
		}
		*l = out
	default:
		return fmt.Errorf("expected string or list of strings, got %T", data)
	}
	return nil
}
