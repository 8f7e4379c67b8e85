// Package forgecfg resolves a project or workspace's forge.toml documents
// into the effective, per-member build configuration the rest of the core
// operates on.
//
// # Why the resolver exists
//
// A member's actual compiler invocation is the product of several layers:
// the workspace's base settings, the member's own overrides, the selected
// profile, cross-compilation overrides, and finally request-line overrides
// from the front end. Nothing downstream — the scanner, the cache, the
// action graph builder, the executor — should have to know about any of
// that layering. They consume a single flat EffectiveConfig per member.
//
// # How it works
//
//  1. Locate forge.toml at the request root.
//  2. If it declares a [workspace] section, load each member's forge.toml
//     and merge workspace → member → profile → cross → request, per member.
//  3. Otherwise treat the root itself as the sole member.
//  4. Validate the workspace dependency graph is acyclic and topologically
//     sort members, ties broken by declaration order.
package forgecfg
