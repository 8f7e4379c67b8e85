// Package execplan is the Parallel Executor: it drives an action.Graph to
// completion across a bounded worker pool, honoring predecessor edges,
// skippable no-ops, cooperative cancellation, and the drain-on-failure
// policy spec.md §4.5 describes.
package execplan
