// Package action builds the compile/link action graph for a set of
// resolved members: one Compile action per translation unit, one Link
// action per member, wired with the predecessor edges that honor
// workspace member dependencies. It also performs the cache lookups that
// mark each action skippable before the graph is handed to the executor.
package action
