// Package cache implements the Fingerprint & Cache Store: it answers
// staleness queries for compile and link actions and persists the state
// that makes incremental builds correct across invocations.
//
// # Why a store separate from the action graph
//
// The action graph builder (internal/action) only needs a yes/no answer
// per action key — "is the recorded entry still valid" — to decide
// whether an action is skippable. Keeping that decision behind a small
// Store interface means the persistence format, the hash algorithm, and
// the journal-replay logic can all change without touching the builder
// or the executor.
//
// # Persistence model
//
// The cache document is a JSON object mapping a hex-encoded action key to
// its Entry, stored under the member's build-output root. It is loaded
// once at the start of a request; each successful action's entry is
// additionally appended to a journal file immediately (so a crash mid-run
// loses at most the entries not yet folded into the document, never the
// document itself — see spec.md §3's "write-temp-then-rename" invariant
// and §4.3's journal-tolerance rule). At the end of a request the
// in-memory state (document ∪ replayed journal) is written back
// atomically and the journal is truncated.
package cache
