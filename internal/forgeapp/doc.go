// Package forgeapp is the front-end-facing orchestration layer: it wires
// the Configuration Resolver, Source & Header Scanner, Fingerprint &
// Cache Store, Action Graph Builder, and Parallel Executor into the
// single Run call the CLI (and any other front end) drives, and
// translates the executor's terminal status into the exit codes
// spec.md §6 names.
package forgeapp
