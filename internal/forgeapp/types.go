package forgeapp

import "github.com/forgebuild/forge/internal/execplan"

// Exit codes are the front-end convention spec.md §6 names: 0 success, 1
// any action failure, 2 configuration error, 3 cancellation.
const (
	ExitSuccess = 0
	ExitFailure = 1
	ExitConfig  = 2
	ExitCancel  = 3
)

// Summary is Run's terminal report: the resolved member set, the
// executor's status, and the exit code the front end should return.
type Summary struct {
	Members  []string
	Status   *execplan.RunStatus
	ExitCode int
}
