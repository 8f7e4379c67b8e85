package action

import (
	"sync"
	"sync/atomic"

	"github.com/forgebuild/forge/internal/cache"
)

// Kind distinguishes the two action shapes spec.md §3 defines.
type Kind int

const (
	Compile Kind = iota
	Link
)

func (k Kind) String() string {
	if k == Link {
		return "link"
	}
	return "compile"
}

// LinkProduct is the artifact shape a Link action produces, chosen by
// the naming/flag convention in spec.md §4.4.
type LinkProduct int

const (
	Executable LinkProduct = iota
	StaticArchive
	SharedObject
)

// State is an action's execution state, set atomically by the executor.
type State int32

const (
	Pending State = iota
	Running
	Done
	Failed
	Blocked
	Cancelled
)

// Action is one Compile or Link node in the graph. Predecessors are
// stored as indices into the owning Graph's Actions slice, never as
// direct pointers — dependents are recovered the same way, by index,
// keeping the graph a pure forward structure (spec.md §9, "Graph and
// back-references").
type Action struct {
	ID     string
	Kind   Kind
	Member string

	// TUPath is set for Compile actions only.
	TUPath string
	// DepFilePath is the -MMD/-MF side file path for a Compile action.
	DepFilePath string
	// Product is set for Link actions only.
	Product LinkProduct

	OutputPath  string
	CommandLine string
	Command     string
	Args        []string
	Key         cache.Key
	Inputs      []cache.InputHash

	Predecessors []int
	Skippable    bool

	depCount atomic.Int32
	state    atomic.Int32
	Err      error
	skipOnce sync.Once
}

func (a *Action) State() State {
	return State(a.state.Load())
}

// SetState atomically sets the action's execution state.
func (a *Action) SetState(s State) {
	a.state.Store(int32(s))
}

// DepCount returns the number of not-yet-satisfied predecessors.
func (a *Action) DepCount() int32 {
	return a.depCount.Load()
}

// DecrementDeps is called by the executor once per completed predecessor
// and returns the remaining count.
func (a *Action) DecrementDeps() int32 {
	return a.depCount.Add(-1)
}

// Skip transitions the action to a terminal non-success state (Blocked
// or Cancelled) exactly once. Returns true the first time it runs for
// this action.
func (a *Action) Skip(state State, err error) bool {
	var did bool
	a.skipOnce.Do(func() {
		a.SetState(state)
		a.Err = err
		did = true
	})
	return did
}

// Graph is the full set of actions for one request, built in workspace-
// topological order.
type Graph struct {
	Actions    []*Action
	dependents [][]int
}

// Dependents returns the indices of actions that list index i as a
// predecessor.
func (g *Graph) Dependents(i int) []int {
	return g.dependents[i]
}

// Roots returns the indices of every action with no predecessors.
func (g *Graph) Roots() []int {
	var out []int
	for i, a := range g.Actions {
		if len(a.Predecessors) == 0 {
			out = append(out, i)
		}
	}
	return out
}

// Finalize computes each action's initial dependent count and the
// reverse (dependents) index from the Predecessors every action already
// carries. Build calls this once after every action has been added;
// hand-built graphs (as in tests) must call it themselves before the
// graph is handed to Execute.
func (g *Graph) Finalize() {
	g.dependents = make([][]int, len(g.Actions))
	for i, a := range g.Actions {
		a.depCount.Store(int32(len(a.Predecessors)))
		for _, pred := range a.Predecessors {
			g.dependents[pred] = append(g.dependents[pred], i)
		}
	}
}
