package execplan

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/forgebuild/forge/internal/action"
	"github.com/forgebuild/forge/internal/cache"
	"github.com/forgebuild/forge/internal/ctxlog"
)

var (
	errCancelled = errors.New("execplan: run cancelled")
	errDraining  = errors.New("execplan: executor draining after a prior failure")
)

// executor holds the state one Execute call needs, shared by every
// goroutine it spawns. It is built and discarded per request; the core
// keeps no process-wide mutable state (spec.md §9).
type executor struct {
	graph  *action.Graph
	stores action.Stores
	sink   ProgressSink

	cancelFlag *atomic.Bool
	sem        *semaphore.Weighted
	readyChan  chan int

	ids []uuid.UUID

	wg       sync.WaitGroup
	draining atomic.Bool

	mu       sync.Mutex
	failures []Failure
	blocked  int
	cancelled bool
}

// Execute drives g to completion. jobs bounds the number of concurrently
// running compile/link subprocesses; a value <= 0 falls back to
// runtime.NumCPU(). cancelFlag, if non-nil, is checked cooperatively at
// every action pickup boundary. sink may be nil.
func Execute(ctx context.Context, g *action.Graph, stores action.Stores, jobs int, cancelFlag *atomic.Bool, sink ProgressSink) (*RunStatus, error) {
	if sink == nil {
		sink = func(ProgressEvent) {}
	}
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	if len(g.Actions) == 0 {
		return &RunStatus{}, nil
	}

	ex := &executor{
		graph:      g,
		stores:     stores,
		sink:       sink,
		cancelFlag: cancelFlag,
		sem:        semaphore.NewWeighted(int64(jobs)),
		ids:        make([]uuid.UUID, len(g.Actions)),
	}
	for i := range ex.ids {
		ex.ids[i] = uuid.New()
	}

	ex.wg.Add(len(g.Actions))

	ready := make(chan int, len(g.Actions))
	for _, idx := range g.Roots() {
		ready <- idx
	}
	ex.readyChan = ready

	go func() {
		ex.wg.Wait()
		close(ready)
	}()

	for idx := range ready {
		go ex.handle(ctx, idx)
	}

	return ex.status(), nil
}

func (ex *executor) status() *RunStatus {
	ex.mu.Lock()
	defer ex.mu.Unlock()
	return &RunStatus{
		Failures:     append([]Failure(nil), ex.failures...),
		BlockedCount: ex.blocked,
		Cancelled:    ex.cancelled,
	}
}

// handle is the per-action entry point: it is honored cooperatively for
// cancellation and draining at pickup, then acquires a semaphore permit
// before doing any real work, bounding concurrency to jobs.
func (ex *executor) handle(ctx context.Context, idx int) {
	a := ex.graph.Actions[idx]
	logger := ctxlog.FromContext(ctx)

	if ex.cancelFlag != nil && ex.cancelFlag.Load() {
		ex.finish(idx, OutcomeCancelled, 0, errCancelled)
		return
	}

	if err := ex.sem.Acquire(ctx, 1); err != nil {
		ex.finish(idx, OutcomeCancelled, 0, err)
		return
	}
	defer ex.sem.Release(1)

	if ex.cancelFlag != nil && ex.cancelFlag.Load() {
		ex.finish(idx, OutcomeCancelled, 0, errCancelled)
		return
	}
	if ex.draining.Load() {
		ex.finish(idx, OutcomeBlocked, 0, errDraining)
		return
	}

	if a.Skippable {
		ex.finish(idx, OutcomeSkipped, 0, nil)
		return
	}

	logger.Debug("running action", "id", a.ID, "kind", a.Kind.String(), "member", a.Member)
	a.SetState(action.Running)

	if err := os.MkdirAll(filepath.Dir(a.OutputPath), 0o755); err != nil {
		wrapped := &IOError{Path: a.OutputPath, Cause: err}
		ex.recordFailure(a, "", wrapped)
		ex.draining.Store(true)
		ex.finish(idx, OutcomeFailed, 0, wrapped)
		return
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, a.Command, a.Args...)
	out, err := cmd.CombinedOutput()
	duration := time.Since(start)

	if err != nil {
		var wrapped error
		if a.Kind == action.Compile {
			wrapped = &CompileFailedError{ActionID: a.ID, Stderr: string(out), Cause: err}
		} else {
			wrapped = &LinkFailedError{ActionID: a.ID, Stderr: string(out), Cause: err}
		}
		ex.recordFailure(a, string(out), wrapped)
		ex.draining.Store(true)
		ex.finish(idx, OutcomeFailed, duration, wrapped)
		return
	}

	if entry, herr := ex.buildEntry(a); herr != nil {
		logger.Warn("cache update failed after successful action; output is valid on disk, next run will recheck it", "id", a.ID, "error", herr)
	} else if store := ex.stores[a.Member]; store != nil {
		if rerr := store.Record(a.Key, entry); rerr != nil {
			logger.Warn("cache record failed after successful action", "id", a.ID, "error", rerr)
		}
	}

	ex.finish(idx, OutcomeSucceeded, duration, nil)
}

// finish transitions action idx to its terminal state exactly once and
// either cascades readiness to its dependents (success/skip) or blocks
// them (anything else).
func (ex *executor) finish(idx int, outcome Outcome, duration time.Duration, err error) {
	a := ex.graph.Actions[idx]

	switch outcome {
	case OutcomeSucceeded, OutcomeSkipped:
		a.SetState(action.Done)
		ex.emit(idx, outcome, duration)
		ex.wg.Done()
		ex.cascade(idx)
	case OutcomeCancelled:
		if !a.Skip(action.Cancelled, err) {
			return
		}
		ex.mu.Lock()
		ex.cancelled = true
		ex.mu.Unlock()
		ex.emit(idx, outcome, duration)
		ex.wg.Done()
		ex.blockDependents(idx, err)
	default:
		if !a.Skip(action.Blocked, err) {
			return
		}
		ex.emit(idx, outcome, duration)
		ex.wg.Done()
		ex.blockDependents(idx, err)
	}
}

// cascade decrements the dependent-count of every action waiting on idx
// and enqueues any that become ready.
func (ex *executor) cascade(idx int) {
	for _, dep := range ex.graph.Dependents(idx) {
		if ex.graph.Actions[dep].DecrementDeps() == 0 {
			ex.readyChan <- dep
		}
	}
}

// blockDependents recursively marks every transitive dependent of idx as
// Blocked, since it will never become ready through the normal
// depCount-reaches-zero path once idx itself never completes.
func (ex *executor) blockDependents(idx int, cause error) {
	for _, dep := range ex.graph.Dependents(idx) {
		depAction := ex.graph.Actions[dep]
		if !depAction.Skip(action.Blocked, cause) {
			continue
		}
		ex.mu.Lock()
		ex.blocked++
		ex.mu.Unlock()
		ex.emit(dep, OutcomeBlocked, 0)
		ex.wg.Done()
		ex.blockDependents(dep, cause)
	}
}

func (ex *executor) recordFailure(a *action.Action, stderr string, err error) {
	ex.mu.Lock()
	defer ex.mu.Unlock()
	ex.failures = append(ex.failures, Failure{
		ActionID: a.ID,
		Member:   a.Member,
		Kind:     a.Kind.String(),
		Stderr:   stderr,
		Err:      err,
	})
}

func (ex *executor) emit(idx int, outcome Outcome, duration time.Duration) {
	a := ex.graph.Actions[idx]
	ex.sink(ProgressEvent{
		ActionID: ex.ids[idx].String(),
		Member:   a.Member,
		Kind:     a.Kind.String(),
		Outcome:  outcome,
		Duration: duration,
	})
}

// buildEntry computes the new cache entry for a successfully completed
// action: for Compile, the closed include set comes from the compiler's
// dependency file; for Link, the inputs are the member's own contributing
// object files.
func (ex *executor) buildEntry(a *action.Action) (cache.Entry, error) {
	store := ex.stores[a.Member]
	if store == nil {
		return cache.Entry{}, errors.New("execplan: no cache store for member " + a.Member)
	}

	var sources []string
	if a.Kind == action.Compile {
		deps, err := parseDepFile(a.DepFilePath)
		if err != nil || len(deps) == 0 {
			deps = []string{a.TUPath}
		}
		sources = deps
	} else {
		for _, predIdx := range a.Predecessors {
			pred := ex.graph.Actions[predIdx]
			if pred.Kind == action.Compile {
				sources = append(sources, pred.OutputPath)
			}
		}
	}

	inputs := make([]cache.InputHash, 0, len(sources))
	for _, p := range sources {
		h, err := store.HashPath(p)
		if err != nil {
			continue
		}
		inputs = append(inputs, cache.InputHash{Path: p, Hash: h})
	}

	outHash, err := store.HashPath(a.OutputPath)
	if err != nil {
		return cache.Entry{}, err
	}

	return cache.Entry{
		Inputs:      inputs,
		CommandLine: a.CommandLine,
		OutputPath:  a.OutputPath,
		OutputHash:  outHash,
		RecordedAt:  time.Now(),
	}, nil
}
