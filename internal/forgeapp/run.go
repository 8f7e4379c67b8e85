package forgeapp

import (
	"context"
	"fmt"

	"github.com/forgebuild/forge/internal/action"
	"github.com/forgebuild/forge/internal/cache"
	"github.com/forgebuild/forge/internal/ctxlog"
	"github.com/forgebuild/forge/internal/execplan"
	"github.com/forgebuild/forge/internal/forgecfg"
	"github.com/forgebuild/forge/internal/scan"
)

// Run resolves req against the workspace at req.Root, scans every
// selected member, builds the action graph, and executes it, flushing
// every touched cache store before returning regardless of outcome.
//
// Errors returned from Run itself are configuration-stage errors:
// resolution, scanning, or graph construction failed before scheduling
// began, and per spec.md §7 are surfaced to the front end as-is rather
// than folded into the executor's RunStatus.
func Run(ctx context.Context, req forgecfg.Request, progress execplan.ProgressSink) (*Summary, error) {
	logger := ctxlog.FromContext(ctx)

	configs, err := forgecfg.Resolve(ctx, req.Root, req)
	if err != nil {
		return &Summary{ExitCode: ExitConfig}, fmt.Errorf("forgeapp: resolve: %w", err)
	}

	members := make([]string, 0, len(configs))
	scans := make(map[string]*scan.Result, len(configs))
	stores := make(action.Stores, len(configs))

	defer func() {
		for _, store := range stores {
			if ferr := store.Flush(); ferr != nil {
				logger.Warn("cache flush failed", "error", ferr)
			}
		}
	}()

	for _, cfg := range configs {
		members = append(members, cfg.Member)

		result, serr := scan.Scan(ctx, cfg)
		if serr != nil {
			return &Summary{Members: members, ExitCode: ExitConfig}, fmt.Errorf("forgeapp: scan %s: %w", cfg.Member, serr)
		}
		scans[cfg.Member] = result

		store, oerr := cache.Open(cfg.Paths.Build)
		if oerr != nil {
			return &Summary{Members: members, ExitCode: ExitConfig}, fmt.Errorf("forgeapp: open cache %s: %w", cfg.Member, oerr)
		}
		stores[cfg.Member] = store
	}

	graph, err := action.Build(configs, scans, stores)
	if err != nil {
		return &Summary{Members: members, ExitCode: ExitConfig}, fmt.Errorf("forgeapp: build graph: %w", err)
	}

	jobs := 0
	if len(configs) > 0 {
		jobs = configs[0].Jobs
	}

	status, err := execplan.Execute(ctx, graph, stores, jobs, req.Cancel, progress)
	if err != nil {
		return &Summary{Members: members, ExitCode: ExitConfig}, fmt.Errorf("forgeapp: execute: %w", err)
	}

	summary := &Summary{Members: members, Status: status}
	switch {
	case status.Cancelled:
		summary.ExitCode = ExitCancel
	case len(status.Failures) > 0:
		summary.ExitCode = ExitFailure
	default:
		summary.ExitCode = ExitSuccess
	}
	return summary, nil
}
