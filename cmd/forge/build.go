package main

import (
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/forgebuild/forge/internal/forgeapp"
	"github.com/forgebuild/forge/internal/forgecfg"
	"github.com/forgebuild/forge/internal/progress"
)

func newBuildCmd(exit *exitCode) *cobra.Command {
	var (
		root      string
		profile   string
		jobs      int
		target    string
		toolchain string
		sysroot   string
	)

	cmd := &cobra.Command{
		Use:   "build [members...]",
		Short: "resolve, scan, and build a workspace or a subset of its members",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var cancel atomic.Bool

			req := forgecfg.Request{
				Root:        root,
				Members:     args,
				Profile:     profile,
				Jobs:        jobs,
				Cancel:      &cancel,
				CrossTarget: target,
				Toolchain:   toolchain,
				Sysroot:     sysroot,
			}

			renderer := progress.NewRenderer(cmd.OutOrStdout())
			summary, err := forgeapp.Run(ctx, req, renderer.Sink)
			if summary != nil {
				exit.code = summary.ExitCode
			}
			return err
		},
	}

	cmd.Flags().StringVar(&root, "root", ".", "workspace root directory")
	cmd.Flags().StringVar(&profile, "profile", "", "build profile (defaults to build.default_profile)")
	cmd.Flags().IntVar(&jobs, "jobs", 0, "maximum concurrent compile/link actions (defaults to build.jobs, then CPU count)")
	cmd.Flags().StringVar(&target, "target", "", "cross-compilation target triple override")
	cmd.Flags().StringVar(&toolchain, "toolchain", "", "cross-compilation toolchain prefix override")
	cmd.Flags().StringVar(&sysroot, "sysroot", "", "cross-compilation sysroot override")

	return cmd
}
