package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/forgebuild/forge/internal/cache"
	"github.com/forgebuild/forge/internal/forgecfg"
)

func newCleanCmd() *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "clean [members...]",
		Short: "remove build outputs and cache state for a workspace or a subset of its members",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			req := forgecfg.Request{Root: root, Members: args}

			configs, err := forgecfg.Resolve(ctx, root, req)
			if err != nil {
				return err
			}

			for _, cfg := range configs {
				store, err := cache.Open(cfg.Paths.Build)
				if err != nil {
					return err
				}
				store.Purge(nil)
				if err := os.RemoveAll(cfg.Paths.Build); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "cleaned", cfg.Member)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&root, "root", ".", "workspace root directory")

	return cmd
}
