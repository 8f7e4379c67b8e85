package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forgebuild/forge/internal/scaffold"
)

func newNewCmd() *cobra.Command {
	var (
		compiler string
		profile  string
		yes      bool
	)

	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "scaffold a new forge project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			answers := scaffold.Answers{Name: name, Compiler: compiler, Profile: profile}
			if !yes {
				flow := scaffold.NewFlow()
				collected, err := flow.Run(name)
				if err != nil {
					return err
				}
				if collected == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "aborted")
					return nil
				}
				answers = *collected
			}

			written, err := scaffold.WriteProject(name, answers)
			if err != nil {
				return err
			}
			for _, path := range written {
				fmt.Fprintln(cmd.OutOrStdout(), "created", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&compiler, "compiler", "cc", "compiler to configure in forge.toml")
	cmd.Flags().StringVar(&profile, "profile", "debug", "default profile to configure in forge.toml")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the interactive form and use the flag values directly")

	return cmd
}
