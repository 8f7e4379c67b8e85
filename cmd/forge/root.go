package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

type rootFlags struct {
	logFormat string
	logLevel  string
}

func newRootCmd(exit *exitCode) *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "forge",
		Short:         "forge builds C/C++ workspaces with content-hash-based incremental compilation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(newLogger(cmd.ErrOrStderr(), flags))
		},
	}

	cmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", "text", "log output format: text|json")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "log level: debug|info|warn|error")

	cmd.AddCommand(newBuildCmd(exit))
	cmd.AddCommand(newNewCmd())
	cmd.AddCommand(newCleanCmd())

	return cmd
}

func newLogger(w io.Writer, flags *rootFlags) *slog.Logger {
	level := slog.LevelInfo
	switch flags.logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if flags.logFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
