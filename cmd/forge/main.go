package main

import (
	"fmt"
	"log/slog"
	"os"
)

// main is the entrypoint for the forge build driver.
func main() {
	// Use a minimal logger until a subcommand configures the real one.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run drives the cobra command tree and returns the process exit code,
// kept separate from main for testability.
func run(args []string, stdout, stderr *os.File) int {
	exit := &exitCode{}
	root := newRootCmd(exit)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, err)
		if exit.code == 0 {
			exit.code = 1
		}
	}
	return exit.code
}

// exitCode lets a subcommand report a process exit code that is not a
// simple "did an error occur" (forge build can finish without a Go
// error yet still need to report exit code 1 or 3, per spec.md §6).
type exitCode struct {
	code int
}
