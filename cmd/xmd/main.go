package main

import (
	"fmt"
	"os"
	"slices"

	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// maxprocs.Set only fails on an invalid GOMAXPROCS value, in which case
	// the runtime default stays in place.
	if isVerbose(os.Args[1:]) {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...any) {}))
	}

	os.Exit(runMain(os.Args, DefaultEnv()))
}

// isVerbose reports whether -v or --verbose appears before flag parsing.
func isVerbose(args []string) bool {
	return slices.Contains(args, "-v") || slices.Contains(args, "--verbose")
}
