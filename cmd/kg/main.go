// Command kg is a thin exercise harness over the kgcore engine: enough
// cobra subcommands to create entities/relations, run each search method,
// traverse the graph, and round-trip an export — not a reimplementation of
// the teacher's own CLI, which is explicitly out of this spec's scope.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
