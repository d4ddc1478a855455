// Command pplangfmt formats DOT (Graphviz) graph files.
//
// It runs the same pretty-printing engine as dotx fmt, but adds the full-featured surface of a
// standalone formatter: a layered config file (.pplang.yaml), colorized diagnostics, unified
// diffs, and partial-region formatting.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
