// Command signalmeshd boots a signalmesh Provider and drives it from the
// command line: run a live demo mesh, or bench its signal throughput.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := buildRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
