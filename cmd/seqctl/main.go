// Command seqctl is a small command-line interpreter over the
// sequencer core's editing primitives: it reads a track from an SMF
// file, applies one editor operation, and writes the result back out.
package main

import (
	"fmt"
	"os"

	"github.com/go-miditrack/miditrack/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
