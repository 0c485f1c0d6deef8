// Command tally-guest is the tally program as run by a verifiable execution
// environment: it reads the encoded vote witness from stdin and writes the
// encoded public output to stdout. On failure nothing is written and the
// process exits with a non-zero status.
package main

import (
	"os"

	"github.com/vocdoni/vocdoni-tally/log"
	"github.com/vocdoni/vocdoni-tally/tally"
)

func main() {
	log.Init(log.LogLevelError, "stderr", nil)
	if err := tally.Run(os.Stdin, os.Stdout); err != nil {
		log.Fatalf("tally failed: %v", err)
	}
}
