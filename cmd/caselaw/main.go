// Command caselaw runs the court-ruling analytics pipeline from the
// terminal: ingest, query generation, retrieval, prediction, evaluation and
// archive management.
package main

import (
	"os"

	"github.com/turtacn/CaseLaw-Intelligence/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
