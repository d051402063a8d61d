// batchctl is the command-line client for the commerce-batch API.
package main

import (
	"github.com/retailcore/commerce-batch/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	cli.Version = version
	cli.GitCommit = commit
	cli.ExitOnError(cli.Execute())
}
