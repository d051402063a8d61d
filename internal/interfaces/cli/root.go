// Package cli implements the batchctl command tree.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/retailcore/commerce-batch/pkg/client"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// RootOptions holds the global CLI flags.
type RootOptions struct {
	ServerAddr string
	TenantID   string
	Timeout    time.Duration
}

// NewRootCommand creates the batchctl root command with global flags and
// subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "batchctl",
		Short:   "batchctl drives the commerce-batch API from the command line",
		Long:    "batchctl submits product batches to a commerce-batch deployment and\ninspects or cancels running batches.",
		Version: fmt.Sprintf("%s (commit: %s)", Version, GitCommit),

		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.ServerAddr, "server", "http://localhost:8080", "API server address")
	pf.StringVar(&opts.TenantID, "tenant", "", "tenant ID sent with every request")
	pf.DurationVar(&opts.Timeout, "timeout", 10*time.Minute, "request timeout; must cover a full synchronous submission")

	cmd.AddCommand(
		newSubmitCmd(opts),
		newStatusCmd(opts),
		newProgressCmd(opts),
		newCancelCmd(opts),
	)

	return cmd
}

// newClient builds the SDK client from the global flags.
func (o *RootOptions) newClient() (*client.Client, error) {
	clientOpts := []client.Option{}
	if o.TenantID != "" {
		clientOpts = append(clientOpts, client.WithTenant(o.TenantID))
	}
	return client.NewClient(o.ServerAddr, clientOpts...)
}

// printJSON renders v as indented JSON on stdout.
func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

// ExitOnError prints err and exits non-zero. Split out so main stays trivial.
func ExitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
