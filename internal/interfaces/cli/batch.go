package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/retailcore/commerce-batch/pkg/client"
	batchtypes "github.com/retailcore/commerce-batch/pkg/types/batch"
)

// newSubmitCmd builds the submit command. The operations file carries a full
// batch request body.
func newSubmitCmd(opts *RootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a product batch and wait for its results",
		Example: `  batchctl submit --tenant 6f1e... --file operations.json
  cat operations.json | batchctl submit --tenant 6f1e... --file -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			if file == "-" {
				data, err = readAll(cmd)
			} else {
				data, err = os.ReadFile(file)
			}
			if err != nil {
				return fmt.Errorf("failed to read operations: %w", err)
			}

			var req batchtypes.BatchRequest[client.ProductData]
			if err := json.Unmarshal(data, &req); err != nil {
				return fmt.Errorf("invalid batch request: %w", err)
			}

			c, err := opts.newClient()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
			defer cancel()

			resp, err := c.SubmitProductBatch(ctx, req)
			if err != nil {
				return err
			}
			return printJSON(cmd, resp)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "batch request JSON file, or - for stdin")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newStatusCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <batch-id>",
		Short: "Show the status of a batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
			defer cancel()

			status, err := c.BatchStatus(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, status)
		},
	}
}

func newProgressCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "progress <batch-id>",
		Short: "Show live completion figures for a batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
			defer cancel()

			progress, err := c.BatchProgress(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, progress)
		},
	}
}

func newCancelCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <batch-id>",
		Short: "Request cancellation of a running batch",
		Long:  "Cancellation is advisory: operations already in flight run to completion.\nThe command reports whether the batch actually transitioned to cancelled.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
			defer cancel()

			cancelled, err := c.CancelBatch(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]interface{}{
				"batch_id":  args[0],
				"cancelled": cancelled,
			})
		},
	}
}

func readAll(cmd *cobra.Command) ([]byte, error) {
	return io.ReadAll(cmd.InOrStdin())
}
