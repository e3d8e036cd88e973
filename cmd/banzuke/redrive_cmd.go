package main

import (
	"github.com/spf13/cobra"

	"sumocli/internal/checkpoint"
	"sumocli/internal/operations"
)

func newRedriveCmd(deps cliDeps, root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "redrive",
		Short: "Re-fetch the profiles listed in the error ledger and re-export",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipeline(cmd, deps, *root, nil, operations.OperationRequest{
				Mode:  string(checkpoint.ModeAppend),
				Steps: operations.RedriveRun,
			})
		},
	}
}
