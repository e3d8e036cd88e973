package main

import (
	"github.com/spf13/cobra"

	"sumocli/internal/operations"
)

func newAwardsCmd(deps cliDeps, root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "awards",
		Short: "Scrape the champions and special prizes of the latest tournament",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipeline(cmd, deps, *root, nil, operations.OperationRequest{
				Steps: operations.AwardsRun,
			})
		},
	}
}
