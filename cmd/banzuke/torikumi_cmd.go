package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sumocli/internal/operations"
	"sumocli/internal/torikumi"
)

type torikumiOptions struct {
	Day     int
	DaysEnd int
}

func newTorikumiCmd(deps cliDeps, root *rootOptions) *cobra.Command {
	var opts torikumiOptions

	cmd := &cobra.Command{
		Use:   "torikumi [--day <n>] [--days-end <m>]",
		Short: "Scrape bout results for a range of tournament days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			days, err := torikumi.DayRange(opts.Day, opts.DaysEnd)
			if err != nil {
				_ = cmd.Usage()
				return fmt.Errorf("%w: %v", errUsage, err)
			}
			return runPipeline(cmd, deps, *root, days, operations.OperationRequest{
				Steps: operations.TorikumiRun,
			})
		},
	}

	cmd.Flags().IntVar(&opts.Day, "day", 0, "first day to scrape; 0 scrapes the whole tournament")
	cmd.Flags().IntVar(&opts.DaysEnd, "days-end", 0, "day to stop before (defaults to day+1)")
	return cmd
}
