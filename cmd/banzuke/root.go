package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"sumocli/internal/checkpoint"
	"sumocli/internal/operations"
	"sumocli/pkg/contracts"
)

const usageLine = "banzuke [--append|-a] [--retry] [--read-errors] [--cleanup] [--headless]"

// errUsage marks flag combinations that are rejected before anything runs
var errUsage = errors.New("invalid flag combination")

type rootOptions struct {
	ConfigFile string
	Append     bool
	Retry      bool
	ReadErrors bool
	Cleanup    bool
	Headless   bool
}

func (o rootOptions) validate() error {
	if o.ReadErrors && (o.Append || o.Retry) {
		return fmt.Errorf("%w: --read-errors cannot be combined with --append or --retry", errUsage)
	}
	if o.ReadErrors && o.Cleanup {
		return fmt.Errorf("%w: --read-errors cannot be combined with --cleanup", errUsage)
	}
	return nil
}

func (o rootOptions) mode() string {
	if o.Append {
		return string(checkpoint.ModeAppend)
	}
	return string(checkpoint.ModeFresh)
}

func newRootCmd(deps cliDeps) *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:           usageLine,
		Short:         "Scrape the current banzuke with wrestler profiles and export it",
		Version:       contracts.GetFullVersionString(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.validate(); err != nil {
				_ = cmd.Usage()
				return err
			}

			if opts.ReadErrors {
				return readErrors(cmd, deps, opts)
			}

			return runPipeline(cmd, deps, opts, nil, operations.OperationRequest{
				Mode:  opts.mode(),
				Retry: opts.Retry,
				Steps: operations.DefaultRun,
			})
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.ConfigFile, "config", "", "path to config.yaml (defaults to ./config.yaml or ./configs/config.yaml)")
	pf.BoolVar(&opts.Headless, "headless", true, "run the browser headless")
	pf.BoolVar(&opts.Cleanup, "cleanup", false, "remove checkpoint files after a successful run")

	f := cmd.Flags()
	f.BoolVarP(&opts.Append, "append", "a", false, "resume from existing checkpoints instead of starting fresh")
	f.BoolVar(&opts.Retry, "retry", false, "keep re-fetching pending profiles until none are left")
	f.BoolVar(&opts.ReadErrors, "read-errors", false, "print the identities recorded in the error ledger and exit")

	cmd.AddCommand(newRedriveCmd(deps, &opts))
	cmd.AddCommand(newTorikumiCmd(deps, &opts))
	cmd.AddCommand(newAwardsCmd(deps, &opts))
	return cmd
}

// readErrors prints the ledger, one identity per line
func readErrors(cmd *cobra.Command, deps cliDeps, opts rootOptions) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	paths, err := resolvePaths(cfg)
	if err != nil {
		return err
	}

	ids, err := checkpoint.ReadLedger(paths.ErrorLedger)
	if errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(cmd.ErrOrStderr(), "no error ledger at %s\n", paths.ErrorLedger)
		return nil
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, id := range ids {
		fmt.Fprintln(out, id)
	}
	return nil
}

// Execute runs the CLI and exits non-zero on failure
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, defaultDeps())
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, deps cliDeps) int {
	cmd := newRootCmd(deps)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, err.Error())
		if errors.Is(err, errUsage) {
			return 2
		}
		return 1
	}
	return 0
}
