package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"sumocli/internal/checkpoint"
	"sumocli/internal/render"
	"sumocli/pkg/contracts/domain"
)

// RunOptions selects how the profile stage treats earlier progress
type RunOptions struct {
	Mode  checkpoint.Mode
	Retry bool
}

// RunResult summarises the profile stage
type RunResult struct {
	Profiles   []domain.ProfileRecord
	Ledger     []string
	Iterations int
	Fetched    int
}

// Runner drives repeated fetch passes until every identity has a complete
// profile, retry is off or the iteration budget is spent
type Runner struct {
	renderer      render.Renderer
	fetcher       *Fetcher
	store         *checkpoint.Store[domain.ProfileRecord]
	ledgerPath    string
	maxIterations int
	logger        *slog.Logger
}

// NewRunner wires a runner
func NewRunner(renderer render.Renderer, fetcher *Fetcher, store *checkpoint.Store[domain.ProfileRecord], ledgerPath string, maxIterations int, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if maxIterations < 1 {
		maxIterations = 1
	}
	return &Runner{
		renderer:      renderer,
		fetcher:       fetcher,
		store:         store,
		ledgerPath:    ledgerPath,
		maxIterations: maxIterations,
		logger:        logger,
	}
}

// Run fetches profiles for ids. Passes after the first append to the
// checkpoint. The error ledger is rewritten before returning with the
// identities that ran out of attempts and still lack a complete profile.
func (r *Runner) Run(ctx context.Context, ids []string, opts RunOptions) (res RunResult, err error) {
	mode := opts.Mode
	if mode == "" {
		mode = checkpoint.ModeFresh
	}

	failed := map[string]struct{}{}
	var failedOrder []string
	pending := ids

	defer func() {
		complete := r.store.Keys(res.Profiles, domain.ProfileRecord.Complete)
		res.Ledger = checkpoint.Remaining(failedOrder, complete)
		if werr := checkpoint.WriteLedger(r.ledgerPath, res.Ledger); werr != nil {
			err = errors.Join(err, werr)
		}
		r.logger.InfoContext(ctx, "error_ledger_written",
			slog.String("path", r.ledgerPath),
			slog.Int("identities", len(res.Ledger)))
	}()

	for iter := 1; iter <= r.maxIterations; iter++ {
		res.Iterations = iter

		todo := pending
		if mode == checkpoint.ModeAppend && r.store.Exists() {
			prior, lerr := r.store.Load()
			if lerr != nil {
				return res, lerr
			}
			todo = checkpoint.Remaining(pending, r.store.Keys(prior, domain.ProfileRecord.Complete))
		}

		r.logger.InfoContext(ctx, "profile_pass_start",
			slog.Int("iteration", iter),
			slog.String("mode", string(mode)),
			slog.Int("pending", len(todo)))

		var pass PassResult
		rows, serr := r.store.Sync(ctx, mode, func(ctx context.Context) ([]domain.ProfileRecord, error) {
			if len(todo) == 0 {
				return nil, nil
			}
			session, oerr := r.renderer.Open(ctx)
			if oerr != nil {
				return nil, fmt.Errorf("open browser: %w", oerr)
			}
			defer session.Close()

			var ferr error
			pass, ferr = r.fetcher.FetchAll(ctx, session, todo)
			return pass.Records, ferr
		})
		res.Profiles = rows
		res.Fetched += len(pass.Records)
		for _, id := range pass.Failed {
			if _, ok := failed[id]; !ok {
				failed[id] = struct{}{}
				failedOrder = append(failedOrder, id)
			}
		}
		if serr != nil {
			return res, serr
		}

		mode = checkpoint.ModeAppend
		pending = checkpoint.Remaining(pending, r.store.Keys(rows, domain.ProfileRecord.Complete))

		r.logger.InfoContext(ctx, "profile_pass_complete",
			slog.Int("iteration", iter),
			slog.Int("fetched", len(pass.Records)),
			slog.Int("failed", len(pass.Failed)),
			slog.Int("remaining", len(pending)))

		if len(pending) == 0 || !opts.Retry {
			break
		}
	}
	return res, nil
}
