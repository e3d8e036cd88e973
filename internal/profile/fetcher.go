package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"sumocli/internal/render"
	"sumocli/pkg/contracts/domain"
)

var (
	// ErrTooManyFailures aborts a pass after too many consecutive failed identities
	ErrTooManyFailures = errors.New("too many consecutive profile failures")

	// ErrAttemptsExhausted marks an identity whose page never loaded
	ErrAttemptsExhausted = errors.New("navigation attempts exhausted")
)

// FetcherConfig bounds retries and waits of a profile pass
type FetcherConfig struct {
	// URLTemplate has one %s verb for the identity
	URLTemplate           string
	WaitTimeout           time.Duration
	MaxNavigationAttempts int
	MaxFailureStreak      int
}

// PassResult is the outcome of one pass over pending identities
type PassResult struct {
	Records []domain.ProfileRecord
	// Failed lists identities whose navigation attempts ran out
	Failed    []string
	Attempted int
}

// Fetcher loads profile pages through a render session
type Fetcher struct {
	cfg       FetcherConfig
	extractor *Extractor
	logger    *slog.Logger
}

// NewFetcher creates a fetcher
func NewFetcher(cfg FetcherConfig, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxNavigationAttempts < 1 {
		cfg.MaxNavigationAttempts = 1
	}
	return &Fetcher{cfg: cfg, extractor: NewExtractor(logger), logger: logger}
}

// URL returns the profile page address of identity
func (f *Fetcher) URL(identity string) string {
	return fmt.Sprintf(f.cfg.URLTemplate, identity)
}

// FetchAll visits every identity in order. An identity that runs out of
// navigation attempts is recorded in Failed. Once more than
// MaxFailureStreak identities fail in a row the pass stops with
// ErrTooManyFailures; identities not yet visited are left out of the result.
func (f *Fetcher) FetchAll(ctx context.Context, session render.Session, ids []string) (PassResult, error) {
	ctx, span := tracer.Start(ctx, "profile.FetchAll")
	defer span.End()
	span.SetAttributes(attribute.Int("profile.pending", len(ids)))

	var res PassResult
	streak := 0
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Attempted++

		f.logger.InfoContext(ctx, "profile_fetch",
			slog.String("identity", id),
			slog.Int("index", i+1),
			slog.Int("total", len(ids)))

		rec, err := f.Fetch(ctx, session, id)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			res.Failed = append(res.Failed, id)
			streak++
			f.logger.ErrorContext(ctx, "profile_fetch_failed",
				slog.String("identity", id),
				slog.Int("failure_streak", streak),
				slog.String("error", err.Error()))

			if f.cfg.MaxFailureStreak > 0 && streak > f.cfg.MaxFailureStreak {
				span.SetAttributes(attribute.Int("profile.failed", len(res.Failed)))
				return res, fmt.Errorf("%w: %d in a row, last %s", ErrTooManyFailures, streak, id)
			}
			continue
		}

		streak = 0
		res.Records = append(res.Records, rec)
	}

	span.SetAttributes(attribute.Int("profile.failed", len(res.Failed)))
	return res, nil
}

// Fetch loads and extracts one profile. A navigation error, a location
// other than the requested URL or a missing profile table each use up one
// attempt.
func (f *Fetcher) Fetch(ctx context.Context, session render.Session, identity string) (domain.ProfileRecord, error) {
	url := f.URL(identity)

	var lastErr error
	for attempt := 1; attempt <= f.cfg.MaxNavigationAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return domain.ProfileRecord{}, err
		}

		html, err := f.load(ctx, session, url)
		if err == nil {
			return f.extractor.Extract(ctx, identity, html)
		}
		lastErr = err
		f.logger.WarnContext(ctx, "profile_attempt_failed",
			slog.String("identity", identity),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", f.cfg.MaxNavigationAttempts),
			slog.String("error", err.Error()))
	}
	return domain.ProfileRecord{}, fmt.Errorf("%w for %s: %v", ErrAttemptsExhausted, identity, lastErr)
}

func (f *Fetcher) load(ctx context.Context, session render.Session, url string) (string, error) {
	if err := session.Navigate(ctx, url); err != nil {
		return "", err
	}
	loc, err := session.Location(ctx)
	if err != nil {
		return "", err
	}
	if !sameURL(loc, url) {
		return "", fmt.Errorf("landed on %s", loc)
	}
	if err := session.WaitFor(ctx, profileTable, f.cfg.WaitTimeout); err != nil {
		return "", err
	}
	return session.HTML(ctx)
}

// sameURL compares two addresses ignoring a trailing slash
func sameURL(a, b string) bool {
	return strings.TrimRight(a, "/") == strings.TrimRight(b, "/")
}
