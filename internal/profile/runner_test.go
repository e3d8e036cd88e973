package profile

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sumocli/internal/checkpoint"
	"sumocli/internal/render/rendertest"
	"sumocli/pkg/contracts/domain"
)

type runnerFixture struct {
	fetcher  *Fetcher
	session  *rendertest.Session
	renderer *rendertest.Renderer
	store    *checkpoint.Store[domain.ProfileRecord]
	ledger   string
}

func newRunnerFixture(t *testing.T, ids ...string) *runnerFixture {
	t.Helper()
	dir := t.TempDir()
	f := testFetcher(10)
	pages := map[string]string{}
	for _, id := range ids {
		pages[f.URL(id)] = defaultPage().html()
	}
	session := rendertest.NewSession(pages)
	return &runnerFixture{
		fetcher:  f,
		session:  session,
		renderer: &rendertest.Renderer{Session: session},
		store:    checkpoint.NewStore[domain.ProfileRecord](filepath.Join(dir, "profiles.csv"), checkpoint.ProfileCodec{}, nil, quietLogger()),
		ledger:   filepath.Join(dir, "errors.txt"),
	}
}

func (fx *runnerFixture) runner(iterations int) *Runner {
	return NewRunner(fx.renderer, fx.fetcher, fx.store, fx.ledger, iterations, quietLogger())
}

func identities(records []domain.ProfileRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Identity)
	}
	return out
}

func TestRunWritesLedgerForPersistentFailures(t *testing.T) {
	fx := newRunnerFixture(t, "1", "3")

	res, err := fx.runner(3).Run(context.Background(), []string{"1", "2", "3"}, RunOptions{Retry: true})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Iterations)
	assert.Equal(t, 2, res.Fetched)
	assert.Equal(t, []string{"1", "3"}, identities(res.Profiles))
	assert.Equal(t, []string{"2"}, res.Ledger)

	ledger, err := checkpoint.ReadLedger(fx.ledger)
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, ledger)
}

func TestRunWithoutRetryStopsAfterOnePass(t *testing.T) {
	fx := newRunnerFixture(t, "1", "3")

	res, err := fx.runner(5).Run(context.Background(), []string{"1", "2", "3"}, RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Iterations)
	assert.Equal(t, 1, fx.renderer.Opened)
	assert.Equal(t, []string{"2"}, res.Ledger)
}

func TestRunRetryRecoversTransientFailure(t *testing.T) {
	fx := newRunnerFixture(t, "1", "2", "3")
	// every attempt of the first pass fails for identity 2
	fx.session.NavErrors[fx.fetcher.URL("2")] = 3

	res, err := fx.runner(5).Run(context.Background(), []string{"1", "2", "3"}, RunOptions{Retry: true})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Iterations)
	assert.Equal(t, 2, fx.renderer.Opened)
	assert.Equal(t, []string{"1", "3", "2"}, identities(res.Profiles))
	assert.Empty(t, res.Ledger)

	ledger, err := checkpoint.ReadLedger(fx.ledger)
	require.NoError(t, err)
	assert.Empty(t, ledger)

	onDisk, err := fx.store.Load()
	require.NoError(t, err)
	assert.Len(t, onDisk, 3)
}

func TestRunAppendSkipsCompletedIdentities(t *testing.T) {
	fx := newRunnerFixture(t, "1", "2", "3")
	_, err := fx.store.Sync(context.Background(), checkpoint.ModeFresh, func(context.Context) ([]domain.ProfileRecord, error) {
		return []domain.ProfileRecord{{Identity: "1", FullName: domain.Some("Hoshoryu")}}, nil
	})
	require.NoError(t, err)

	res, err := fx.runner(1).Run(context.Background(), []string{"1", "2", "3"}, RunOptions{Mode: checkpoint.ModeAppend})
	require.NoError(t, err)

	assert.Equal(t, []string{fx.fetcher.URL("2"), fx.fetcher.URL("3")}, fx.session.Navigated)
	assert.Equal(t, []string{"1", "2", "3"}, identities(res.Profiles))
	assert.Equal(t, 2, res.Fetched)
}

func TestRunAppendWithNothingPendingDoesNotOpenBrowser(t *testing.T) {
	fx := newRunnerFixture(t)
	_, err := fx.store.Sync(context.Background(), checkpoint.ModeFresh, func(context.Context) ([]domain.ProfileRecord, error) {
		return []domain.ProfileRecord{{Identity: "1", FullName: domain.Some("Hoshoryu")}}, nil
	})
	require.NoError(t, err)

	res, err := fx.runner(3).Run(context.Background(), []string{"1"}, RunOptions{Mode: checkpoint.ModeAppend, Retry: true})
	require.NoError(t, err)
	assert.Equal(t, 0, fx.renderer.Opened)
	assert.Equal(t, 1, res.Iterations)
	assert.Len(t, res.Profiles, 1)
}

func TestRunAppendRequiresCheckpoint(t *testing.T) {
	fx := newRunnerFixture(t, "1")

	_, err := fx.runner(1).Run(context.Background(), []string{"1"}, RunOptions{Mode: checkpoint.ModeAppend})
	require.Error(t, err)
	assert.True(t, errors.Is(err, checkpoint.ErrCheckpointMissing))
	assert.Equal(t, 0, fx.renderer.Opened)

	ledger, lerr := checkpoint.ReadLedger(fx.ledger)
	require.NoError(t, lerr)
	assert.Empty(t, ledger)
}

func TestRunReportsBrowserStartFailure(t *testing.T) {
	fx := newRunnerFixture(t, "1")
	fx.renderer.OpenErr = errors.New("chrome not found")

	_, err := fx.runner(1).Run(context.Background(), []string{"1"}, RunOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chrome not found")
}
