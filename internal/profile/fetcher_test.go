package profile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sumocli/internal/render/rendertest"
)

const urlTemplate = "https://example.test/profile/%s/"

func testFetcher(streak int) *Fetcher {
	return NewFetcher(FetcherConfig{
		URLTemplate:           urlTemplate,
		WaitTimeout:           time.Millisecond,
		MaxNavigationAttempts: 3,
		MaxFailureStreak:      streak,
	}, quietLogger())
}

func TestFetchRetriesUntilLocationMatches(t *testing.T) {
	f := testFetcher(10)
	url := f.URL("1")
	session := rendertest.NewSession(map[string]string{url: defaultPage().html()})
	session.NavErrors[url] = 2

	rec, err := f.Fetch(context.Background(), session, "1")
	require.NoError(t, err)
	assert.True(t, rec.Complete())
	assert.Len(t, session.Navigated, 3)
}

func TestFetchExhaustsAttempts(t *testing.T) {
	tests := []struct {
		name  string
		setup func(s *rendertest.Session, url string)
	}{
		{
			name: "redirected elsewhere",
			setup: func(s *rendertest.Session, url string) {
				s.Pages["https://example.test/"] = "<html></html>"
				s.Redirects[url] = "https://example.test/"
			},
		},
		{
			name: "navigation keeps failing",
			setup: func(s *rendertest.Session, url string) {
				s.Pages[url] = defaultPage().html()
				s.NavErrors[url] = 5
			},
		},
		{
			name: "profile table never appears",
			setup: func(s *rendertest.Session, url string) {
				s.Pages[url] = "<html><body>maintenance</body></html>"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := testFetcher(10)
			session := rendertest.NewSession(map[string]string{})
			tt.setup(session, f.URL("7"))

			_, err := f.Fetch(context.Background(), session, "7")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrAttemptsExhausted))
			assert.Len(t, session.Navigated, 3)
		})
	}
}

func TestFetchAllRecordsFailures(t *testing.T) {
	f := testFetcher(10)
	session := rendertest.NewSession(map[string]string{
		f.URL("1"): defaultPage().html(),
		f.URL("3"): defaultPage().html(),
	})

	res, err := f.FetchAll(context.Background(), session, []string{"1", "2", "3"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Attempted)
	assert.Equal(t, []string{"2"}, res.Failed)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "1", res.Records[0].Identity)
	assert.Equal(t, "3", res.Records[1].Identity)
}

func TestFetchAllAbortsOnFailureStreak(t *testing.T) {
	f := testFetcher(2)
	session := rendertest.NewSession(map[string]string{
		f.URL("ok1"): defaultPage().html(),
		f.URL("ok2"): defaultPage().html(),
		f.URL("ok3"): defaultPage().html(),
	})

	// a success resets the streak, three failures in a row exceed it
	ids := []string{"ok1", "bad1", "bad2", "ok2", "bad3", "bad4", "bad5", "ok3"}
	res, err := f.FetchAll(context.Background(), session, ids)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooManyFailures))
	assert.Equal(t, 7, res.Attempted)
	assert.Equal(t, []string{"bad1", "bad2", "bad3", "bad4", "bad5"}, res.Failed)
	assert.Len(t, res.Records, 2)
}

func TestFetchAllStopsOnCancel(t *testing.T) {
	f := testFetcher(10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := f.FetchAll(ctx, rendertest.NewSession(map[string]string{}), []string{"1"})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, res.Attempted)
}

func TestSameURL(t *testing.T) {
	assert.True(t, sameURL("https://a/b/1/", "https://a/b/1"))
	assert.False(t, sameURL("https://a/b/2/", "https://a/b/1/"))
}
