package torikumi

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sumocli/internal/config"
	"sumocli/internal/exporter"
	"sumocli/internal/league"
	"sumocli/internal/render/rendertest"
)

const urlTemplate = "https://example.test/torikumi/%d/%d/"

func newScraper() *Scraper {
	return NewScraper(league.NewTables(), Config{URLTemplate: urlTemplate, WaitTimeout: time.Millisecond}, quietLogger())
}

func TestDayRange(t *testing.T) {
	tests := []struct {
		name    string
		day     int
		end     int
		want    []int
		wantErr bool
	}{
		{"whole period", 0, 0, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}, false},
		{"single day", 4, 0, []int{4}, false},
		{"range", 13, 16, []int{13, 14, 15}, false},
		{"day too large", 16, 0, nil, true},
		{"end too large", 3, 17, nil, true},
		{"end before day", 5, 5, nil, true},
		{"end without day", 0, 4, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DayRange(tt.day, tt.end)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScrapeStopsAfterEmptyDay(t *testing.T) {
	s := newScraper()
	session := rendertest.NewSession(map[string]string{
		s.URL(1, 1): dayPage("Day 1 September 8, 2024", boutRow{left: "1", right: "2", kimarite: "oshidashi", winner: "left"}),
		s.URL(2, 1): dayPage("Day 1 September 8, 2024",
			boutRow{left: "3", right: "4", kimarite: "hatakikomi", winner: "right"},
			boutRow{left: "5", right: "6", kimarite: "yorikiri", winner: "left"}),
		// day 2 only has a page without bouts
		s.URL(1, 2): dayPage("Day 2 September 9, 2024"),
		s.URL(1, 3): dayPage("Day 3 September 10, 2024", boutRow{left: "1", right: "3", kimarite: "yorikiri", winner: "left"}),
	})

	got, err := s.Scrape(context.Background(), session, []int{1, 2, 3})
	require.NoError(t, err)
	assert.Len(t, got, 6)
	for _, m := range got {
		assert.Equal(t, 1, m.Day)
		assert.Equal(t, "2024.09", m.Period)
	}
	assert.Equal(t, 2, got[2].Division)

	assert.Len(t, session.Navigated, 12)
	assert.NotContains(t, session.Navigated, s.URL(1, 3))
}

func TestScrapeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newScraper().Scrape(ctx, rendertest.NewSession(map[string]string{}), []int{1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	w := exporter.NewCSVWriter(&config.Paths{DataDir: dir})

	html := dayPage("Day 1 September 8, 2024", boutRow{left: "1", right: "2", kimarite: "oshidashi", winner: "left"})
	matchups, err := NewParser(league.NewTables(), quietLogger()).ParseDay(context.Background(), html, 1, 1)
	require.NoError(t, err)

	require.NoError(t, Write(w, "torikumi.csv", matchups))

	records, err := w.ReadCSV(filepath.Join(dir, "torikumi.csv"))
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		Headers,
		{"2024.09", "1", "1", "O", "2", "oshidashi", "1", "1"},
		{"2024.09", "1", "2", "X", "1", "oshidashi", "1", "1"},
	}, records)
}
