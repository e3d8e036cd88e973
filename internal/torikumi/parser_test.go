package torikumi

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sumocli/internal/league"
	"sumocli/pkg/contracts/domain"
)

func TestParseDay(t *testing.T) {
	html := dayPage("Day 3 September 10, 2024",
		boutRow{left: "3842", right: "3761", kimarite: "yorikiri", winner: "left"},
		boutRow{left: "4001", right: "4002", kimarite: "fusensho", winner: "right"},
	)

	got, err := NewParser(league.NewTables(), quietLogger()).ParseDay(context.Background(), html, 1, 3)
	require.NoError(t, err)
	require.Len(t, got, 4)

	assert.Equal(t, domain.Matchup{
		Period:     "2024.09",
		Day:        3,
		Identity:   domain.Some("3842"),
		Result:     domain.Some("O"),
		OpponentID: domain.Some("3761"),
		Kimarite:   domain.Some("yorikiri"),
		Division:   1,
		MatchOrder: 1,
	}, got[0])

	flipped := got[1]
	assert.Equal(t, domain.Some("3761"), flipped.Identity)
	assert.Equal(t, domain.Some("3842"), flipped.OpponentID)
	assert.Equal(t, domain.Some("X"), flipped.Result)
	assert.Equal(t, 1, flipped.MatchOrder)

	assert.Equal(t, domain.Some("A"), got[2].Result)
	assert.Equal(t, domain.Some("Z"), got[3].Result)
	assert.Equal(t, 2, got[2].MatchOrder)
}

func TestParseDayUndecidedBout(t *testing.T) {
	html := dayPage("Day 15 January 28, 2024",
		boutRow{left: "1", right: "", kimarite: "", winner: ""},
	)

	got, err := NewParser(league.NewTables(), quietLogger()).ParseDay(context.Background(), html, 2, 15)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, domain.Some("1"), got[0].Identity)
	assert.False(t, got[0].OpponentID.Valid)
	assert.False(t, got[0].Kimarite.Valid)
	assert.False(t, got[0].Result.Valid)
	assert.False(t, got[1].Result.Valid)
	assert.Equal(t, domain.Some("1"), got[1].OpponentID)
}

func TestParseDayWithoutBouts(t *testing.T) {
	p := NewParser(league.NewTables(), quietLogger())

	_, err := p.ParseDay(context.Background(), dayPage("Day 1 May 12, 2024"), 1, 1)
	assert.ErrorIs(t, err, ErrNoBouts)

	_, err = p.ParseDay(context.Background(), `<div id="dayHead">Day 1 May 12, 2024</div>`, 1, 1)
	assert.ErrorIs(t, err, ErrNoBouts)

	_, err = p.ParseDay(context.Background(), dayPage("Schedule"), 1, 1)
	assert.Error(t, err)
}

func TestPeriodLabel(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"Day 3 September 10, 2024", "2024.09", false},
		{"Day13January 21, 2024", "2024.01", false},
		{"  Day 1  March 10, 2024 ", "2024.03", false},
		{"September 10, 2024", "", true},
		{"Day 3", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, err := PeriodLabel(tt.header)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFlipKeepsUnknownMarker(t *testing.T) {
	p := NewParser(league.NewTables(), quietLogger())
	m := domain.Matchup{Identity: domain.Some("1"), OpponentID: domain.Some("2"), Result: domain.Some("-")}

	f := p.Flip(m)
	assert.Equal(t, domain.Some("-"), f.Result)
	assert.Equal(t, domain.Some("2"), f.Identity)
	assert.Equal(t, m, p.Flip(f))
}
