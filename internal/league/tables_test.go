package league

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDivisionNumbers(t *testing.T) {
	tables := NewTables()

	tests := []struct {
		code DivisionCode
		want int
	}{
		{Makuuchi, 1},
		{Juryo, 2},
		{Makushita, 3},
		{Sandanme, 4},
		{Jonidan, 5},
		{Jonokuchi, 6},
		{DivisionCode("X"), 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tables.DivisionNumber(tt.code))
		})
	}

	code, ok := tables.DivisionCodeOf(3)
	assert.True(t, ok)
	assert.Equal(t, Makushita, code)

	_, ok = tables.DivisionCodeOf(9)
	assert.False(t, ok)
}

func TestDivisionsIsACopy(t *testing.T) {
	tables := NewTables()
	divs := tables.Divisions()
	divs[0] = "zz"
	assert.Equal(t, Makuuchi, tables.Divisions()[0])
	assert.Len(t, divs, 6)
}

func TestNamedRanks(t *testing.T) {
	tables := NewTables()
	assert.True(t, tables.IsNamedRank("K"))
	assert.True(t, tables.IsNamedRank("Y"))
	assert.False(t, tables.IsNamedRank("M"))
	assert.False(t, tables.IsNamedRank("Ms"))
}

func TestReverseResult(t *testing.T) {
	tables := NewTables()
	assert.Equal(t, "X", tables.ReverseResult("O"))
	assert.Equal(t, "O", tables.ReverseResult("X"))
	assert.Equal(t, "A", tables.ReverseResult("Z"))
	assert.Equal(t, "Z", tables.ReverseResult("A"))
	assert.Equal(t, "-", tables.ReverseResult("-"))
	assert.Equal(t, "", tables.ReverseResult(""))
}

func TestDivisionByName(t *testing.T) {
	tables := NewTables()

	n, ok := tables.DivisionByName("Makuuchi")
	assert.True(t, ok)
	assert.Equal(t, 1, n)

	n, ok = tables.DivisionByName(" JONOKUCHI ")
	assert.True(t, ok)
	assert.Equal(t, 6, n)

	_, ok = tables.DivisionByName("Shukun-sho")
	assert.False(t, ok)
}
