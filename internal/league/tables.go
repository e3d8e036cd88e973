// Package league holds the fixed lookup tables of the ranking system.
package league

import "strings"

// DivisionCode names a division as written on ranking pages
type DivisionCode string

const (
	Makuuchi  DivisionCode = "M"
	Juryo     DivisionCode = "J"
	Makushita DivisionCode = "Ms"
	Sandanme  DivisionCode = "Sd"
	Jonidan   DivisionCode = "Jd"
	Jonokuchi DivisionCode = "Jk"
)

// Tables are built once at start and shared read-only
type Tables struct {
	divisionOrder []DivisionCode
	divisions     map[DivisionCode]int
	divisionNames map[string]int
	positional    map[string]bool
	reversal      map[string]string
}

// NewTables returns the league lookup tables
func NewTables() *Tables {
	return &Tables{
		divisionOrder: []DivisionCode{Makuuchi, Juryo, Makushita, Sandanme, Jonidan, Jonokuchi},
		divisions: map[DivisionCode]int{
			Makuuchi:  1,
			Juryo:     2,
			Makushita: 3,
			Sandanme:  4,
			Jonidan:   5,
			Jonokuchi: 6,
		},
		divisionNames: map[string]int{
			"makuuchi":  1,
			"juryo":     2,
			"makushita": 3,
			"sandanme":  4,
			"jonidan":   5,
			"jonokuchi": 6,
		},
		// named ranks are looked up by occurrence on the cross-source table
		positional: map[string]bool{"Y": true, "O": true, "S": true, "K": true},
		reversal: map[string]string{
			"O": "X",
			"X": "O",
			"Z": "A",
			"A": "Z",
			"-": "-",
		},
	}
}

// Divisions returns every division code in ranking order
func (t *Tables) Divisions() []DivisionCode {
	out := make([]DivisionCode, len(t.divisionOrder))
	copy(out, t.divisionOrder)
	return out
}

// DivisionNumber maps a division code to its numeric tier (0 if unknown)
func (t *Tables) DivisionNumber(code DivisionCode) int {
	return t.divisions[code]
}

// DivisionCodeOf is the inverse of DivisionNumber
func (t *Tables) DivisionCodeOf(n int) (DivisionCode, bool) {
	for code, num := range t.divisions {
		if num == n {
			return code, true
		}
	}
	return "", false
}

// DivisionByName maps a division's written name, as used in section titles
// of the champions page, to its numeric tier. Case is ignored.
func (t *Tables) DivisionByName(name string) (int, bool) {
	n, ok := t.divisionNames[strings.ToLower(strings.TrimSpace(name))]
	return n, ok
}

// IsNamedRank reports whether group is one of the named top ranks (Y, O, S, K)
func (t *Tables) IsNamedRank(group string) bool {
	return t.positional[group]
}

// ReverseResult flips a result marker to the opponent's point of view.
// Unknown markers reverse to themselves.
func (t *Tables) ReverseResult(marker string) string {
	if r, ok := t.reversal[marker]; ok {
		return r
	}
	return marker
}
