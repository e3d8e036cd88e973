package domain

import (
	"fmt"
)

// Period is the recurring tournament cycle all tables are keyed by
type Period struct {
	Year  int `json:"year"`
	Index int `json:"period_index"` // month number the period is held in
}

// Label renders the period as YYYY.MM
func (p Period) Label() string {
	return fmt.Sprintf("%d.%02d", p.Year, p.Index)
}
