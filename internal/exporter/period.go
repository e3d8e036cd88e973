package exporter

import (
	"strings"
	"time"

	"sumocli/pkg/contracts/domain"
)

// PeriodFor returns the period a run at now belongs to. Periods are held in
// odd months; an even month is attributed to the following period, so
// December rolls into January of the next year.
func PeriodFor(now time.Time) domain.Period {
	year, month := now.Year(), int(now.Month())
	if month%2 == 0 {
		month++
	}
	if month > 12 {
		year++
		month = 1
	}
	return domain.Period{Year: year, Index: month}
}

// birthDateLayouts are the forms profile pages write dates of birth in
var birthDateLayouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"2 January 2006",
	"2006/01/02",
	"2006-01-02",
	"2006.01.02",
	"01/02/2006",
}

// NormalizeBirthDate rewrites a source date as 2006-01-02
func NormalizeBirthDate(raw domain.Nullable[string]) domain.FieldResult[string] {
	s, ok := raw.Get()
	s = strings.TrimSpace(s)
	if !ok || s == "" {
		return domain.FieldResult[string]{}
	}
	for _, layout := range birthDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return domain.Found(t.Format(time.DateOnly))
		}
	}
	return domain.Missing[string]("unrecognised date " + s)
}
