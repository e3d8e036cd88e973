package exporter

import (
	"sumocli/pkg/contracts/domain"
)

// Row is one line of the export: a roster slot with its profile and the
// competitor's id on the second source
type Row struct {
	Slot       domain.RosterSlot
	Profile    domain.ProfileRecord
	ExternalID domain.Nullable[string]
}

// Merge left joins roster slots with profiles on identity. When several
// profiles share an identity a complete one beats an incomplete one and a
// later one beats an earlier one. Slots without a profile keep null fields.
func Merge(slots []domain.RosterSlot, profiles []domain.ProfileRecord) []Row {
	byID := make(map[string]domain.ProfileRecord, len(profiles))
	for _, p := range profiles {
		prev, ok := byID[p.Identity]
		if ok && prev.Complete() && !p.Complete() {
			continue
		}
		byID[p.Identity] = p
	}

	rows := make([]Row, 0, len(slots))
	for _, s := range slots {
		row := Row{Slot: s}
		if p, ok := byID[s.Identity]; ok {
			row.Profile = p
		}
		rows = append(rows, row)
	}
	return rows
}
