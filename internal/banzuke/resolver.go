package banzuke

import (
	"log/slog"
	"strconv"
	"strings"

	"sumocli/internal/league"
	"sumocli/pkg/contracts/domain"
)

// Resolver assigns canonical rank keys to parsed rows
type Resolver struct {
	tables *league.Tables
	logger *slog.Logger
}

// NewResolver creates a resolver using the shared league tables
func NewResolver(tables *league.Tables, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{tables: tables, logger: logger}
}

// Resolve converts the rows of one division pass into roster slots.
//
// The position counter restarts at 1 whenever the rank label differs from
// the previous row and advances by one when it repeats. Labels starting with
// "#" carry their own position and use the division code as rank group.
// A key seen earlier in the pass marks the later slot as duplicate; the
// first occurrence stays unmarked.
func (r *Resolver) Resolve(division league.DivisionCode, rows []RankRow) []domain.RosterSlot {
	divisionNum := r.tables.DivisionNumber(division)
	seen := make(map[domain.RankKey]struct{})

	var (
		slots     []domain.RosterSlot
		prevLabel string
		counter   int
	)
	for _, row := range rows {
		if row.RankLabel == prevLabel {
			counter++
		} else {
			counter = 1
		}
		prevLabel = row.RankLabel

		group, position, ok := r.rankOf(division, row.RankLabel, counter)
		if !ok {
			r.logger.Warn("rank_label_unparseable",
				slog.String("division", string(division)),
				slog.String("rank_label", row.RankLabel))
			continue
		}

		for _, cand := range row.Slots {
			slot := domain.RosterSlot{
				Identity:    cand.Identity,
				DisplayName: cand.DisplayName,
				RankGroup:   group,
				Position:    position,
				Side:        cand.Side,
				Division:    divisionNum,
			}
			key := slot.Key()
			if _, dup := seen[key]; dup {
				slot.Duplicate = true
				r.logger.Info("duplicate_rank_key",
					slog.String("rank_key", key.String()),
					slog.String("identity", slot.Identity))
			}
			seen[key] = struct{}{}
			slots = append(slots, slot)
		}
	}
	return slots
}

func (r *Resolver) rankOf(division league.DivisionCode, label string, counter int) (string, int, bool) {
	if strings.HasPrefix(label, "#") {
		pos, err := strconv.Atoi(strings.TrimSpace(label[1:]))
		if err != nil || pos < 1 {
			return "", 0, false
		}
		return string(division), pos, true
	}
	return label[:1], counter, true
}

// DropDuplicates removes rows identical in every field, keeping the first
func DropDuplicates(slots []domain.RosterSlot) []domain.RosterSlot {
	seen := make(map[domain.RosterSlot]struct{}, len(slots))
	out := make([]domain.RosterSlot, 0, len(slots))
	for _, s := range slots {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
