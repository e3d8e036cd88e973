package domain

import (
	"fmt"
)

// Side distinguishes the two parallel slots sharing a rank group and position
type Side string

const (
	SideEast Side = "e"
	SideWest Side = "w"
)

// Valid reports whether s is one of the two known sides
func (s Side) Valid() bool {
	return s == SideEast || s == SideWest
}

// DuplicateMarker is the persisted value of RosterSlot.Duplicate
const DuplicateMarker = "TD"

// RosterSlot is one competitor's placement within one ranking pass
type RosterSlot struct {
	Identity    string `json:"identity" validate:"required,numeric"`
	DisplayName string `json:"display_name" validate:"required"`
	RankGroup   string `json:"rank_label" validate:"required"`
	Position    int    `json:"position" validate:"min=1"`
	Side        Side   `json:"side" validate:"oneof=e w"`
	Duplicate   bool   `json:"duplicate_marker"`
	Division    int    `json:"division" validate:"min=1"`
}

// RankKey is the canonical (rank group, position, side) triple of a slot
type RankKey struct {
	Group    string
	Position int
	Side     Side
}

// String renders the key the way rank strings are written, e.g. "M5e"
func (k RankKey) String() string {
	return fmt.Sprintf("%s%d%s", k.Group, k.Position, k.Side)
}

// Key returns the canonical rank key of the slot
func (s RosterSlot) Key() RankKey {
	return RankKey{Group: s.RankGroup, Position: s.Position, Side: s.Side}
}
