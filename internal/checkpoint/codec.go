package checkpoint

import (
	"fmt"
	"strconv"

	"sumocli/pkg/contracts/domain"
)

var rosterHeader = []string{"identity", "display_name", "rank_label", "position", "side", "duplicate_marker", "division"}

// RosterCodec stores domain.RosterSlot rows
type RosterCodec struct{}

func (RosterCodec) Header() []string {
	return append([]string(nil), rosterHeader...)
}

func (RosterCodec) Encode(s domain.RosterSlot) []string {
	marker := ""
	if s.Duplicate {
		marker = domain.DuplicateMarker
	}
	return []string{
		s.Identity,
		s.DisplayName,
		s.RankGroup,
		strconv.Itoa(s.Position),
		string(s.Side),
		marker,
		strconv.Itoa(s.Division),
	}
}

func (RosterCodec) Decode(rec []string) (domain.RosterSlot, error) {
	if len(rec) != len(rosterHeader) {
		return domain.RosterSlot{}, fmt.Errorf("roster record has %d fields, want %d", len(rec), len(rosterHeader))
	}
	pos, err := strconv.Atoi(rec[3])
	if err != nil {
		return domain.RosterSlot{}, fmt.Errorf("position %q: %w", rec[3], err)
	}
	div, err := strconv.Atoi(rec[6])
	if err != nil {
		return domain.RosterSlot{}, fmt.Errorf("division %q: %w", rec[6], err)
	}
	side := domain.Side(rec[4])
	if !side.Valid() {
		return domain.RosterSlot{}, fmt.Errorf("unknown side %q", rec[4])
	}
	return domain.RosterSlot{
		Identity:    rec[0],
		DisplayName: rec[1],
		RankGroup:   rec[2],
		Position:    pos,
		Side:        side,
		Duplicate:   rec[5] == domain.DuplicateMarker,
		Division:    div,
	}, nil
}

func (RosterCodec) Key(s domain.RosterSlot) string {
	return s.Identity
}

var profileHeader = []string{"identity", "debut", "retirement", "full_name", "stable", "real_name", "birthplace", "height", "weight", "birth_date", "is_new"}

// ProfileCodec stores domain.ProfileRecord rows. Null fields are empty.
type ProfileCodec struct{}

func (ProfileCodec) Header() []string {
	return append([]string(nil), profileHeader...)
}

func (ProfileCodec) Encode(p domain.ProfileRecord) []string {
	return []string{
		p.Identity,
		encodeString(p.Debut),
		encodeString(p.Retirement),
		encodeString(p.FullName),
		encodeString(p.Stable),
		encodeString(p.RealName),
		encodeString(p.Birthplace),
		encodeString(p.Height),
		encodeString(p.Weight),
		encodeString(p.BirthDate),
		EncodeBool(p.IsNew),
	}
}

func (ProfileCodec) Decode(rec []string) (domain.ProfileRecord, error) {
	if len(rec) != len(profileHeader) {
		return domain.ProfileRecord{}, fmt.Errorf("profile record has %d fields, want %d", len(rec), len(profileHeader))
	}
	if rec[0] == "" {
		return domain.ProfileRecord{}, fmt.Errorf("profile record without identity")
	}
	isNew, err := decodeBool(rec[10])
	if err != nil {
		return domain.ProfileRecord{}, err
	}
	return domain.ProfileRecord{
		Identity:   rec[0],
		Debut:      decodeString(rec[1]),
		Retirement: decodeString(rec[2]),
		FullName:   decodeString(rec[3]),
		Stable:     decodeString(rec[4]),
		RealName:   decodeString(rec[5]),
		Birthplace: decodeString(rec[6]),
		Height:     decodeString(rec[7]),
		Weight:     decodeString(rec[8]),
		BirthDate:  decodeString(rec[9]),
		IsNew:      isNew,
	}, nil
}

func (ProfileCodec) Key(p domain.ProfileRecord) string {
	return p.Identity
}

func encodeString(n domain.Nullable[string]) string {
	return n.OrElse("")
}

func decodeString(s string) domain.Nullable[string] {
	if s == "" {
		return domain.Null[string]()
	}
	return domain.Some(s)
}

// EncodeBool writes a nullable flag as "1", "0" or empty
func EncodeBool(n domain.Nullable[bool]) string {
	v, ok := n.Get()
	switch {
	case !ok:
		return ""
	case v:
		return "1"
	default:
		return "0"
	}
}

func decodeBool(s string) (domain.Nullable[bool], error) {
	switch s {
	case "":
		return domain.Null[bool](), nil
	case "1", "true", "True":
		return domain.Some(true), nil
	case "0", "false", "False":
		return domain.Some(false), nil
	default:
		return domain.Nullable[bool]{}, fmt.Errorf("is_new %q is not a flag", s)
	}
}
