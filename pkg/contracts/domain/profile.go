package domain

// ProfileRecord holds biographical and status facts for one identity.
// Every field except Identity is optional because source pages vary.
type ProfileRecord struct {
	Identity   string           `json:"identity" validate:"required"`
	Debut      Nullable[string] `json:"debut"`      // YYYY.MM
	Retirement Nullable[string] `json:"retirement"` // YYYY.MM
	FullName   Nullable[string] `json:"full_name"`
	Stable     Nullable[string] `json:"stable"`
	RealName   Nullable[string] `json:"real_name"`
	Birthplace Nullable[string] `json:"birthplace"`
	Height     Nullable[string] `json:"height"` // cm
	Weight     Nullable[string] `json:"weight"` // kg
	BirthDate  Nullable[string] `json:"birth_date"`
	IsNew      Nullable[bool]   `json:"is_new"`
}

// Complete reports whether all required profile fields are populated.
// Incomplete records are fetched again on the next resumed run.
func (p ProfileRecord) Complete() bool {
	return p.Identity != "" && p.FullName.Valid && p.FullName.Value != ""
}
