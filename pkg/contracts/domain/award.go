package domain

// Champion is the yusho winner of one division
type Champion struct {
	Identity Nullable[string] `json:"identity"`
	Division int              `json:"division"`
}

// SpecialPrize is one sansho awarded in the top division. A prize shared by
// several wrestlers yields one record each.
type SpecialPrize struct {
	Identity Nullable[string] `json:"identity"`
	Award    string           `json:"award"`
}
