package domain

// Matchup is one side of a single bout on one day of a period.
// Every bout is stored twice, once from each competitor's side.
type Matchup struct {
	Period     string           `json:"period"`
	Day        int              `json:"day"`
	Identity   Nullable[string] `json:"identity"`
	Result     Nullable[string] `json:"result"`
	OpponentID Nullable[string] `json:"opponent_id"`
	Kimarite   Nullable[string] `json:"kimarite"`
	Division   int              `json:"division"`
	MatchOrder int              `json:"match_order"`
}
