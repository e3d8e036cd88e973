package domain

// CrossReference maps a roster identity to the identifier used by the
// second ranking source for the same competitor
type CrossReference struct {
	Identity   string `json:"identity"`
	ExternalID string `json:"external_id"`
}
