package config

import "time"

// Application constants
const (
	AppName = "banzuke"

	// EnvPrefix namespaces environment overrides, e.g. SUMO_SCRAPE_MAX_PAGES
	EnvPrefix = "SUMO"

	DefaultDataDir = "data"

	DefaultBanzukeURL  = "https://sumo.or.jp/EnHonbashoBanzuke/index/"
	DefaultProfileURL  = "https://sumo.or.jp/EnSumoDataRikishi/profile/%s/"
	DefaultCrossRefURL = "http://sumodb.sumogames.de/Banzuke.aspx"
	DefaultTorikumiURL = "https://sumo.or.jp/EnHonbashoMain/torikumi/%d/%d/"
	DefaultAwardsURL   = "https://sumo.or.jp/EnHonbashoMain/champions/"

	DefaultWaitTimeout           = 30 * time.Second
	DefaultMaxPages              = 50
	DefaultMaxNavigationAttempts = 3
	DefaultMaxFailureStreak      = 10
	DefaultMaxResumeIterations   = 5
	DefaultRequestsPerSecond     = 2.0
)
