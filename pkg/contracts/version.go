package contracts

import (
	"fmt"
	"runtime"
)

const (
	// Version is the current version of the application
	Version = "0.3.0"

	// CheckpointFormatVersion changes whenever checkpoint or export columns change
	CheckpointFormatVersion = "v1"
)

var (
	// BuildTime is set during build using ldflags
	BuildTime = "unknown"

	// GitCommit is set during build using ldflags
	GitCommit = "unknown"
)

// GetFullVersionString returns the version line printed by --version
func GetFullVersionString() string {
	return fmt.Sprintf("%s (checkpoints: %s, built: %s, commit: %s, go: %s, os: %s/%s)",
		Version,
		CheckpointFormatVersion,
		BuildTime,
		GitCommit,
		runtime.Version(),
		runtime.GOOS,
		runtime.GOARCH)
}
