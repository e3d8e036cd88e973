package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains every file the pipeline reads or writes.
// This is the single source of truth for file locations.
type Paths struct {
	DataDir           string
	RosterCheckpoint  string
	ProfileCheckpoint string
	ErrorLedger       string
	ExportCSV         string
	ExportWorkbook    string // empty when the workbook is disabled
	TorikumiCSV       string
	WinnersCSV        string
	AwardsCSV         string
}

// NewPaths resolves cfg. A relative DataDir is taken from the working
// directory; relative file names land inside DataDir.
func NewPaths(cfg PathsConfig) (*Paths, error) {
	dataDir := cfg.DataDir
	if !filepath.IsAbs(dataDir) {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		dataDir = filepath.Join(wd, dataDir)
	}

	p := &Paths{DataDir: dataDir}
	p.RosterCheckpoint = p.GetDataPath(cfg.RosterFile)
	p.ProfileCheckpoint = p.GetDataPath(cfg.ProfileFile)
	p.ErrorLedger = p.GetDataPath(cfg.LedgerFile)
	p.ExportCSV = p.GetDataPath(cfg.ExportFile)
	if cfg.WorkbookFile != "" {
		p.ExportWorkbook = p.GetDataPath(cfg.WorkbookFile)
	}
	p.TorikumiCSV = p.GetDataPath(cfg.TorikumiFile)
	p.WinnersCSV = p.GetDataPath(cfg.WinnersFile)
	p.AwardsCSV = p.GetDataPath(cfg.AwardsFile)
	return p, nil
}

// GetDataPath returns name resolved under the data directory
func (p *Paths) GetDataPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(p.DataDir, name)
}

// EnsureDirectories creates the directories of every configured file
func (p *Paths) EnsureDirectories() error {
	dirs := map[string]struct{}{p.DataDir: {}}
	for _, f := range []string{p.RosterCheckpoint, p.ProfileCheckpoint, p.ErrorLedger, p.ExportCSV, p.ExportWorkbook, p.TorikumiCSV, p.WinnersCSV, p.AwardsCSV} {
		if f != "" {
			dirs[filepath.Dir(f)] = struct{}{}
		}
	}
	for dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// RemoveCheckpoints deletes the roster and profile checkpoints.
// Missing files are not an error.
func (p *Paths) RemoveCheckpoints() error {
	for _, f := range []string{p.RosterCheckpoint, p.ProfileCheckpoint} {
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", f, err)
		}
		slog.Debug("checkpoint_removed", slog.String("path", f))
	}
	return nil
}

// LogPathResolution logs resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Debug("paths_resolved",
		slog.String("data_dir", p.DataDir),
		slog.String("roster_checkpoint", p.RosterCheckpoint),
		slog.String("profile_checkpoint", p.ProfileCheckpoint),
		slog.String("error_ledger", p.ErrorLedger),
		slog.String("export_csv", p.ExportCSV),
		slog.String("export_workbook", p.ExportWorkbook),
		slog.String("torikumi_csv", p.TorikumiCSV),
		slog.String("winners_csv", p.WinnersCSV),
		slog.String("awards_csv", p.AwardsCSV))
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
