// Package config loads and validates the pipeline configuration.
//
// # Configuration Sources
//
// Configuration is layered in the following order, later sources winning:
//
//	1. Built-in defaults (Default)
//	2. config.yaml in the working directory or configs/
//	3. Environment variables
//
// # Environment Variables
//
// All environment variables follow the pattern SUMO_<SECTION>_<FIELD>:
//
//	SUMO_LOGGING_LEVEL=debug
//	SUMO_PATHS_DATA_DIR=/var/lib/banzuke
//	SUMO_SCRAPE_WAIT_TIMEOUT=45s
//	SUMO_SCRAPE_MAX_FAILURE_STREAK=10
//	SUMO_TELEMETRY_METRICS_FILE=/var/lib/node_exporter/banzuke.prom
//
// # Validation
//
// Every section carries validator struct tags; Load rejects a configuration
// with out-of-range budgets, malformed URLs or URL templates missing their
// placeholder.
//
// # Paths
//
// Paths resolves the checkpoint, ledger and export files under the data
// directory:
//
//	paths, err := config.NewPaths(cfg.Paths)
//	if err != nil {
//	    return err
//	}
//	if err := paths.EnsureDirectories(); err != nil {
//	    return err
//	}
package config
