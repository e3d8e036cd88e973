package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Sources   SourcesConfig   `yaml:"sources" envconfig:"SOURCES"`
	Scrape    ScrapeConfig    `yaml:"scrape" envconfig:"SCRAPE"`
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// PathsConfig names the files of a run. Relative names resolve under DataDir.
type PathsConfig struct {
	DataDir      string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	RosterFile   string `yaml:"roster_file" envconfig:"ROSTER_FILE" validate:"required"`
	ProfileFile  string `yaml:"profile_file" envconfig:"PROFILE_FILE" validate:"required"`
	LedgerFile   string `yaml:"ledger_file" envconfig:"LEDGER_FILE" validate:"required"`
	ExportFile   string `yaml:"export_file" envconfig:"EXPORT_FILE" validate:"required"`
	WorkbookFile string `yaml:"workbook_file" envconfig:"WORKBOOK_FILE"`
	TorikumiFile string `yaml:"torikumi_file" envconfig:"TORIKUMI_FILE" validate:"required"`
	WinnersFile  string `yaml:"winners_file" envconfig:"WINNERS_FILE" validate:"required"`
	AwardsFile   string `yaml:"awards_file" envconfig:"AWARDS_FILE" validate:"required"`
}

// SourcesConfig holds the page addresses scraped by each stage
type SourcesConfig struct {
	BanzukeURL  string `yaml:"banzuke_url" envconfig:"BANZUKE_URL" validate:"required,url"`
	ProfileURL  string `yaml:"profile_url" envconfig:"PROFILE_URL" validate:"required,contains=%s"`
	CrossRefURL string `yaml:"crossref_url" envconfig:"CROSSREF_URL" validate:"required,url"`
	TorikumiURL string `yaml:"torikumi_url" envconfig:"TORIKUMI_URL" validate:"required,contains=%d"`
	AwardsURL   string `yaml:"awards_url" envconfig:"AWARDS_URL" validate:"required,url"`
}

// ScrapeConfig bounds browser waits and retry budgets
type ScrapeConfig struct {
	Headless              bool          `yaml:"headless" envconfig:"HEADLESS"`
	WaitTimeout           time.Duration `yaml:"wait_timeout" envconfig:"WAIT_TIMEOUT" validate:"gt=0"`
	PageWait              time.Duration `yaml:"page_wait" envconfig:"PAGE_WAIT" validate:"gt=0"`
	MaxPages              int           `yaml:"max_pages" envconfig:"MAX_PAGES" validate:"min=1"`
	MaxNavigationAttempts int           `yaml:"max_navigation_attempts" envconfig:"MAX_NAVIGATION_ATTEMPTS" validate:"min=1"`
	MaxFailureStreak      int           `yaml:"max_failure_streak" envconfig:"MAX_FAILURE_STREAK" validate:"min=1"`
	MaxResumeIterations   int           `yaml:"max_resume_iterations" envconfig:"MAX_RESUME_ITERATIONS" validate:"min=1"`
	RequestsPerSecond     float64       `yaml:"requests_per_second" envconfig:"REQUESTS_PER_SECOND" validate:"gte=0"`
}

// PipelineConfig bounds whole stages. Stages missing from StageTimeouts keep
// their built-in timeout.
type PipelineConfig struct {
	StageTimeouts   map[string]time.Duration `yaml:"stage_timeouts" envconfig:"STAGE_TIMEOUTS" validate:"dive,keys,oneof=roster profiles redrive export torikumi awards,endkeys,gt=0"`
	StageAttempts   int                      `yaml:"stage_attempts" envconfig:"STAGE_ATTEMPTS" validate:"min=1"`
	RetryDelay      time.Duration            `yaml:"retry_delay" envconfig:"RETRY_DELAY" validate:"gte=0"`
	ContinueOnError bool                     `yaml:"continue_on_error" envconfig:"CONTINUE_ON_ERROR"`
}

// TelemetryConfig selects where spans and metrics go
type TelemetryConfig struct {
	TraceExporter string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout file none"`
	TraceFile     string `yaml:"trace_file" envconfig:"TRACE_FILE" validate:"required_if=TraceExporter file"`
	// MetricsFile receives the metrics in textfile format at the end of a run. Empty disables it.
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// Load builds the configuration from defaults, then the YAML file at
// configFile (or the first config.yaml found when empty), then SUMO_*
// environment variables. The result is validated.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks struct constraints and reports every failing field
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Errorf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return errors.Join(msgs...)
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/banzuke.log",
		},
		Paths: PathsConfig{
			DataDir:      DefaultDataDir,
			RosterFile:   "roster_checkpoint.csv",
			ProfileFile:  "profile_checkpoint.csv",
			LedgerFile:   "error_log.txt",
			ExportFile:   "banzuke_export.csv",
			WorkbookFile: "banzuke_export.xlsx",
			TorikumiFile: "torikumi.csv",
			WinnersFile:  "winners.csv",
			AwardsFile:   "awards.csv",
		},
		Sources: SourcesConfig{
			BanzukeURL:  DefaultBanzukeURL,
			ProfileURL:  DefaultProfileURL,
			CrossRefURL: DefaultCrossRefURL,
			TorikumiURL: DefaultTorikumiURL,
			AwardsURL:   DefaultAwardsURL,
		},
		Scrape: ScrapeConfig{
			Headless:              true,
			WaitTimeout:           DefaultWaitTimeout,
			PageWait:              DefaultWaitTimeout,
			MaxPages:              DefaultMaxPages,
			MaxNavigationAttempts: DefaultMaxNavigationAttempts,
			MaxFailureStreak:      DefaultMaxFailureStreak,
			MaxResumeIterations:   DefaultMaxResumeIterations,
			RequestsPerSecond:     DefaultRequestsPerSecond,
		},
		Pipeline: PipelineConfig{
			StageAttempts: 1,
			RetryDelay:    5 * time.Second,
		},
		Telemetry: TelemetryConfig{
			TraceExporter: "none",
		},
	}
}
