package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel/metric"

	"sumocli/internal/awards"
	"sumocli/internal/banzuke"
	"sumocli/internal/checkpoint"
	"sumocli/internal/config"
	"sumocli/internal/crossref"
	"sumocli/internal/exporter"
	"sumocli/internal/infrastructure"
	"sumocli/internal/league"
	"sumocli/internal/profile"
	"sumocli/internal/render"
	"sumocli/internal/torikumi"
	"sumocli/pkg/contracts/domain"
)

// StageDeps are the collaborators shared by every stage
type StageDeps struct {
	Config   *config.Config
	Paths    *config.Paths
	Tables   *league.Tables
	Renderer render.Renderer
	Writer   *exporter.CSVWriter
	// Metrics may be nil
	Metrics *infrastructure.PipelineMetrics
	Logger  *slog.Logger
	// Now defaults to time.Now
	Now func() time.Time
}

func (d StageDeps) validate() error {
	switch {
	case d.Config == nil:
		return errors.New("stage deps: config is required")
	case d.Paths == nil:
		return errors.New("stage deps: paths are required")
	case d.Tables == nil:
		return errors.New("stage deps: league tables are required")
	case d.Renderer == nil:
		return errors.New("stage deps: renderer is required")
	}
	return nil
}

func (d StageDeps) withDefaults() StageDeps {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Writer == nil {
		d.Writer = exporter.NewCSVWriter(d.Paths)
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// count adds n to the counter picked from the pipeline metrics
func (d StageDeps) count(ctx context.Context, pick func(*infrastructure.PipelineMetrics) metric.Int64Counter, n int) {
	if d.Metrics == nil || n <= 0 {
		return
	}
	pick(d.Metrics).Add(ctx, int64(n))
}

// withSession opens a browser session for fn and always releases it
func withSession(ctx context.Context, renderer render.Renderer, logger *slog.Logger, fn func(render.Session) error) error {
	session, err := renderer.Open(ctx)
	if err != nil {
		return fmt.Errorf("open browser: %w", err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			logger.WarnContext(ctx, "browser_close_failed", slog.String("error", cerr.Error()))
		}
	}()
	return fn(session)
}

func setStageCount(state *OperationState, stageID, key string, n int) {
	if s := state.GetStage(stageID); s != nil {
		s.SetCount(key, n)
	}
}

func setStageNote(state *OperationState, stageID, key, value string) {
	if s := state.GetStage(stageID); s != nil {
		s.SetNote(key, value)
	}
}

func newRosterStore(deps StageDeps, logger *slog.Logger) *checkpoint.Store[domain.RosterSlot] {
	return checkpoint.NewStore[domain.RosterSlot](deps.Paths.RosterCheckpoint, checkpoint.RosterCodec{}, deps.Writer, logger)
}

func newProfileStore(deps StageDeps, logger *slog.Logger) *checkpoint.Store[domain.ProfileRecord] {
	return checkpoint.NewStore[domain.ProfileRecord](deps.Paths.ProfileCheckpoint, checkpoint.ProfileCodec{}, deps.Writer, logger)
}

// rosterSlots returns the slots of this run, or the roster checkpoint when
// the roster stage did not run
func rosterSlots(state *OperationState, store *checkpoint.Store[domain.RosterSlot]) ([]domain.RosterSlot, error) {
	if slots, ok := ContextValue[[]domain.RosterSlot](state, ContextKeySlots); ok {
		return slots, nil
	}
	if !store.Exists() {
		return nil, fmt.Errorf("%w: %s (run the roster stage first)", checkpoint.ErrCheckpointMissing, store.Path())
	}
	return store.Load()
}

// identities lists each identity once in roster order
func identities(slots []domain.RosterSlot) []string {
	seen := make(map[string]struct{}, len(slots))
	ids := make([]string, 0, len(slots))
	for _, s := range slots {
		if _, ok := seen[s.Identity]; ok {
			continue
		}
		seen[s.Identity] = struct{}{}
		ids = append(ids, s.Identity)
	}
	return ids
}

// RosterStage collects the ranking table of every division
type RosterStage struct {
	BaseStage
	deps      StageDeps
	collector *banzuke.Collector
	store     *checkpoint.Store[domain.RosterSlot]
	logger    *slog.Logger
}

// NewRosterStage creates the roster stage
func NewRosterStage(deps StageDeps) *RosterStage {
	logger := deps.Logger.With(slog.String("stage", StageIDRoster))
	scrape := deps.Config.Scrape
	return &RosterStage{
		BaseStage: NewBaseStage(StageIDRoster, StageNameRoster, nil),
		deps:      deps,
		collector: banzuke.NewCollector(deps.Tables, banzuke.CollectorConfig{
			WaitTimeout: scrape.WaitTimeout,
			PageWait:    scrape.PageWait,
			MaxPages:    scrape.MaxPages,
		}, logger),
		store:  newRosterStore(deps, logger),
		logger: logger,
	}
}

// Execute collects the divisions missing from the checkpoint. Fresh runs
// collect all of them. Slots gathered before a failure are kept on disk.
func (s *RosterStage) Execute(ctx context.Context, state *OperationState) error {
	mode := state.Mode()
	divisions := s.deps.Tables.Divisions()
	if mode == checkpoint.ModeAppend && s.store.Exists() {
		prior, err := s.store.Load()
		if err != nil {
			return err
		}
		divisions = checkpoint.Remaining(divisions, s.collectedDivisions(prior))
	}

	s.logger.InfoContext(ctx, "roster_pending",
		slog.String("mode", string(mode)),
		slog.Int("divisions", len(divisions)))

	var collected []domain.RosterSlot
	slots, err := s.store.Sync(ctx, mode, func(ctx context.Context) ([]domain.RosterSlot, error) {
		if len(divisions) == 0 {
			return nil, nil
		}
		cerr := withSession(ctx, s.deps.Renderer, s.logger, func(session render.Session) error {
			var err error
			collected, err = s.collector.Collect(ctx, session, s.deps.Config.Sources.BanzukeURL, divisions)
			return err
		})
		return collected, cerr
	})

	duplicates := 0
	for _, slot := range collected {
		if slot.Duplicate {
			duplicates++
		}
	}
	s.deps.count(ctx, func(m *infrastructure.PipelineMetrics) metric.Int64Counter { return m.RosterSlots }, len(collected))
	s.deps.count(ctx, func(m *infrastructure.PipelineMetrics) metric.Int64Counter { return m.RosterDuplicates }, duplicates)
	setStageCount(state, s.ID(), "collected", len(collected))
	setStageCount(state, s.ID(), "slots", len(slots))

	if err != nil {
		return err
	}
	if len(slots) == 0 {
		return NewParseError(s.ID(), errors.New("no roster slots found"))
	}
	state.SetContext(ContextKeySlots, slots)
	return nil
}

// collectedDivisions lists the divisions present in slots
func (s *RosterStage) collectedDivisions(slots []domain.RosterSlot) []league.DivisionCode {
	var out []league.DivisionCode
	seen := map[int]bool{}
	for _, slot := range slots {
		if seen[slot.Division] {
			continue
		}
		seen[slot.Division] = true
		if code, ok := s.deps.Tables.DivisionCodeOf(slot.Division); ok {
			out = append(out, code)
		}
	}
	return out
}

func newProfileRunner(deps StageDeps, logger *slog.Logger) *profile.Runner {
	scrape := deps.Config.Scrape
	fetcher := profile.NewFetcher(profile.FetcherConfig{
		URLTemplate:           deps.Config.Sources.ProfileURL,
		WaitTimeout:           scrape.WaitTimeout,
		MaxNavigationAttempts: scrape.MaxNavigationAttempts,
		MaxFailureStreak:      scrape.MaxFailureStreak,
	}, logger)
	return profile.NewRunner(deps.Renderer, fetcher, newProfileStore(deps, logger),
		deps.Paths.ErrorLedger, scrape.MaxResumeIterations, logger)
}

func recordProfiles(ctx context.Context, deps StageDeps, state *OperationState, stageID string, res profile.RunResult) {
	deps.count(ctx, func(m *infrastructure.PipelineMetrics) metric.Int64Counter { return m.ProfilesFetched }, res.Fetched)
	deps.count(ctx, func(m *infrastructure.PipelineMetrics) metric.Int64Counter { return m.ProfileFailures }, len(res.Ledger))
	setStageCount(state, stageID, "fetched", res.Fetched)
	setStageCount(state, stageID, "iterations", res.Iterations)
	setStageCount(state, stageID, "ledger", len(res.Ledger))
	if res.Profiles != nil {
		state.SetContext(ContextKeyProfiles, res.Profiles)
	}
	state.SetContext(ContextKeyLedger, res.Ledger)
}

// ProfileStage fetches the profile of every roster identity
type ProfileStage struct {
	BaseStage
	deps    StageDeps
	runner  *profile.Runner
	rosters *checkpoint.Store[domain.RosterSlot]
	logger  *slog.Logger
}

// NewProfileStage creates the profile stage
func NewProfileStage(deps StageDeps) *ProfileStage {
	logger := deps.Logger.With(slog.String("stage", StageIDProfiles))
	return &ProfileStage{
		BaseStage: NewBaseStage(StageIDProfiles, StageNameProfiles, []string{StageIDRoster}),
		deps:      deps,
		runner:    newProfileRunner(deps, logger),
		rosters:   newRosterStore(deps, logger),
		logger:    logger,
	}
}

// Execute runs the profile passes over the roster identities
func (s *ProfileStage) Execute(ctx context.Context, state *OperationState) error {
	slots, err := rosterSlots(state, s.rosters)
	if err != nil {
		return err
	}
	ids := identities(slots)
	s.logger.InfoContext(ctx, "profile_identities", slog.Int("identities", len(ids)))

	res, err := s.runner.Run(ctx, ids, profile.RunOptions{Mode: state.Mode(), Retry: state.Retry()})
	recordProfiles(ctx, s.deps, state, s.ID(), res)
	return err
}

// RedriveStage fetches again the identities listed in the error ledger
type RedriveStage struct {
	BaseStage
	deps   StageDeps
	runner *profile.Runner
	logger *slog.Logger
}

// NewRedriveStage creates the redrive stage
func NewRedriveStage(deps StageDeps) *RedriveStage {
	logger := deps.Logger.With(slog.String("stage", StageIDRedrive))
	return &RedriveStage{
		BaseStage: NewBaseStage(StageIDRedrive, StageNameRedrive, nil),
		deps:      deps,
		runner:    newProfileRunner(deps, logger),
		logger:    logger,
	}
}

// Execute appends the redriven profiles to the profile checkpoint
func (s *RedriveStage) Execute(ctx context.Context, state *OperationState) error {
	ids, err := checkpoint.ReadLedger(s.deps.Paths.ErrorLedger)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if len(ids) == 0 {
		s.logger.InfoContext(ctx, "redrive_nothing_pending", slog.String("ledger", s.deps.Paths.ErrorLedger))
		return nil
	}

	s.logger.InfoContext(ctx, "redrive_start", slog.Int("identities", len(ids)))
	res, err := s.runner.Run(ctx, ids, profile.RunOptions{Mode: checkpoint.ModeAppend, Retry: state.Retry()})
	recordProfiles(ctx, s.deps, state, s.ID(), res)
	return err
}

// ExportStage reconciles roster, profiles and the cross-source ids
type ExportStage struct {
	BaseStage
	deps     StageDeps
	exporter *exporter.Exporter
	rosters  *checkpoint.Store[domain.RosterSlot]
	profiles *checkpoint.Store[domain.ProfileRecord]
	logger   *slog.Logger
}

// NewExportStage creates the export stage
func NewExportStage(deps StageDeps) *ExportStage {
	logger := deps.Logger.With(slog.String("stage", StageIDExport))
	return &ExportStage{
		BaseStage: NewBaseStage(StageIDExport, StageNameExport, []string{StageIDProfiles, StageIDRedrive}),
		deps:      deps,
		exporter:  exporter.NewExporter(deps.Writer, crossref.NewResolver(deps.Tables, logger), logger),
		rosters:   newRosterStore(deps, logger),
		profiles:  newProfileStore(deps, logger),
		logger:    logger,
	}
}

// Execute writes the export. A cross-source mismatch fails the stage
// before any output is written.
func (s *ExportStage) Execute(ctx context.Context, state *OperationState) error {
	slots, err := rosterSlots(state, s.rosters)
	if err != nil {
		return err
	}
	profiles, err := s.loadProfiles(ctx, state)
	if err != nil {
		return err
	}

	var cross string
	if url := s.deps.Config.Sources.CrossRefURL; url != "" {
		err := withSession(ctx, s.deps.Renderer, s.logger, func(session render.Session) error {
			var ferr error
			cross, ferr = crossref.Fetch(ctx, session, url, s.deps.Config.Scrape.WaitTimeout)
			return ferr
		})
		if err != nil {
			return NewNavigationError(s.ID(), err)
		}
	}

	res, err := s.exporter.Export(ctx, exporter.Input{
		Slots:       slots,
		Profiles:    profiles,
		CrossSource: cross,
		Now:         s.deps.Now(),
	}, s.deps.Paths.ExportCSV, s.deps.Paths.ExportWorkbook)
	if err != nil {
		if crossref.IsConsistencyError(err) {
			s.deps.count(ctx, func(m *infrastructure.PipelineMetrics) metric.Int64Counter { return m.ConsistencyFailures }, 1)
		}
		return err
	}

	setStageCount(state, s.ID(), "rows", len(res.Rows))
	setStageNote(state, s.ID(), "period", res.Period.Label())
	state.SetContext(ContextKeyExport, res)
	return nil
}

func (s *ExportStage) loadProfiles(ctx context.Context, state *OperationState) ([]domain.ProfileRecord, error) {
	if profiles, ok := ContextValue[[]domain.ProfileRecord](state, ContextKeyProfiles); ok {
		return profiles, nil
	}
	if !s.profiles.Exists() {
		s.logger.WarnContext(ctx, "profiles_missing", slog.String("path", s.profiles.Path()))
		return nil, nil
	}
	return s.profiles.Load()
}

// TorikumiStage scrapes the bout results of a day range
type TorikumiStage struct {
	BaseStage
	deps    StageDeps
	scraper *torikumi.Scraper
	days    []int
	logger  *slog.Logger
}

// NewTorikumiStage creates the torikumi stage for days
func NewTorikumiStage(deps StageDeps, days []int) *TorikumiStage {
	logger := deps.Logger.With(slog.String("stage", StageIDTorikumi))
	return &TorikumiStage{
		BaseStage: NewBaseStage(StageIDTorikumi, StageNameTorikumi, nil),
		deps:      deps,
		scraper: torikumi.NewScraper(deps.Tables, torikumi.Config{
			URLTemplate: deps.Config.Sources.TorikumiURL,
			WaitTimeout: deps.Config.Scrape.WaitTimeout,
		}, logger),
		days:   days,
		logger: logger,
	}
}

// Validate requires a day range
func (s *TorikumiStage) Validate(state *OperationState) error {
	if len(s.days) == 0 {
		return errors.New("no days to scrape")
	}
	return nil
}

// Execute scrapes the days and writes the matchups, including those
// gathered before a failure
func (s *TorikumiStage) Execute(ctx context.Context, state *OperationState) error {
	var matchups []domain.Matchup
	err := withSession(ctx, s.deps.Renderer, s.logger, func(session render.Session) error {
		var serr error
		matchups, serr = s.scraper.Scrape(ctx, session, s.days)
		return serr
	})

	if len(matchups) > 0 || err == nil {
		if werr := torikumi.Write(s.deps.Writer, s.deps.Paths.TorikumiCSV, matchups); werr != nil {
			return errors.Join(err, werr)
		}
	}
	if len(matchups) == 0 {
		s.logger.WarnContext(ctx, "torikumi_empty", slog.Any("days", s.days))
	}

	s.deps.count(ctx, func(m *infrastructure.PipelineMetrics) metric.Int64Counter { return m.Matchups }, len(matchups))
	setStageCount(state, s.ID(), "matchups", len(matchups))
	state.SetContext(ContextKeyMatchups, matchups)
	return err
}

// AwardsStage scrapes the champions and special prizes of the latest period
type AwardsStage struct {
	BaseStage
	deps    StageDeps
	scraper *awards.Scraper
	logger  *slog.Logger
}

// NewAwardsStage creates the awards stage
func NewAwardsStage(deps StageDeps) *AwardsStage {
	logger := deps.Logger.With(slog.String("stage", StageIDAwards))
	return &AwardsStage{
		BaseStage: NewBaseStage(StageIDAwards, StageNameAwards, nil),
		deps:      deps,
		scraper: awards.NewScraper(deps.Tables, awards.Config{
			URL:         deps.Config.Sources.AwardsURL,
			WaitTimeout: deps.Config.Scrape.WaitTimeout,
		}, logger),
		logger: logger,
	}
}

// Execute scrapes the champions page and replaces both award files
func (s *AwardsStage) Execute(ctx context.Context, state *OperationState) error {
	var res awards.Result
	err := withSession(ctx, s.deps.Renderer, s.logger, func(session render.Session) error {
		var serr error
		res, serr = s.scraper.Scrape(ctx, session)
		return serr
	})
	if err != nil {
		return err
	}

	if err := awards.Write(s.deps.Writer, s.deps.Paths.WinnersCSV, s.deps.Paths.AwardsCSV, res); err != nil {
		return err
	}

	s.deps.count(ctx, func(m *infrastructure.PipelineMetrics) metric.Int64Counter { return m.AwardRows }, len(res.Champions)+len(res.Prizes))
	setStageCount(state, s.ID(), "champions", len(res.Champions))
	setStageCount(state, s.ID(), "prizes", len(res.Prizes))
	state.SetContext(ContextKeyAwards, res)
	return nil
}

// NewPipeline returns a manager with every stage registered in run order.
// days is the torikumi day range.
func NewPipeline(deps StageDeps, cfg *Config, days []int) (*Manager, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	deps = deps.withDefaults()

	m := NewManager(cfg, NewOperationTracer(deps.Metrics), deps.Logger)
	for _, step := range []Step{
		NewRosterStage(deps),
		NewProfileStage(deps),
		NewRedriveStage(deps),
		NewExportStage(deps),
		NewTorikumiStage(deps, days),
		NewAwardsStage(deps),
	} {
		if err := m.RegisterStage(step); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Compile-time interface checks
var (
	_ Step = (*RosterStage)(nil)
	_ Step = (*ProfileStage)(nil)
	_ Step = (*RedriveStage)(nil)
	_ Step = (*ExportStage)(nil)
	_ Step = (*TorikumiStage)(nil)
	_ Step = (*AwardsStage)(nil)
)
