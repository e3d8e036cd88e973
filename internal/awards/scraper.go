package awards

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"sumocli/internal/exporter"
	"sumocli/internal/league"
	"sumocli/internal/render"
	"sumocli/pkg/contracts/domain"
)

// Columns of the two award tables
var (
	ChampionHeaders = []string{"identity", "division"}
	PrizeHeaders    = []string{"identity", "award"}
)

// Config points the scraper at the champions page
type Config struct {
	URL         string
	WaitTimeout time.Duration
}

// Scraper loads the champions page through a browser session
type Scraper struct {
	cfg    Config
	parser *Parser
	logger *slog.Logger
}

// NewScraper creates a scraper
func NewScraper(tables *league.Tables, cfg Config, logger *slog.Logger) *Scraper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scraper{cfg: cfg, parser: NewParser(tables, logger), logger: logger}
}

// Scrape opens the champions page and parses it
func (s *Scraper) Scrape(ctx context.Context, session render.Session) (Result, error) {
	ctx, span := tracer.Start(ctx, "awards.Scrape")
	defer span.End()

	if err := session.Navigate(ctx, s.cfg.URL); err != nil {
		return Result{}, err
	}
	if err := session.WaitFor(ctx, championsSection, s.cfg.WaitTimeout); err != nil {
		return Result{}, fmt.Errorf("champions page did not render: %w", err)
	}
	html, err := session.HTML(ctx)
	if err != nil {
		return Result{}, err
	}

	res, err := s.parser.Parse(ctx, html)
	if err != nil {
		return Result{}, err
	}
	s.logger.InfoContext(ctx, "awards_parsed",
		slog.Int("champions", len(res.Champions)),
		slog.Int("prizes", len(res.Prizes)))
	return res, nil
}

// ChampionRecords renders champions in ChampionHeaders order
func ChampionRecords(champions []domain.Champion) [][]string {
	out := make([][]string, 0, len(champions))
	for _, c := range champions {
		out = append(out, []string{c.Identity.OrElse(""), fmt.Sprint(c.Division)})
	}
	return out
}

// PrizeRecords renders prizes in PrizeHeaders order
func PrizeRecords(prizes []domain.SpecialPrize) [][]string {
	out := make([][]string, 0, len(prizes))
	for _, p := range prizes {
		out = append(out, []string{p.Identity.OrElse(""), p.Award})
	}
	return out
}

// Write replaces both award files
func Write(w *exporter.CSVWriter, championsPath, prizesPath string, res Result) error {
	return errors.Join(
		w.WriteSimpleCSV(championsPath, ChampionHeaders, ChampionRecords(res.Champions)),
		w.WriteSimpleCSV(prizesPath, PrizeHeaders, PrizeRecords(res.Prizes)),
	)
}
