package torikumi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"sumocli/internal/exporter"
	"sumocli/internal/league"
	"sumocli/internal/render"
	"sumocli/pkg/contracts/domain"
)

// Days of a period
const (
	FirstDay = 1
	LastDay  = 15
)

// Headers are the columns of the matchup table
var Headers = []string{"basho", "day", "identity", "result", "opponent_id", "kimarite", "division", "match_order"}

// Config bounds the waits of a scrape
type Config struct {
	// URLTemplate takes the division number then the day
	URLTemplate string
	WaitTimeout time.Duration
}

// Scraper walks days and divisions
type Scraper struct {
	cfg    Config
	tables *league.Tables
	parser *Parser
	logger *slog.Logger
}

// NewScraper creates a scraper
func NewScraper(tables *league.Tables, cfg Config, logger *slog.Logger) *Scraper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scraper{cfg: cfg, tables: tables, parser: NewParser(tables, logger), logger: logger}
}

// DayRange validates a day selection. day 0 selects the whole period;
// end is exclusive and defaults to day+1.
func DayRange(day, end int) ([]int, error) {
	if day == 0 {
		if end != 0 {
			return nil, errors.New("days end requires a start day")
		}
		day, end = FirstDay, LastDay+1
	}
	if end == 0 {
		end = day + 1
	}
	if day < FirstDay || day > LastDay {
		return nil, fmt.Errorf("day must be between %d and %d", FirstDay, LastDay)
	}
	if end < FirstDay+1 || end > LastDay+1 {
		return nil, fmt.Errorf("days end must be between %d and %d", FirstDay+1, LastDay+1)
	}
	if end <= day {
		return nil, errors.New("days end must be greater than day")
	}

	days := make([]int, 0, end-day)
	for d := day; d < end; d++ {
		days = append(days, d)
	}
	return days, nil
}

// Scrape collects every division of every day in days. A day on which no
// division has bouts ends the scrape; later days are not visited.
func (s *Scraper) Scrape(ctx context.Context, session render.Session, days []int) ([]domain.Matchup, error) {
	ctx, span := tracer.Start(ctx, "torikumi.Scrape")
	defer span.End()

	var all []domain.Matchup
	for _, day := range days {
		found := false
		for _, code := range s.tables.Divisions() {
			if err := ctx.Err(); err != nil {
				return all, err
			}
			division := s.tables.DivisionNumber(code)

			matchups, err := s.scrapeDay(ctx, session, division, day)
			if err != nil {
				s.logger.WarnContext(ctx, "torikumi_no_data",
					slog.Int("division", division),
					slog.Int("day", day),
					slog.String("error", err.Error()))
				continue
			}
			found = true
			all = append(all, matchups...)
			s.logger.InfoContext(ctx, "torikumi_day_parsed",
				slog.Int("division", division),
				slog.Int("day", day),
				slog.Int("matchups", len(matchups)))
		}
		if !found {
			s.logger.InfoContext(ctx, "torikumi_day_empty", slog.Int("day", day))
			break
		}
	}

	span.SetAttributes(attribute.Int("torikumi.matchups", len(all)))
	return all, nil
}

// URL returns the page of one division and day
func (s *Scraper) URL(division, day int) string {
	return fmt.Sprintf(s.cfg.URLTemplate, division, day)
}

func (s *Scraper) scrapeDay(ctx context.Context, session render.Session, division, day int) ([]domain.Matchup, error) {
	url := s.URL(division, day)
	if err := session.Navigate(ctx, url); err != nil {
		return nil, err
	}
	for _, sel := range []string{dayHeader, boutTable} {
		if err := session.WaitFor(ctx, sel, s.cfg.WaitTimeout); err != nil {
			return nil, err
		}
	}
	html, err := session.HTML(ctx)
	if err != nil {
		return nil, err
	}
	return s.parser.ParseDay(ctx, html, division, day)
}

// Records renders matchups in Headers order
func Records(matchups []domain.Matchup) [][]string {
	out := make([][]string, 0, len(matchups))
	for _, m := range matchups {
		out = append(out, []string{
			m.Period,
			fmt.Sprint(m.Day),
			m.Identity.OrElse(""),
			m.Result.OrElse(""),
			m.OpponentID.OrElse(""),
			m.Kimarite.OrElse(""),
			fmt.Sprint(m.Division),
			fmt.Sprint(m.MatchOrder),
		})
	}
	return out
}

// Write replaces path with matchups
func Write(w *exporter.CSVWriter, path string, matchups []domain.Matchup) error {
	return w.WriteSimpleCSV(path, Headers, Records(matchups))
}
