// Package torikumi scrapes the daily bout results of a period.
package torikumi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"sumocli/internal/league"
	"sumocli/pkg/contracts/domain"
)

var tracer = otel.Tracer("sumocli/internal/torikumi")

const (
	dayHeader    = "#dayHead"
	boutTable    = "#torikumi_table"
	playerCells  = "td.win:not(.result), td.player"
	resultCells  = "td.result"
	kimariteCell = "td.decide"
	headerLayout = "January 2, 2006"
)

var (
	// ErrNoBouts means the page has no bout table or no bout rows
	ErrNoBouts = errors.New("no bouts on page")

	dayPrefix = regexp.MustCompile(`Day\s*\d*\s*`)
	trailID   = regexp.MustCompile(`(\d+)/*$`)
)

// Parser reads one division's bouts of one day
type Parser struct {
	tables *league.Tables
	logger *slog.Logger
}

// NewParser creates a parser
func NewParser(tables *league.Tables, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{tables: tables, logger: logger}
}

// ParseDay returns two matchups per bout row: as listed and flipped.
// Missing cells leave the matching fields null.
func (p *Parser) ParseDay(ctx context.Context, html string, division, day int) ([]domain.Matchup, error) {
	ctx, span := tracer.Start(ctx, "torikumi.ParseDay")
	defer span.End()
	span.SetAttributes(attribute.Int("torikumi.division", division), attribute.Int("torikumi.day", day))

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse torikumi page: %w", err)
	}

	period, err := PeriodLabel(doc.Find(dayHeader).First().Text())
	if err != nil {
		return nil, err
	}

	rows := doc.Find(boutTable).First().Find("tr")
	if rows.Length() <= 1 {
		return nil, ErrNoBouts
	}

	var out []domain.Matchup
	rows.Slice(1, goquery.ToEnd).Each(func(i int, row *goquery.Selection) {
		if row.Find("td").Length() == 0 {
			return
		}
		m := p.parseRow(ctx, row, i+1)
		m.Period = period
		m.Day = day
		m.Division = division
		out = append(out, m, p.Flip(m))
	})
	if len(out) == 0 {
		return nil, ErrNoBouts
	}
	span.SetAttributes(attribute.Int("torikumi.matchups", len(out)))
	return out, nil
}

func (p *Parser) parseRow(ctx context.Context, row *goquery.Selection, order int) domain.Matchup {
	m := domain.Matchup{MatchOrder: order}

	players := row.Find(playerCells)
	m.Identity = p.keep(ctx, order, "left", playerID(players.Eq(0)))
	m.OpponentID = p.keep(ctx, order, "right", playerID(players.Eq(1)))

	kimarite := row.Find(kimariteCell)
	if kimarite.Length() == 0 {
		p.keep(ctx, order, "kimarite", domain.Missing[string]("no kimarite cell"))
		return m
	}
	k := strings.TrimSpace(kimarite.First().Text())
	if k == "" {
		return m
	}
	m.Kimarite = domain.Some(k)

	results := row.Find(resultCells)
	if results.Length() != 2 {
		p.keep(ctx, order, "result", domain.Missing[string](fmt.Sprintf("%d result cells", results.Length())))
		return m
	}
	// a "fu" kimarite is a default win
	fusen := strings.Contains(k, "fu")
	switch {
	case results.Eq(0).HasClass("win"):
		m.Result = domain.Some(marker("O", "Z", fusen))
	case results.Eq(1).HasClass("win"):
		m.Result = domain.Some(marker("X", "A", fusen))
	}
	return m
}

func marker(bout, fusen string, isFusen bool) string {
	if isFusen {
		return fusen
	}
	return bout
}

func (p *Parser) keep(ctx context.Context, order int, field string, r domain.FieldResult[string]) domain.Nullable[string] {
	if r.Failed() {
		p.logger.WarnContext(ctx, "torikumi_field_missing",
			slog.Int("match_order", order),
			slog.String("field", field),
			slog.String("diagnostic", r.Diagnostic))
	}
	return r.Nullable
}

// Flip swaps the competitors of m and reverses its result
func (p *Parser) Flip(m domain.Matchup) domain.Matchup {
	f := m
	f.Identity, f.OpponentID = m.OpponentID, m.Identity
	if r, ok := m.Result.Get(); ok {
		f.Result = domain.Some(p.tables.ReverseResult(r))
	}
	return f
}

func playerID(cell *goquery.Selection) domain.FieldResult[string] {
	if cell.Length() == 0 {
		return domain.Missing[string]("no player cell")
	}
	href, ok := cell.Find("span.name a").First().Attr("href")
	if !ok {
		return domain.Missing[string]("no player link")
	}
	match := trailID.FindStringSubmatch(href)
	if match == nil {
		return domain.Missing[string](fmt.Sprintf("no id in %q", href))
	}
	return domain.Found(match[1])
}

// PeriodLabel reads YYYY.MM from a day header such as
// "Day 3 September 10, 2024"
func PeriodLabel(header string) (string, error) {
	loc := dayPrefix.FindStringIndex(header)
	if loc == nil {
		return "", fmt.Errorf("day header %q has no day", header)
	}
	date := strings.TrimSpace(header[loc[1]:])
	t, err := time.Parse(headerLayout, date)
	if err != nil {
		return "", fmt.Errorf("day header %q has no date: %w", header, err)
	}
	return t.Format("2006.01"), nil
}
