// Package awards scrapes the champions and special prizes of the latest
// period.
package awards

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"sumocli/internal/league"
	"sumocli/pkg/contracts/domain"
)

var tracer = otel.Tracer("sumocli/internal/awards")

const (
	// the first section holds one subsection per division champion
	championsSection = "div.mdSection1:nth-child(1)"
	prizesSection    = "#sansho"
	cells            = ".mdSection1"
	cellTitle        = "h3.mdTtl6.type2"
	winnerLinks      = ".mdTable3.type2 tr > th > a"
)

var (
	// ErrNoChampions means the page has no champions section
	ErrNoChampions = errors.New("no champions on page")

	profileID = regexp.MustCompile(`/(\d+)/*$`)
)

// Result is everything read from the champions page
type Result struct {
	Champions []domain.Champion
	Prizes    []domain.SpecialPrize
}

// Parser reads the champions page
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

// Parse reads the champion of every division and the special prizes.
// A champion cell whose title names no known division is dropped; a
// missing winner link leaves the identity null.
func (p *Parser) Parse(ctx context.Context, html string) (Result, error) {
	ctx, span := tracer.Start(ctx, "awards.Parse")
	defer span.End()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Result{}, fmt.Errorf("failed to parse champions page: %w", err)
	}

	section := doc.Find(championsSection).First()
	if section.Length() == 0 {
		return Result{}, ErrNoChampions
	}

	var res Result
	section.Find(cells).Each(func(_ int, cell *goquery.Selection) {
		title := Title(cell.Find(cellTitle).First().Text())
		division, ok := p.tables.DivisionByName(title)
		if !ok {
			p.logger.WarnContext(ctx, "champion_division_unknown", slog.String("title", title))
			return
		}
		for _, id := range p.winners(ctx, cell, title) {
			res.Champions = append(res.Champions, domain.Champion{Identity: id, Division: division})
		}
	})

	doc.Find(prizesSection).First().Find(cells).Each(func(_ int, cell *goquery.Selection) {
		award := Title(cell.Find(cellTitle).First().Text())
		if award == "" {
			p.logger.WarnContext(ctx, "prize_title_missing")
			return
		}
		for _, id := range p.winners(ctx, cell, award) {
			res.Prizes = append(res.Prizes, domain.SpecialPrize{Identity: id, Award: award})
		}
	})

	span.SetAttributes(
		attribute.Int("awards.champions", len(res.Champions)),
		attribute.Int("awards.prizes", len(res.Prizes)))
	return res, nil
}

// winners returns one identity per winner link of cell, or a single null
// identity when the cell links nobody
func (p *Parser) winners(ctx context.Context, cell *goquery.Selection, title string) []domain.Nullable[string] {
	links := cell.Find(winnerLinks)
	if links.Length() == 0 {
		p.logger.WarnContext(ctx, "award_winner_missing", slog.String("title", title))
		return []domain.Nullable[string]{domain.Null[string]()}
	}
	var ids []domain.Nullable[string]
	links.Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		r := ProfileID(href)
		if r.Failed() {
			p.logger.WarnContext(ctx, "award_winner_missing",
				slog.String("title", title),
				slog.String("diagnostic", r.Diagnostic))
		}
		ids = append(ids, r.Nullable)
	})
	return ids
}

// Title shortens a section title to the division or prize name:
// "Shukun-sho (Outstanding Performance)" reads as "Shukun-sho" and
// "Makuuchi Champion" as "Makuuchi".
func Title(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "("); i > 0 {
		return strings.TrimSpace(s[:i])
	}
	if fields := strings.Fields(s); len(fields) > 0 {
		return fields[0]
	}
	return ""
}

// ProfileID reads the numeric identity at the end of a profile link
func ProfileID(href string) domain.FieldResult[string] {
	m := profileID.FindStringSubmatch(href)
	if m == nil {
		return domain.Missing[string](fmt.Sprintf("no id in %q", href))
	}
	return domain.Found(m[1])
}
