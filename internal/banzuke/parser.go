// Package banzuke reads the paginated ranking table of the league site and
// turns it into roster slots keyed by rank group, position and side.
package banzuke

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"sumocli/pkg/contracts/domain"
)

var tracer = otel.Tracer("sumocli/internal/banzuke")

// SlotCandidate is one competitor cell of a ranking row
type SlotCandidate struct {
	Side        domain.Side `validate:"oneof=e w"`
	DisplayName string      `validate:"required"`
	Identity    string      `validate:"required,numeric"`
}

// RankRow is one row of the ranking table in document order.
// Slots may be empty; the row still counts for position tracking.
type RankRow struct {
	Index     int
	RankLabel string
	Slots     []SlotCandidate
}

// Parser extracts rank rows from rendered ranking pages
type Parser struct {
	logger   *slog.Logger
	validate *validator.Validate
}

// NewParser creates a parser logging dropped cells to logger
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{
		logger:   logger,
		validate: validator.New(),
	}
}

// ParsePage returns every `.bTnone` row of the page. Malformed cells are
// logged and dropped; only an unreadable document is an error.
func (p *Parser) ParsePage(ctx context.Context, html string) ([]RankRow, error) {
	ctx, span := tracer.Start(ctx, "banzuke.ParsePage")
	defer span.End()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "unreadable document")
		return nil, fmt.Errorf("parse ranking page: %w", err)
	}

	var rows []RankRow
	doc.Find(".bTnone").Each(func(i int, sel *goquery.Selection) {
		label := strings.TrimSpace(sel.Find(".rank").First().Text())
		if label == "" {
			p.logger.WarnContext(ctx, "rank_row_dropped",
				slog.Int("row", i),
				slog.String("reason", "missing rank label"))
			return
		}

		row := RankRow{Index: len(rows), RankLabel: label}
		for _, side := range []domain.Side{domain.SideEast, domain.SideWest} {
			cell := sel.Find(sideClass(side)).First()
			if cell.Length() == 0 {
				continue
			}
			slot, ok := p.parseCell(ctx, cell, side, label)
			if ok {
				row.Slots = append(row.Slots, slot)
			}
		}
		rows = append(rows, row)
	})

	span.SetAttributes(attribute.Int("banzuke.rows", len(rows)))
	return rows, nil
}

// parseCell reads the display name and identity of one competitor cell.
// Empty cells return ok=false without logging.
func (p *Parser) parseCell(ctx context.Context, cell *goquery.Selection, side domain.Side, label string) (SlotCandidate, bool) {
	dl := cell.Find("dl").First()
	if dl.Length() == 0 {
		return SlotCandidate{}, false
	}

	name := strings.TrimSpace(dl.Find("dt").First().Text())
	if name == "" {
		return SlotCandidate{}, false
	}

	href, _ := dl.Find("a[href]").First().Attr("href")
	slot := SlotCandidate{
		Side:        side,
		DisplayName: name,
		Identity:    lastPathSegment(href),
	}

	if err := p.validate.Struct(slot); err != nil {
		p.logger.WarnContext(ctx, "rank_cell_dropped",
			slog.String("rank_label", label),
			slog.String("side", string(side)),
			slog.String("display_name", name),
			slog.String("href", href),
			slog.String("error", err.Error()))
		return SlotCandidate{}, false
	}
	return slot, true
}

func sideClass(side domain.Side) string {
	if side == domain.SideEast {
		return ".east"
	}
	return ".west"
}

// lastPathSegment returns the final non-empty path element of href
func lastPathSegment(href string) string {
	href = strings.TrimRight(strings.TrimSpace(href), "/")
	if i := strings.LastIndex(href, "/"); i >= 0 {
		return href[i+1:]
	}
	return href
}

// hasNextPage reports whether the page offers a ">" link inside `.page_next`
func hasNextPage(html string) (bool, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false, err
	}
	found := false
	doc.Find(".page_next a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if strings.TrimSpace(a.Text()) == ">" {
			found = true
			return false
		}
		return true
	})
	return found, nil
}

// selectedDivision returns the value of the selected `#kaku_select` option,
// or "" when the page marks none
func selectedDivision(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}
	value, _ := doc.Find(divisionSelect + " option[selected]").First().Attr("value")
	return strings.TrimSpace(value), nil
}
