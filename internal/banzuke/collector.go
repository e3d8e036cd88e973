package banzuke

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"sumocli/internal/league"
	"sumocli/internal/render"
	"sumocli/pkg/contracts/domain"
)

const (
	divisionSelect = "#kaku_select"
	divisionTitle  = ".dayNum"
	nextPageLink   = `//*[contains(concat(' ', normalize-space(@class), ' '), ' page_next ')]//a[normalize-space(.)='>']`
)

// errPageUnchanged means a click did not produce a new page within PageWait
var errPageUnchanged = errors.New("page did not change")

// CollectorConfig bounds the waits of a roster pass
type CollectorConfig struct {
	WaitTimeout  time.Duration // selector waits
	PageWait     time.Duration // one wait for a page change after clicking next
	PollInterval time.Duration
	MaxPages     int
}

// DefaultCollectorConfig returns the waits used against the live site
func DefaultCollectorConfig() CollectorConfig {
	return CollectorConfig{
		WaitTimeout:  30 * time.Second,
		PageWait:     30 * time.Second,
		PollInterval: 250 * time.Millisecond,
		MaxPages:     50,
	}
}

// Collector walks the ranking pages of each division
type Collector struct {
	parser   *Parser
	resolver *Resolver
	tables   *league.Tables
	cfg      CollectorConfig
	logger   *slog.Logger
}

// NewCollector wires a collector
func NewCollector(tables *league.Tables, cfg CollectorConfig, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultCollectorConfig().PollInterval
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = DefaultCollectorConfig().MaxPages
	}
	return &Collector{
		parser:   NewParser(logger),
		resolver: NewResolver(tables, logger),
		tables:   tables,
		cfg:      cfg,
		logger:   logger,
	}
}

// Collect loads the ranking page at url and resolves every division in
// order. On failure it returns the slots of the divisions finished so far
// together with the error.
func (c *Collector) Collect(ctx context.Context, session render.Session, url string, divisions []league.DivisionCode) ([]domain.RosterSlot, error) {
	if err := session.Navigate(ctx, url); err != nil {
		return nil, err
	}

	var slots []domain.RosterSlot
	for _, division := range divisions {
		if err := ctx.Err(); err != nil {
			return slots, err
		}

		c.logger.InfoContext(ctx, "division_start", slog.String("division", string(division)))
		rows, err := c.CollectDivision(ctx, session, division)
		if err != nil {
			return slots, fmt.Errorf("division %s: %w", division, err)
		}

		resolved := DropDuplicates(c.resolver.Resolve(division, rows))
		c.logger.InfoContext(ctx, "division_complete",
			slog.String("division", string(division)),
			slog.Int("rows", len(rows)),
			slog.Int("slots", len(resolved)))
		slots = append(slots, resolved...)
	}
	return slots, nil
}

// CollectDivision selects division on the ranking page and returns its rows
// across all pages in document order.
func (c *Collector) CollectDivision(ctx context.Context, session render.Session, division league.DivisionCode) ([]RankRow, error) {
	ctx, span := tracer.Start(ctx, "banzuke.CollectDivision")
	defer span.End()
	span.SetAttributes(attribute.String("banzuke.division", string(division)))

	num := c.tables.DivisionNumber(division)
	if num == 0 {
		return nil, fmt.Errorf("unknown division %q", division)
	}

	if err := session.WaitFor(ctx, divisionSelect, c.cfg.WaitTimeout); err != nil {
		return nil, err
	}
	before, err := session.HTML(ctx)
	if err != nil {
		return nil, err
	}
	showing, err := selectedDivision(before)
	if err != nil {
		return nil, err
	}

	value := strconv.Itoa(num)
	if err := session.SelectValue(ctx, divisionSelect, value); err != nil {
		return nil, err
	}
	// the previous division's title stays in the DOM until the table is
	// swapped, so wait for the document itself to change
	if showing != value {
		if _, err := c.awaitPageChange(ctx, session, before); err != nil {
			return nil, fmt.Errorf("switching to division %s: %w", division, err)
		}
	}
	if err := session.WaitFor(ctx, divisionTitle, c.cfg.WaitTimeout); err != nil {
		return nil, err
	}

	html, err := session.HTML(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := c.parser.ParsePage(ctx, html)
	if err != nil {
		return nil, err
	}

	for page := 1; ; page++ {
		next, err := hasNextPage(html)
		if err != nil || !next {
			break
		}
		if page >= c.cfg.MaxPages {
			c.logger.WarnContext(ctx, "page_limit_reached",
				slog.String("division", string(division)),
				slog.Int("max_pages", c.cfg.MaxPages))
			break
		}

		if err := session.Click(ctx, nextPageLink); err != nil {
			c.logger.WarnContext(ctx, "next_page_click_failed",
				slog.String("division", string(division)),
				slog.Int("page", page),
				slog.String("error", err.Error()))
			break
		}

		changed, err := c.awaitPageChange(ctx, session, html)
		if err != nil {
			if ctx.Err() != nil {
				return rows, ctx.Err()
			}
			c.logger.WarnContext(ctx, "pagination_stopped",
				slog.String("division", string(division)),
				slog.Int("page", page),
				slog.String("error", err.Error()))
			break
		}

		pageRows, err := c.parser.ParsePage(ctx, changed)
		if err != nil {
			return rows, err
		}
		for _, r := range pageRows {
			r.Index = len(rows)
			rows = append(rows, r)
		}
		html = changed
	}

	span.SetAttributes(attribute.Int("banzuke.rows", len(rows)))
	return rows, nil
}

// awaitPageChange waits for the document to differ from before. One expired
// wait is tolerated; the second gives up.
func (c *Collector) awaitPageChange(ctx context.Context, session render.Session, before string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= 2; attempt++ {
		html, err := c.pollChange(ctx, session, before)
		if err == nil {
			return html, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		lastErr = err
		c.logger.DebugContext(ctx, "page_change_wait_expired", slog.Int("attempt", attempt))
	}
	return "", lastErr
}

func (c *Collector) pollChange(ctx context.Context, session render.Session, before string) (string, error) {
	deadline := time.Now().Add(c.cfg.PageWait)
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		html, err := session.HTML(ctx)
		if err != nil {
			return "", err
		}
		if html != before {
			return html, nil
		}
		if !time.Now().Before(deadline) {
			return "", errPageUnchanged
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}
