// Package crossref maps roster slots onto the identifiers of the second
// ranking source. The second source has no shared key, so a slot is found by
// the Nth occurrence of its short rank label and the competitor cell beside it.
package crossref

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"sumocli/internal/league"
	"sumocli/pkg/contracts/domain"
)

var tracer = otel.Tracer("sumocli/internal/crossref")

const (
	rankCell = "td.short_rank"
	idParam  = "r="
)

// ConsistencyError means the second source does not line up with the roster
type ConsistencyError struct {
	Identity string
	Key      string
	Ordinal  int
	Matches  int
	Reason   string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("cross-source mismatch for %s (label %q, occurrence %d of %d): %s",
		e.Identity, e.Key, e.Ordinal+1, e.Matches, e.Reason)
}

// IsConsistencyError reports whether err carries a ConsistencyError
func IsConsistencyError(err error) bool {
	var ce *ConsistencyError
	return errors.As(err, &ce)
}

// Resolver looks up external ids on the second source's ranking page
type Resolver struct {
	tables *league.Tables
	logger *slog.Logger
}

// NewResolver creates a resolver
func NewResolver(tables *league.Tables, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{tables: tables, logger: logger}
}

// Lookup returns the rank label searched for and which occurrence of it
// belongs to slot. Named ranks repeat the bare label once per position;
// every other rank carries its position in the label.
func (r *Resolver) Lookup(slot domain.RosterSlot) (string, int) {
	if r.tables.IsNamedRank(slot.RankGroup) {
		return slot.RankGroup, slot.Position - 1
	}
	return slot.RankGroup + strconv.Itoa(slot.Position), 0
}

// Resolve maps every slot to its external id. The first slot that cannot be
// placed stops the resolver with a *ConsistencyError; references resolved
// before it are returned.
func (r *Resolver) Resolve(ctx context.Context, slots []domain.RosterSlot, html string) ([]domain.CrossReference, error) {
	ctx, span := tracer.Start(ctx, "crossref.Resolve")
	defer span.End()
	span.SetAttributes(attribute.Int("crossref.slots", len(slots)))

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to parse cross-source page: %w", err)
	}

	labels := map[string][]*goquery.Selection{}
	doc.Find(rankCell).Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		labels[text] = append(labels[text], s)
	})

	refs := make([]domain.CrossReference, 0, len(slots))
	for _, slot := range slots {
		ref, err := r.resolveSlot(slot, labels)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "cross-source mismatch")
			r.logger.ErrorContext(ctx, "crossref_inconsistent",
				slog.String("identity", slot.Identity),
				slog.String("rank", slot.Key().String()),
				slog.String("error", err.Error()))
			return refs, err
		}
		refs = append(refs, ref)
	}

	r.logger.InfoContext(ctx, "crossref_resolved", slog.Int("references", len(refs)))
	return refs, nil
}

func (r *Resolver) resolveSlot(slot domain.RosterSlot, labels map[string][]*goquery.Selection) (domain.CrossReference, error) {
	key, ordinal := r.Lookup(slot)
	matches := labels[key]
	fail := func(reason string) error {
		return &ConsistencyError{
			Identity: slot.Identity,
			Key:      key,
			Ordinal:  ordinal,
			Matches:  len(matches),
			Reason:   reason,
		}
	}

	if ordinal < 0 || ordinal >= len(matches) {
		return domain.CrossReference{}, fail("rank label occurrence not found")
	}

	cell := matches[ordinal]
	var neighbour *goquery.Selection
	if slot.Side == domain.SideEast {
		neighbour = cell.PrevAllFiltered("td").First()
	} else {
		neighbour = cell.NextAllFiltered("td").First()
	}

	href, ok := neighbour.Find("a").First().Attr("href")
	if !ok {
		return domain.CrossReference{}, fail("no competitor link beside rank cell")
	}
	i := strings.Index(href, idParam)
	if i < 0 || i+len(idParam) == len(href) {
		return domain.CrossReference{}, fail(fmt.Sprintf("competitor link %q has no id", href))
	}

	return domain.CrossReference{Identity: slot.Identity, ExternalID: href[i+len(idParam):]}, nil
}

// Index keys references by roster identity
func Index(refs []domain.CrossReference) map[string]string {
	out := make(map[string]string, len(refs))
	for _, ref := range refs {
		out[ref.Identity] = ref.ExternalID
	}
	return out
}
