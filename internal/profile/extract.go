// Package profile fetches competitor detail pages and extracts their
// biographical fields.
package profile

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"

	"sumocli/pkg/contracts/domain"
)

var tracer = otel.Tracer("sumocli/internal/profile")

const (
	profileTable  = ".mdTable2"
	debutSelector = ".mdRankBox3 > .mdBox5 > dl"
	recordRows    = "tbody > .bBnone.name:not(.hoshitoriAll)"

	// month-precision dates as printed on profile pages, e.g. "January, 2020"
	monthLayout = "January, 2006"
)

// Extractor reads profile fields out of a rendered profile page
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor creates an extractor
func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// Extract builds the profile record of identity from html. Missing fields
// are logged and left null; only an unreadable document is an error.
func (e *Extractor) Extract(ctx context.Context, identity, html string) (domain.ProfileRecord, error) {
	ctx, span := tracer.Start(ctx, "profile.Extract")
	defer span.End()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return domain.ProfileRecord{}, fmt.Errorf("parse profile %s: %w", identity, err)
	}
	table := doc.Find(profileTable).First()

	rec := domain.ProfileRecord{Identity: identity}
	rec.Height = e.keep(ctx, identity, "height", trimUnit(tableField(table, "Height"), "cm"))
	rec.Weight = e.keep(ctx, identity, "weight", trimUnit(tableField(table, "Weight"), "kg"))
	rec.BirthDate = e.keep(ctx, identity, "birth_date", tableField(table, "Date of Birth"))
	rec.Stable = e.keep(ctx, identity, "stable", tableField(table, "Heya"))
	rec.RealName = e.keep(ctx, identity, "real_name", reverseWords(tableField(table, "Name")))
	rec.Birthplace = e.keep(ctx, identity, "birthplace", tableField(table, "Place of Birth"))
	rec.Debut = e.keep(ctx, identity, "debut", debut(doc))
	rec.FullName = e.keep(ctx, identity, "full_name", fullName(table))
	rec.IsNew = isNew(doc).Nullable

	// retirement is absent for active competitors, so it is not logged
	rec.Retirement = monthLabel(tableField(table, "Retire")).Nullable

	return rec, nil
}

// keep logs a failed field and returns its value
func (e *Extractor) keep(ctx context.Context, identity, field string, r domain.FieldResult[string]) domain.Nullable[string] {
	if r.Failed() {
		e.logger.WarnContext(ctx, "profile_field_missing",
			slog.String("identity", identity),
			slog.String("field", field),
			slog.String("diagnostic", r.Diagnostic))
	}
	return r.Nullable
}

// tableField returns the cell following the header cell labelled label
func tableField(table *goquery.Selection, label string) domain.FieldResult[string] {
	if table.Length() == 0 {
		return domain.Missing[string]("profile table not found")
	}
	var value domain.FieldResult[string]
	found := false
	table.Find("th").EachWithBreak(func(_ int, th *goquery.Selection) bool {
		if strings.TrimSpace(th.Text()) != label {
			return true
		}
		found = true
		td := th.NextAllFiltered("td").First()
		text := strings.TrimSpace(td.Text())
		if td.Length() == 0 || text == "" {
			value = domain.Missing[string](fmt.Sprintf("%s has no value", label))
		} else {
			value = domain.Found(text)
		}
		return false
	})
	if !found {
		return domain.Missing[string](fmt.Sprintf("no %s row", label))
	}
	return value
}

func trimUnit(r domain.FieldResult[string], unit string) domain.FieldResult[string] {
	v, ok := r.Get()
	if !ok {
		return r
	}
	if i := strings.Index(v, unit); i >= 0 {
		v = strings.TrimSpace(v[:i])
	}
	return domain.Found(v)
}

// reverseWords turns "FAMILY Given" into "Given FAMILY"
func reverseWords(r domain.FieldResult[string]) domain.FieldResult[string] {
	v, ok := r.Get()
	if !ok {
		return r
	}
	words := strings.Fields(v)
	for i, j := 0, len(words)-1; i < j; i, j = i+1, j-1 {
		words[i], words[j] = words[j], words[i]
	}
	return domain.Found(strings.Join(words, " "))
}

// monthLabel converts "January, 2020" into "2020.01"
func monthLabel(r domain.FieldResult[string]) domain.FieldResult[string] {
	v, ok := r.Get()
	if !ok {
		return r
	}
	t, err := time.Parse(monthLayout, v)
	if err != nil {
		return domain.Missing[string](fmt.Sprintf("unparseable month %q", v))
	}
	return domain.Found(fmt.Sprintf("%d.%02d", t.Year(), int(t.Month())))
}

func debut(doc *goquery.Document) domain.FieldResult[string] {
	dd := doc.Find(debutSelector).First().Find("dd").First()
	if dd.Length() == 0 {
		return domain.Missing[string]("no debut box")
	}
	return monthLabel(domain.Found(strings.TrimSpace(dd.Text())))
}

func fullName(table *goquery.Selection) domain.FieldResult[string] {
	name := strings.TrimSpace(table.Find("td.fntXL").First().Text())
	if name == "" {
		return domain.Missing[string]("no full name cell")
	}
	return domain.Found(name)
}

// isNew treats a career record of at most one tournament as a newcomer
func isNew(doc *goquery.Document) domain.FieldResult[bool] {
	return domain.Found(doc.Find(recordRows).Length() <= 1)
}
