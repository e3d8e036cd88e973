package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"sumocli/internal/crossref"
	"sumocli/pkg/contracts/domain"
)

var tracer = otel.Tracer("sumocli/internal/exporter")

// Headers are the columns of the export table
var Headers = []string{
	"basho", "year", "basho_num",
	"identity", "external_id", "display_name",
	"rank_label", "position", "side", "duplicate_marker", "division",
	"debut", "retirement", "full_name", "stable", "real_name", "birthplace",
	"height", "weight", "birth_date", "is_new",
}

// Input is everything one export needs
type Input struct {
	Slots    []domain.RosterSlot
	Profiles []domain.ProfileRecord
	// CrossSource is the rendered ranking page of the second source.
	// When empty no external ids are attached.
	CrossSource string
	Now         time.Time
}

// Result describes a finished export
type Result struct {
	Period     domain.Period
	Rows       []Row
	References int
}

// Exporter produces the reconciled table
type Exporter struct {
	writer   *CSVWriter
	resolver *crossref.Resolver
	logger   *slog.Logger
}

// NewExporter creates an exporter
func NewExporter(writer *CSVWriter, resolver *crossref.Resolver, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{writer: writer, resolver: resolver, logger: logger}
}

// Export merges, resolves and writes the table to csvPath and, when set,
// workbookPath. A cross-source mismatch aborts before anything is written.
func (e *Exporter) Export(ctx context.Context, in Input, csvPath, workbookPath string) (Result, error) {
	ctx, span := tracer.Start(ctx, "exporter.Export")
	defer span.End()

	res := Result{Period: PeriodFor(in.Now)}
	rows := Merge(in.Slots, in.Profiles)

	for i := range rows {
		p := &rows[i].Profile
		if !p.BirthDate.Valid {
			continue
		}
		date := NormalizeBirthDate(p.BirthDate)
		if date.Failed() {
			e.logger.WarnContext(ctx, "birth_date_unparsed",
				slog.String("identity", rows[i].Slot.Identity),
				slog.String("diagnostic", date.Diagnostic))
		}
		p.BirthDate = date.Nullable
	}

	if in.CrossSource != "" {
		refs, err := e.resolver.Resolve(ctx, in.Slots, in.CrossSource)
		if err != nil {
			span.RecordError(err)
			return res, fmt.Errorf("cross-source resolution failed: %w", err)
		}
		ids := crossref.Index(refs)
		for i := range rows {
			if id, ok := ids[rows[i].Slot.Identity]; ok {
				rows[i].ExternalID = domain.Some(id)
			}
		}
		res.References = len(refs)
	} else {
		e.logger.WarnContext(ctx, "crossref_skipped", slog.String("reason", "no cross-source page"))
	}
	res.Rows = rows

	records := Records(res.Period, rows)
	if err := e.writer.WriteCSV(csvPath, WriteOptions{Headers: Headers, Records: records}); err != nil {
		return res, fmt.Errorf("failed to write export: %w", err)
	}
	if workbookPath != "" {
		if err := e.writer.WriteWorkbook(workbookPath, Headers, records); err != nil {
			return res, err
		}
	}

	span.SetAttributes(
		attribute.String("export.period", res.Period.Label()),
		attribute.Int("export.rows", len(rows)))
	e.logger.InfoContext(ctx, "export_written",
		slog.String("period", res.Period.Label()),
		slog.Int("rows", len(rows)),
		slog.Int("references", res.References),
		slog.String("csv", csvPath),
		slog.String("workbook", workbookPath))
	return res, nil
}

// Records renders rows in Headers order
func Records(period domain.Period, rows []Row) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		s, p := r.Slot, r.Profile
		out = append(out, []string{
			period.Label(), formatInt(period.Year), formatInt(period.Index),
			s.Identity, formatString(r.ExternalID), s.DisplayName,
			s.RankGroup, formatInt(s.Position), string(s.Side), formatDuplicate(s.Duplicate), formatInt(s.Division),
			formatString(p.Debut), formatString(p.Retirement), formatString(p.FullName),
			formatString(p.Stable), formatString(p.RealName), formatString(p.Birthplace),
			formatString(p.Height), formatString(p.Weight), formatString(p.BirthDate), formatFlag(p.IsNew),
		})
	}
	return out
}
