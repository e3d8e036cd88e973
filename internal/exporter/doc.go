// Package exporter writes the reconciled roster table.
//
// CSVWriter is the file layer shared with the checkpoint store: headers
// unless appending, relative paths resolved under the data directory, flushed and synced on every write.
//
// Exporter joins roster slots with profiles, stamps the period, normalises
// birth dates, attaches the second source's ids and writes the result as CSV
// and as an XLSX workbook.
//
// Example usage:
//
//	writer := exporter.NewCSVWriter(paths)
//	exp := exporter.NewExporter(writer, crossref.NewResolver(tables, logger), logger)
//	res, err := exp.Export(ctx, exporter.Input{
//		Slots:       slots,
//		Profiles:    profiles,
//		CrossSource: html,
//		Now:         time.Now(),
//	}, paths.ExportCSV, paths.ExportWorkbook)
package exporter
