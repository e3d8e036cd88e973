package exporter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet the export is written to
const SheetName = "banzuke"

// WriteWorkbook writes headers and records to a single-sheet XLSX file,
// replacing any existing file
func (w *CSVWriter) WriteWorkbook(filePath string, headers []string, records [][]string) error {
	fullPath := w.resolvePath(filePath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("failed to open sheet writer: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = excelize.Cell{StyleID: bold, Value: h}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, record := range records {
		row := make([]interface{}, len(record))
		for j, v := range record {
			row[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	if err := f.SaveAs(fullPath); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", fullPath, err)
	}
	return nil
}
