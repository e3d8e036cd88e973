package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"sumocli/internal/config"
)

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	paths *config.Paths
}

// NewCSVWriter creates a new CSV writer instance. Relative file paths are
// resolved under the data directory of paths.
func NewCSVWriter(paths *config.Paths) *CSVWriter {
	return &CSVWriter{paths: paths}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers []string
	Records [][]string
	Append  bool
}

// WriteCSV writes data to a CSV file with the given options.
// Headers are only written when not appending.
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	fullPath := w.resolvePath(filePath)

	slog.Debug("writing_csv",
		slog.String("full_path", fullPath),
		slog.Bool("append", options.Append),
		slog.Int("record_count", len(options.Records)))

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if options.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(fullPath, flags, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if !options.Append && len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return file.Sync()
}

// WriteSimpleCSV replaces filePath with headers and records
func (w *CSVWriter) WriteSimpleCSV(filePath string, headers []string, records [][]string) error {
	return w.WriteCSV(filePath, WriteOptions{
		Headers: headers,
		Records: records,
	})
}

// ReadCSV reads every record of filePath, header included
func (w *CSVWriter) ReadCSV(filePath string) ([][]string, error) {
	fullPath := w.resolvePath(filePath)

	file, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv %s: %w", fullPath, err)
	}
	return records, nil
}

// resolvePath resolves a path to the data directory
func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) || w.paths == nil {
		return filePath
	}
	return w.paths.GetDataPath(filePath)
}
