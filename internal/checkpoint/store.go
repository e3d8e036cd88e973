// Package checkpoint persists intermediate tables so an interrupted scrape
// can resume without fetching finished records again.
package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"sumocli/internal/config"
	"sumocli/internal/exporter"
)

// ErrCheckpointMissing is returned when append mode finds no table to extend
var ErrCheckpointMissing = errors.New("checkpoint file does not exist")

// Mode selects how Sync treats an existing table
type Mode string

const (
	// ModeFresh replaces the table
	ModeFresh Mode = "fresh"
	// ModeAppend extends the table and keeps its rows
	ModeAppend Mode = "append"
)

// Codec maps rows of T to CSV records
type Codec[T any] interface {
	Header() []string
	Encode(row T) []string
	Decode(record []string) (T, error)
	Key(row T) string
}

// CollectFunc gathers rows. On failure it returns the rows gathered so far
// along with the error.
type CollectFunc[T any] func(ctx context.Context) ([]T, error)

// Store is one CSV checkpoint table
type Store[T any] struct {
	path   string
	codec  Codec[T]
	writer *exporter.CSVWriter
	logger *slog.Logger
}

// NewStore creates a store for the table at path
func NewStore[T any](path string, codec Codec[T], writer *exporter.CSVWriter, logger *slog.Logger) *Store[T] {
	if logger == nil {
		logger = slog.Default()
	}
	if writer == nil {
		writer = exporter.NewCSVWriter(nil)
	}
	return &Store[T]{path: path, codec: codec, writer: writer, logger: logger}
}

// Path returns the table location
func (s *Store[T]) Path() string {
	return s.path
}

// Exists reports whether the table has been written before
func (s *Store[T]) Exists() bool {
	return config.FileExists(s.path)
}

// Load reads every row of the table. Rows that fail to decode are logged
// and skipped.
func (s *Store[T]) Load() ([]T, error) {
	records, err := s.writer.ReadCSV(s.path)
	if err != nil {
		return nil, err
	}

	header := s.codec.Header()
	rows := make([]T, 0, len(records))
	for i, rec := range records {
		if i == 0 && slices.Equal(rec, header) {
			continue
		}
		row, err := s.codec.Decode(rec)
		if err != nil {
			s.logger.Warn("checkpoint_row_skipped",
				slog.String("path", s.path),
				slog.Int("line", i+1),
				slog.String("error", err.Error()))
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Sync runs collect and persists its rows according to mode.
//
// Fresh mode rewrites the table with a header. Append mode requires the
// table to exist, appends without a header and returns the previous rows
// followed by the new ones. Rows gathered before a collect failure are
// written before the error is returned. When collect yields nothing and a
// table already exists, the table is left untouched and its rows are
// returned.
func (s *Store[T]) Sync(ctx context.Context, mode Mode, collect CollectFunc[T]) ([]T, error) {
	exists := s.Exists()

	var prior []T
	if mode == ModeAppend {
		if !exists {
			return nil, fmt.Errorf("%w: %s (run without append first)", ErrCheckpointMissing, s.path)
		}
		loaded, err := s.Load()
		if err != nil {
			return nil, err
		}
		prior = loaded
	}

	rows, collectErr := collect(ctx)

	if len(rows) == 0 && exists {
		if mode == ModeFresh {
			loaded, err := s.Load()
			if err != nil {
				return nil, errors.Join(collectErr, err)
			}
			prior = loaded
		}
		s.logger.InfoContext(ctx, "checkpoint_unchanged",
			slog.String("path", s.path),
			slog.String("mode", string(mode)),
			slog.Int("rows", len(prior)))
		return prior, collectErr
	}

	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, s.codec.Encode(row))
	}
	if err := s.writer.WriteCSV(s.path, exporter.WriteOptions{
		Headers: s.codec.Header(),
		Records: records,
		Append:  mode == ModeAppend,
	}); err != nil {
		return nil, errors.Join(collectErr, fmt.Errorf("failed to write checkpoint %s: %w", s.path, err))
	}

	s.logger.InfoContext(ctx, "checkpoint_written",
		slog.String("path", s.path),
		slog.String("mode", string(mode)),
		slog.Int("new_rows", len(rows)),
		slog.Int("prior_rows", len(prior)),
		slog.Bool("partial", collectErr != nil))

	return append(prior, rows...), collectErr
}

// Keys returns the key of every row accepted by keep, in order
func (s *Store[T]) Keys(rows []T, keep func(T) bool) []string {
	keys := make([]string, 0, len(rows))
	for _, row := range rows {
		if keep == nil || keep(row) {
			keys = append(keys, s.codec.Key(row))
		}
	}
	return keys
}
