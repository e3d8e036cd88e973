package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"sumocli/internal/config"
)

// NewLogger builds the JSON logger of one run. Console output goes to
// stdout and file output to logPath, which callers resolve under the data
// directory. The returned closer releases the log file and is never nil.
func NewLogger(cfg config.LoggingConfig, logPath string) (*slog.Logger, io.Closer, error) {
	return newLogger(cfg, logPath, os.Stdout)
}

func newLogger(cfg config.LoggingConfig, logPath string, console io.Writer) (*slog.Logger, io.Closer, error) {
	var (
		out    io.Writer = console
		closer io.Closer = nopCloser{}
	)

	switch output := strings.ToLower(cfg.Output); output {
	case "file", "both":
		file, err := openLogFile(logPath)
		if err != nil {
			return nil, nil, err
		}
		closer = file
		out = file
		if output == "both" {
			out = io.MultiWriter(console, file)
		}
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level:     parseLogLevel(cfg.Level),
		AddSource: true,
	})
	return slog.New(&runHandler{Handler: handler}), closer, nil
}

// runHandler stamps each record with the run id, the active stage and the
// OTel trace id found on the context. A stage set on the logger or the record
// wins over the context.
type runHandler struct {
	slog.Handler
	hasStage bool
}

func (h *runHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := RunID(ctx); id != "" {
		r.AddAttrs(slog.String("run_id", id))
	}
	if stage := Stage(ctx); stage != "" && !h.hasStage && !hasAttr(r, "stage") {
		r.AddAttrs(slog.String("stage", stage))
	}
	if traceID := TraceIDFromContext(ctx); traceID != "" {
		r.AddAttrs(slog.String("trace_id", traceID))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *runHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	hasStage := h.hasStage
	for _, a := range attrs {
		hasStage = hasStage || a.Key == "stage"
	}
	return &runHandler{Handler: h.Handler.WithAttrs(attrs), hasStage: hasStage}
}

func (h *runHandler) WithGroup(name string) slog.Handler {
	return &runHandler{Handler: h.Handler.WithGroup(name), hasStage: h.hasStage}
}

func hasAttr(r slog.Record, key string) bool {
	found := false
	r.Attrs(func(a slog.Attr) bool {
		found = a.Key == key
		return !found
	})
	return found
}

// parseLogLevel accepts the configured names; "warning" is an alias of warn
func parseLogLevel(level string) slog.Level {
	if strings.EqualFold(level, "warning") {
		level = "warn"
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

func openLogFile(path string) (*os.File, error) {
	if path == "" {
		return nil, fmt.Errorf("log file path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return file, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
