package infrastructure

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"xlmerge/internal/config"
	apperrors "xlmerge/internal/errors"
)

const (
	// LogFileTimeFormat is the start-time prefix of a run log file name
	LogFileTimeFormat = "15_04_05_02_01_2006"
	// LineTimeFormat is the timestamp of each text log line
	LineTimeFormat = "2006-01-02 15:04:05,000"
)

// stdout is swapped in tests
var stdout io.Writer = os.Stdout

// RunLog is the log destination of a single merge run
type RunLog struct {
	Logger *slog.Logger
	Path   string
	RunID  string
	file   *os.File
}

// LogFileName returns the run log file name for a run started at start
func LogFileName(start time.Time, runName string) string {
	return start.Format(LogFileTimeFormat) + "-" + runName + ".log"
}

// NewRunLog opens <Dir>/<start>-<RunName>.log in append mode and returns a
// logger writing to it. Every record carries the run ID.
func NewRunLog(cfg config.LoggingConfig, runID string, start time.Time) (*RunLog, error) {
	path := filepath.Join(cfg.Dir, LogFileName(start, cfg.RunName))
	file, err := openLogFile(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open run log", err).
			WithContext("file", path)
	}

	var output io.Writer = file
	if strings.ToLower(cfg.Output) == "both" {
		output = io.MultiWriter(stdout, file)
	}

	logger := slog.New(newHandler(output, cfg)).With(slog.String("run_id", runID))
	return &RunLog{
		Logger: logger,
		Path:   path,
		RunID:  runID,
		file:   file,
	}, nil
}

// Close closes the log file. The logger must not be used afterwards.
func (r *RunLog) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

func newHandler(w io.Writer, cfg config.LoggingConfig) slog.Handler {
	level := parseLogLevel(cfg.Level)

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "json" {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	} else {
		handler = &lineHandler{mu: &sync.Mutex{}, w: w, level: level}
	}

	// Wrap handler to inject trace ids from the active span
	return &traceHandler{Handler: handler}
}

// traceHandler wraps a slog.Handler to inject trace_id and span_id from the
// span carried by the context
type traceHandler struct {
	slog.Handler
}

// Handle adds trace_id to the record if a span is active
func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if traceID := TraceIDFromContext(ctx); traceID != "" {
		r.AddAttrs(slog.String("trace_id", traceID))
	}
	return h.Handler.Handle(ctx, r)
}

// WithAttrs returns a new Handler with additional attributes
func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

// WithGroup returns a new Handler with the given group name
func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithGroup(name)}
}

// lineHandler renders "<timestamp>:<LEVEL>:<message>" followed by the
// record attributes as key=value pairs.
type lineHandler struct {
	mu     *sync.Mutex
	w      io.Writer
	level  slog.Leveler
	pre    []byte
	prefix string
}

func (h *lineHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *lineHandler) Handle(_ context.Context, r slog.Record) error {
	t := r.Time
	if t.IsZero() {
		t = time.Now()
	}

	buf := make([]byte, 0, 256)
	buf = append(buf, t.Format(LineTimeFormat)...)
	buf = append(buf, ':')
	buf = append(buf, levelName(r.Level)...)
	buf = append(buf, ':')
	buf = append(buf, r.Message...)
	buf = append(buf, h.pre...)
	r.Attrs(func(a slog.Attr) bool {
		buf = appendAttr(buf, h.prefix, a)
		return true
	})
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf)
	return err
}

func (h *lineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	pre := append([]byte{}, h.pre...)
	for _, a := range attrs {
		pre = appendAttr(pre, h.prefix, a)
	}
	return &lineHandler{mu: h.mu, w: h.w, level: h.level, pre: pre, prefix: h.prefix}
}

func (h *lineHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &lineHandler{mu: h.mu, w: h.w, level: h.level, pre: h.pre, prefix: h.prefix + name + "."}
}

func appendAttr(buf []byte, prefix string, a slog.Attr) []byte {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return buf
	}

	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			buf = appendAttr(buf, prefix, ga)
		}
		return buf
	}

	buf = append(buf, ' ')
	buf = append(buf, prefix...)
	buf = append(buf, a.Key...)
	buf = append(buf, '=')
	return append(buf, quoteIfNeeded(formatValue(a.Value))...)
}

func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().Format(LineTimeFormat)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
	}
	return v.String()
}

func quoteIfNeeded(s string) string {
	if s == "" || strings.ContainsAny(s, " =\"\t\n\r") {
		return strconv.Quote(s)
	}
	return s
}

// levelName uses the WARNING spelling for the warn level
func levelName(l slog.Level) string {
	switch {
	case l < slog.LevelInfo:
		return "DEBUG"
	case l < slog.LevelWarn:
		return "INFO"
	case l < slog.LevelError:
		return "WARNING"
	default:
		return "ERROR"
	}
}

// parseLogLevel converts string log level to slog.Level
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// openLogFile opens or creates a log file in append mode
func openLogFile(filePath string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
}
