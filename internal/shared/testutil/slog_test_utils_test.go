package testutil

import (
	"log/slog"
	"testing"
)

func TestBufferedSlogHandler(t *testing.T) {
	t.Run("captures log records", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("test message", slog.String("key", "value"))
		logger.Error("error message", slog.Int("code", 500))

		records := handler.GetRecords()
		if len(records) != 2 {
			t.Errorf("Expected 2 records, got %d", len(records))
		}

		if !handler.ContainsMessage("test message") {
			t.Error("Expected to find 'test message'")
		}

		if !handler.ContainsAttr("key", "value") {
			t.Error("Expected to find attribute key=value")
		}
	})

	t.Run("filters by level", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Debug("debug msg")
		logger.Info("info msg")
		logger.Warn("warn msg")
		logger.Error("error msg")

		if n := len(handler.GetRecordsByLevel(slog.LevelInfo)); n != 1 {
			t.Errorf("Expected 1 info record, got %d", n)
		}
		if n := len(handler.GetRecordsByLevel(slog.LevelWarn)); n != 1 {
			t.Errorf("Expected 1 warn record, got %d", n)
		}
		if handler.Count() != 4 {
			t.Errorf("Expected 4 records, got %d", handler.Count())
		}
	})

	t.Run("derived loggers keep attributes", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.With(slog.String("component", "discovery")).Info("found")

		if !handler.ContainsAttr("component", "discovery") {
			t.Error("Expected attribute from With to be captured")
		}
		AssertLogContains(t, handler, slog.LevelInfo, "found")
		AssertNoErrors(t, handler)
	})
}
