package logging_test

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sentinel/internal/config"
	"sentinel/internal/logging"
)

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, closer, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("ledger opened")
	if err := closer.Close(); err != nil {
		t.Fatalf("close log files: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "ledger opened") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestConsoleLoggerFormatsSubjectAndFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger := newTestLogger(t, logging.Options{Format: "console", Level: "info", Outputs: []string{logPath}})

	logger = logging.NewComponentLogger(logger, "registry")
	logger.Info("inscription recorded",
		logging.String(logging.FieldLicenseID, "P2"),
		logging.String(logging.FieldBranch, "NDONGO"),
		logging.String(logging.FieldAgent, "Mor Diop"),
	)

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	text := string(content)
	for _, want := range []string{"INFO  [registry] P2@NDONGO inscription recorded", `agent="Mor Diop"`} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in %q", want, text)
		}
	}
	if strings.Contains(text, "src=") {
		t.Fatalf("expected no caller information in info logs, got %q", text)
	}
}

func TestJSONLoggerUsesLowercaseLevel(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger := newTestLogger(t, logging.Options{Format: "json", Level: "debug", Outputs: []string{logPath}})
	logging.WarnWithContext(logger, "ledger skipped", "ledger_parse_failed", logging.Error(errors.New("bad header")))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(content))), &payload); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if payload["level"] != "warn" {
		t.Fatalf("unexpected level: %v", payload["level"])
	}
	if payload[logging.FieldEventType] != "ledger_parse_failed" {
		t.Fatalf("unexpected event type: %v", payload[logging.FieldEventType])
	}
	if _, ok := payload[logging.FieldImpact]; !ok {
		t.Fatal("expected impact to be injected")
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatal("expected ts key")
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(t.Context(), slog.LevelError) {
		t.Fatal("expected nop logger to be disabled")
	}
	logging.ErrorWithContext(nil, "ignored", "nil_logger")
}

func TestConsoleLoggerFlattensGroupsAndKeepsLastValue(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "groups.log")
	logger := newTestLogger(t, logging.Options{Outputs: []string{logPath}})
	logger.With(logging.String(logging.FieldCycleID, "old")).WithGroup("import").Info("snapshots imported",
		slog.Int("rows_a", 3),
		slog.Group("cleared", slog.Int("entries", 2)),
	)
	logger.Info("cycle", logging.String(logging.FieldCycleID, "a"), logging.String(logging.FieldCycleID, "b"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	text := string(content)
	for _, want := range []string{"cycle_id=old", "import.rows_a=3", "import.cleared.entries=2", "cycle cycle_id=b"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in %q", want, text)
		}
	}
}

func newTestLogger(t *testing.T, opts logging.Options) *slog.Logger {
	t.Helper()
	logger, closer, err := logging.New(opts)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	t.Cleanup(func() { _ = closer.Close() })
	return logger
}

func TestCloseReleasesLogFiles(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "closed.log")
	logger, closer, err := logging.New(logging.Options{Outputs: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("before close")
	if err := closer.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := closer.Close(); err == nil {
		t.Fatal("expected second close to report the file already closed")
	}

	_, stderrOnly, err := logging.New(logging.Options{})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := stderrOnly.Close(); err != nil {
		t.Fatalf("closing a stderr-only logger: %v", err)
	}
}
