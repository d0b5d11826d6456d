package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(Config{Level: "loud"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNewWritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "melodify.log")
	l, err := New(Config{Level: "debug", OutputPath: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Info("song created", zap.Int64("song_id", 7))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"song_id":7`) {
		t.Fatalf("log file missing field: %s", data)
	}
}

func TestPackageHelpersUseInstalledLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(nil) })

	Debug("hidden")
	Info("like toggled", String("user", "u1"), Bool("liked", true))
	Error("upload failed", Int("size", 3))

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Message != "like toggled" || entries[0].ContextMap()["liked"] != true {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
}

func TestHelpersWithoutLoggerAreNoops(t *testing.T) {
	SetLogger(nil)
	Info("nothing installed")
	Warn("still fine")
	Sync()
}
