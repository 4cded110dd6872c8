package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestFromConfigWritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, cleanup := FromConfig(Config{Level: "info", JSON: true, File: path, MaxSizeMB: 1})
	l.Info("hello", zap.String("k", "v"))
	cleanup()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(b), `"msg":"hello"`) || !strings.Contains(string(b), `"k":"v"`) {
		t.Fatalf("unexpected log content: %s", b)
	}
}

func TestLevelFiltering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, cleanup := FromConfig(Config{Level: "warn", JSON: true, File: path})
	l.Info("dropped")
	l.Warn("kept")
	cleanup()

	b, _ := os.ReadFile(path)
	if strings.Contains(string(b), "dropped") || !strings.Contains(string(b), "kept") {
		t.Fatalf("level filter not applied: %s", b)
	}
}

func TestToWriterTrimsNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, cleanup := FromConfig(Config{Level: "debug", JSON: true, File: path})
	w := ToWriter(l, zapcore.InfoLevel)
	if _, err := w.Write([]byte("[GIN-debug] route\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	cleanup()

	b, _ := os.ReadFile(path)
	if !strings.Contains(string(b), `"msg":"[GIN-debug] route"`) {
		t.Fatalf("unexpected content: %s", b)
	}
}
