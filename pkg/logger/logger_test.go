package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"qbank_backend/internal/config"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func resetLog(t *testing.T) {
	t.Helper()
	t.Cleanup(func() { Log = zap.NewNop() })
}

func TestInitLoggerWritesJSONFile(t *testing.T) {
	resetLog(t)
	file := filepath.Join(t.TempDir(), "qbank.log")
	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "release"},
		Log:    config.LogConfig{File: file, MaxSizeMB: 1},
	}

	if err := InitLogger(cfg); err != nil {
		t.Fatalf("InitLogger: %v", err)
	}
	Log.Debug("hidden at info level")
	Log.Info("quiz generated", zap.String("quizId", "abc"))
	_ = Log.Sync()

	raw, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 1 {
		t.Fatalf("log lines = %d, want 1:\n%s", len(lines), raw)
	}
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "quiz generated" || entry["service"] != "qbank" || entry["quizId"] != "abc" {
		t.Errorf("entry = %v", entry)
	}
}

func TestInitLoggerLevel(t *testing.T) {
	resetLog(t)
	cases := []struct {
		name  string
		mode  string
		level string
		debug bool
	}{
		{"debug mode", "debug", "", true},
		{"release mode", "release", "", false},
		{"explicit level wins", "debug", "error", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &config.Config{Server: config.ServerConfig{Mode: tc.mode}, Log: config.LogConfig{Level: tc.level}}
			if err := InitLogger(cfg); err != nil {
				t.Fatalf("InitLogger: %v", err)
			}
			if got := Log.Core().Enabled(zap.DebugLevel); got != tc.debug {
				t.Errorf("debug enabled = %v, want %v", got, tc.debug)
			}
		})
	}

	bad := &config.Config{Log: config.LogConfig{Level: "loud"}}
	if err := InitLogger(bad); err == nil {
		t.Error("expected error for unknown level")
	}
}
