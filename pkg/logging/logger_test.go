package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"audioutils/pkg/config"
)

func TestInit(t *testing.T) {
	tempDir := t.TempDir()
	serverLog := filepath.Join(tempDir, "logs", "server.log")
	probeLog := filepath.Join(tempDir, "logs", "probe.log")

	// previous run leftovers get rotated
	if err := os.MkdirAll(filepath.Dir(serverLog), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(serverLog, []byte("previous run\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	prevDefault := slog.Default()
	prevProbe := ProbeLogger
	t.Cleanup(func() {
		slog.SetDefault(prevDefault)
		ProbeLogger = prevProbe
	})

	cfg := &config.LogConfig{
		Server: config.LogSettings{Path: serverLog, Level: "DEBUG"},
		Probe:  config.LogSettings{Path: probeLog, Level: "INFO"},
	}

	cleanup, err := Init(cfg)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	ProbeLogger.Info("probe", "call_id", 7)
	slog.Debug("server debug line")
	cleanup()

	if _, err := os.Stat(serverLog + ".old"); err != nil {
		t.Errorf("previous server log not rotated: %v", err)
	}

	data, err := os.ReadFile(probeLog)
	if err != nil {
		t.Fatalf("probe log not created: %v", err)
	}
	if !strings.Contains(string(data), "call_id=7") {
		t.Errorf("probe log missing record, got %q", string(data))
	}

	data, err = os.ReadFile(serverLog)
	if err != nil {
		t.Fatalf("server log not created: %v", err)
	}
	if !strings.Contains(string(data), "server debug line") {
		t.Errorf("server log missing debug record, got %q", string(data))
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSetupHandler_ConsoleCappedAtInfo(t *testing.T) {
	var console bytes.Buffer
	h, file, err := setupHandler(filepath.Join(t.TempDir(), "x.log"), "DEBUG", &console)
	if err != nil {
		t.Fatalf("setupHandler failed: %v", err)
	}
	defer file.Close()

	logger := slog.New(h)
	logger.Debug("hidden from console")
	logger.Info("shown on console")

	out := console.String()
	if strings.Contains(out, "hidden from console") {
		t.Error("console received a DEBUG record")
	}
	if !strings.Contains(out, "shown on console") {
		t.Error("console missing INFO record")
	}
}

func TestTrace(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	EnableTrace = false
	Trace(logger, "hidden")
	if buf.Len() != 0 {
		t.Fatalf("trace written while disabled: %q", buf.String())
	}

	EnableTrace = true
	t.Cleanup(func() { EnableTrace = false })
	Trace(logger, "shown", "call_id", 7)
	if !strings.Contains(buf.String(), "shown") || !strings.Contains(buf.String(), "call_id=7") {
		t.Errorf("trace output = %q", buf.String())
	}
}
