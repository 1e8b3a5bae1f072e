package obslog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "app.log")
	logger, err := New(Options{Level: "debug", ToFile: true, File: path, Format: "json"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Debug("engine_started")
	_ = logger.Sync()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(raw), `"msg":"engine_started"`) {
		t.Fatalf("unexpected log output: %s", raw)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestOptionsFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"LOG_LEVEL", "LOG_TO_CONSOLE", "LOG_TO_FILE", "LOG_FILE", "LOG_FORMAT", "LOG_CALLER"} {
		t.Setenv(k, "")
	}
	opts := OptionsFromEnv()
	if opts.Level != "info" || !opts.Console || opts.ToFile || opts.Format != "legacy" {
		t.Fatalf("unexpected defaults %+v", opts)
	}
}
