package utilities

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestIDFuncForSchemes(t *testing.T) {
	tests := []struct {
		scheme string
		maxLen int
	}{
		{"uuid", 36},
		{"", 36},
		{"bogus", 36},
		{"KSUID", 27},
		{"snowflake", 20},
	}
	for _, tt := range tests {
		t.Run(tt.scheme, func(t *testing.T) {
			gen := IDFuncFor(tt.scheme, 1)
			seen := map[string]bool{}
			for i := 0; i < 200; i++ {
				id := gen()
				if id == "" {
					t.Fatalf("empty id")
				}
				if len(id) > tt.maxLen {
					t.Fatalf("id %q longer than %d", id, tt.maxLen)
				}
				if seen[id] {
					t.Fatalf("duplicate id %q", id)
				}
				seen[id] = true
			}
		})
	}
}

func TestSnowflakeBadNodeFallsBack(t *testing.T) {
	// node ids are 10 bits; out of range falls back to a KSUID
	if id := IDFuncFor(SchemeSnowflake, 1<<20)(); len(id) != 27 {
		t.Fatalf("expected KSUID fallback, got %q", id)
	}
}

func TestSnowflakeBurstIsUnique(t *testing.T) {
	gen := IDFuncFor(SchemeSnowflake, 7)
	seen := make(map[string]bool, 5000)
	for i := 0; i < 5000; i++ {
		id := gen()
		if seen[id] {
			t.Fatalf("duplicate id %q after %d calls", id, i)
		}
		seen[id] = true
	}
}

func TestLevelFromString(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range tests {
		if got := levelFromString(in); got != want {
			t.Errorf("levelFromString(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("LOG_DEV", "1")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_MAX_AGE_HOURS", "48")
	cfg := ConfigFromEnv()
	if cfg.Level != "debug" || !cfg.Dev {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.MaxAge.Hours() != 48 {
		t.Fatalf("MaxAge = %v", cfg.MaxAge)
	}
	if cfg.RotationTime.Hours() != 24 {
		t.Fatalf("RotationTime = %v", cfg.RotationTime)
	}
}

func TestInitWithFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "cads.log")
	lg, err := Init(Config{Level: "info", File: file})
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	lg.Sugar().Infow("hello", "k", "v")
	_ = lg.Sync()
}
