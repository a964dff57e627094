package database

import (
	"database/sql"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var errBadInput = errors.New("bad input")

func TestReporterFail(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantKind  error
		wantLevel zapcore.Level
		wantMsg   string
	}{
		{"rejected input", errBadInput, errBadInput, zapcore.InfoLevel, "update client rejected"},
		{"missing row", sql.ErrNoRows, ErrNotFound, zapcore.InfoLevel, "update client found nothing"},
		{"store failure", sql.ErrConnDone, ErrStore, zapcore.WarnLevel, "update client failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			r := NewReporter(zap.New(core).Sugar(), errBadInput)

			err := r.Fail("update client", "c1", tt.err)
			if !errors.Is(err, tt.wantKind) || !errors.Is(err, tt.err) {
				t.Fatalf("Fail() = %v, want kind %v wrapping %v", err, tt.wantKind, tt.err)
			}
			if tt.wantKind == errBadInput && errors.Is(err, ErrStore) {
				t.Fatalf("rejected input was classified as a store error")
			}
			entries := logs.AllUntimed()
			if len(entries) != 1 {
				t.Fatalf("expected one log entry, got %d", len(entries))
			}
			if entries[0].Level != tt.wantLevel || entries[0].Message != tt.wantMsg {
				t.Fatalf("logged %v %q, want %v %q", entries[0].Level, entries[0].Message, tt.wantLevel, tt.wantMsg)
			}
			if entries[0].ContextMap()["id"] != "c1" {
				t.Fatalf("record id not logged: %v", entries[0].ContextMap())
			}
		})
	}
}

func TestReporterNilLogger(t *testing.T) {
	if err := NewReporter(nil).Fail("list", "", sql.ErrConnDone); !errors.Is(err, ErrStore) {
		t.Fatalf("expected ErrStore, got %v", err)
	}
}
