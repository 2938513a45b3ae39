package logger

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func observed() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return &Logger{SugaredLogger: zap.New(core).Sugar()}, logs
}

func TestCredentialsAreRedacted(t *testing.T) {
	log, logs := observed()
	log.Info("calling provider",
		"provider", "openai",
		"credential", "sk-abcdefghijklmnopqrstuvwxyz",
		"headers", map[string]interface{}{"x-api-key": "secret-value", "accept": "json"},
		"note", "sk-ant-REDACTED",
	)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("unexpected entries: got=%d want=1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["provider"] != "openai" {
		t.Fatalf("provider should pass through: got=%v", fields["provider"])
	}
	if fields["credential"] != redacted {
		t.Fatalf("credential not redacted: got=%v", fields["credential"])
	}
	if fields["note"] != redacted {
		t.Fatalf("key-shaped value not redacted: got=%v", fields["note"])
	}
	headers, ok := fields["headers"].(map[string]interface{})
	if !ok {
		t.Fatalf("headers type: got=%T", fields["headers"])
	}
	if headers["x-api-key"] != redacted || headers["accept"] != "json" {
		t.Fatalf("unexpected headers: %v", headers)
	}
}

func TestWithCarriesSanitizedFields(t *testing.T) {
	log, logs := observed()
	log.With("api_key", "plain").Warn("x")

	if got := logs.All()[0].ContextMap()["api_key"]; got != redacted {
		t.Fatalf("unexpected api_key: got=%v want=%s", got, redacted)
	}
}

func TestNewWithFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deckforge.log")
	log, err := NewWithOptions(Options{Mode: "production", Level: "info", File: path})
	if err != nil {
		t.Fatalf("NewWithOptions: %v", err)
	}
	log.Info("hello")
	log.Sync()
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := NewWithOptions(Options{Level: "loud"}); err == nil {
		t.Fatalf("expected error for bad level")
	}
}
