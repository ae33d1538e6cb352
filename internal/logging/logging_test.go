package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New("production", "debug", &buf)
	log.Debug().Str("hash", "0xabc").Msg("submitted message")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected JSON line, got %q: %v", buf.String(), err)
	}
	if rec["message"] != "submitted message" || rec["hash"] != "0xabc" || rec["level"] != "debug" {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestNew_DefaultLevelIsInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New("production", "", &buf)
	log.Debug().Msg("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug record written at default level: %q", buf.String())
	}
	log.Info().Msg("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("info record missing: %q", buf.String())
	}
}

func TestNew_DevelopmentIsConsole(t *testing.T) {
	var buf bytes.Buffer
	log := New("development", "info", &buf)
	log.Info().Msg("hello")
	if json.Valid(bytes.TrimSpace(buf.Bytes())) {
		t.Fatalf("development output should not be JSON: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "hello") {
		t.Fatalf("message missing: %q", buf.String())
	}
}
