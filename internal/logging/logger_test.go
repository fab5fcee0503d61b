package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "debug", FormatJSON)
	logger.Debug().Str("user", "alice").Msg("no login profile")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	if line["component"] != Component {
		t.Fatalf("expected component %q, got %v", Component, line["component"])
	}
	if line["user"] != "alice" {
		t.Fatalf("expected user field, got %v", line["user"])
	}
}

func TestNewLevelFallback(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "loud", FormatJSON)
	if logger.GetLevel() != zerolog.InfoLevel {
		t.Fatalf("expected info level fallback, got %s", logger.GetLevel())
	}

	logger.Debug().Msg("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected debug to be filtered at info level")
	}

	if New(&buf, "", FormatJSON).GetLevel() != zerolog.InfoLevel {
		t.Fatalf("expected empty level to mean info")
	}
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "info", FormatConsole)
	logger.Info().Msg("audit complete")
	if !strings.Contains(buf.String(), "audit complete") {
		t.Fatalf("expected console output, got %q", buf.String())
	}
	if strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Fatalf("expected console format, not JSON")
	}
}
