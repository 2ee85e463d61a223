package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var events []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", line, err)
		}
		events = append(events, m)
	}
	return events
}

func TestZerologAdapterFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologAdapter(zerolog.New(&buf).Level(zerolog.DebugLevel))

	logger.Info("evaluated",
		String("algo", "linear"),
		Int64("n", 92),
		Uint64("result", 12200160415121876738),
		Float64("ratio", 0.5),
		Duration("took", time.Millisecond),
		Field{Key: "cached", Value: true},
	)
	logger.Error("failed", errors.New("overflow"), Int("code", 6))
	logger.Debug("debugging")
	logger.Warn("careful")
	logger.Printf("value %d", 7)

	events := decodeLines(t, &buf)
	if len(events) != 5 {
		t.Fatalf("got %d events, want 5", len(events))
	}
	first := events[0]
	if first["algo"] != "linear" || first["n"] != float64(92) || first["cached"] != true || first["level"] != "info" {
		t.Errorf("unexpected info event: %v", first)
	}
	if events[1]["error"] != "overflow" || events[1]["level"] != "error" {
		t.Errorf("unexpected error event: %v", events[1])
	}
	if events[3]["level"] != "warn" || events[4]["message"] != "value 7" {
		t.Errorf("unexpected events: %v %v", events[3], events[4])
	}
}

func TestNewLoggerComponent(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, "server").With(String("request_id", "abc")).Info("started")
	events := decodeLines(t, &buf)
	if len(events) != 1 || events[0]["component"] != "server" || events[0]["request_id"] != "abc" {
		t.Errorf("unexpected events: %v", events)
	}
}

func TestNewStdLogger(t *testing.T) {
	var buf bytes.Buffer
	std := NewStdLogger(zerolog.New(&buf))
	std.Println("http: TLS handshake error")
	events := decodeLines(t, &buf)
	if len(events) != 1 || events[0]["level"] != "error" || events[0]["message"] != "http: TLS handshake error" {
		t.Errorf("unexpected events: %v", events)
	}
}

func TestConfigure(t *testing.T) {
	previous, previousLogger := zerolog.GlobalLevel(), log.Logger
	defer func() {
		zerolog.SetGlobalLevel(previous)
		log.Logger = previousLogger
	}()

	var buf bytes.Buffer
	if err := Configure("warn", &buf, false); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if zerolog.GlobalLevel() != zerolog.WarnLevel {
		t.Errorf("global level = %v, want warn", zerolog.GlobalLevel())
	}
	NewDefaultLogger().Info("hidden")
	NewDefaultLogger().Warn("shown")
	events := decodeLines(t, &buf)
	if len(events) != 1 || events[0]["message"] != "shown" {
		t.Errorf("unexpected events: %v", events)
	}

	if err := Configure("loud", &buf, false); err == nil {
		t.Error("expected an error for an unknown level")
	}
}
