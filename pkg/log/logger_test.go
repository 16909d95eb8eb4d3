package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", DebugLevel, false},
		{"INFO", InfoLevel, false},
		{"", InfoLevel, false},
		{"warning", WarnLevel, false},
		{"error", ErrorLevel, false},
		{"loud", InfoLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err=%v wantErr=%v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("got %v want %v", got, tt.want)
			}
		})
	}
}

func TestParseLevelErrorNamesInput(t *testing.T) {
	_, err := ParseLevel("loud")
	if err == nil || !strings.Contains(err.Error(), `"loud"`) {
		t.Fatalf("expected error naming the level, got %v", err)
	}
}

func TestJSONFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithFormat(FormatJSON), WithWriter(&buf), WithLevel(DebugLevel))
	l.WithComponent("registry").Info("channel created", Str("channel", "PING"), Int("listeners", 2), Err(errors.New("boom")))

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if m["component"] != "registry" || m["channel"] != "PING" {
		t.Fatalf("unexpected entry: %v", m)
	}
	if m["listeners"].(float64) != 2 {
		t.Fatalf("listeners: %v", m["listeners"])
	}
	if m["error"] != "boom" {
		t.Fatalf("error: %v", m["error"])
	}
}

func TestLevelGate(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithFormat(FormatText), WithWriter(&buf), WithLevel(WarnLevel))
	l.Info("hidden")
	l.Warn("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestNop(t *testing.T) {
	l := NewNop()
	l.With(Str("a", "b")).Error("nothing")
	if l.GetLevel() != ErrorLevel {
		t.Fatalf("nop level")
	}
}
