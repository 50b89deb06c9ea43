package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]log.Level{
		"debug":   log.DebugLevel,
		"INFO":    log.InfoLevel,
		"warn":    log.WarnLevel,
		"warning": log.WarnLevel,
		"error":   log.ErrorLevel,
		"":        log.InfoLevel,
		"bogus":   log.InfoLevel,
	}
	for name, want := range tests {
		if got := ParseLevel(name); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "warn", Output: &buf})
	l.Info("hidden message")
	l.Warn("visible message", "program", "Zakat")

	out := buf.String()
	if strings.Contains(out, "hidden message") {
		t.Error("info should be filtered at warn level")
	}
	if !strings.Contains(out, "visible message") || !strings.Contains(out, "Zakat") {
		t.Errorf("output = %q", out)
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	New(Config{JSON: true, Output: &buf}).Info("loaded", "records", 3)
	out := buf.String()
	if !strings.HasPrefix(strings.TrimSpace(out), "{") || !strings.Contains(out, `"records":3`) {
		t.Errorf("output = %q", out)
	}
}

func TestContextRoundTrip(t *testing.T) {
	l := Discard()
	fallback := Discard()
	ctx := WithContext(context.Background(), l)
	if got := FromContext(ctx, fallback); got != l {
		t.Error("FromContext did not return the stored logger")
	}
	if got := FromContext(context.Background(), fallback); got != fallback {
		t.Error("FromContext should return the fallback when ctx has no logger")
	}
	if FromContext(context.Background(), nil) != log.Default() {
		t.Error("FromContext should fall back to the default logger")
	}
}
