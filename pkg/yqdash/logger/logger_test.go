package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestFieldsAreWritten(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf).With(String("component", "dispatch"))
	l.Warn("upstream failed",
		String("endpoint", "price"),
		Int("symbols", 2),
		Bool("fallback", true),
		Duration("elapsed_ms", 1500*time.Millisecond),
		Error(errors.New("boom")),
	)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode: %v (%s)", err, buf.String())
	}
	want := map[string]any{
		"level":      "warn",
		"message":    "upstream failed",
		"component":  "dispatch",
		"endpoint":   "price",
		"symbols":    float64(2),
		"fallback":   true,
		"elapsed_ms": float64(1500),
		"error":      "boom",
	}
	for k, v := range want {
		if rec[k] != v {
			t.Fatalf("%s: expected %v, got %v", k, v, rec[k])
		}
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New(&Config{Level: "loud"}); err == nil {
		t.Fatalf("expected error for invalid level")
	}
}

func TestNopDiscards(t *testing.T) {
	Nop().Error("ignored", String("k", "v"))
}
