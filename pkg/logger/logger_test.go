package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestLoggerErrorIncludesContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: ParseLevel("debug"), Output: buf})

	ctx := context.Background()
	ctx = log.WithCycleID(ctx, "cycle-123")
	ctx = log.WithMarketplace(ctx, "US")

	log.Error(ctx, "fetch failed", errors.New("boom"))

	for _, want := range []string{`"cycle_id":"cycle-123"`, `"marketplace":"US"`, `"error":"boom"`, `"service":"test"`} {
		if !bytes.Contains(buf.Bytes(), []byte(want)) {
			t.Fatalf("expected %s in entry=%s", want, buf.String())
		}
	}
}

func TestLoggerRespectsLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: zerolog.WarnLevel, Output: buf})

	log.Info(context.Background(), "hidden")
	log.Debug(context.Background(), "hidden too")
	if buf.Len() != 0 {
		t.Fatalf("expected info/debug to be filtered, got %s", buf.String())
	}

	log.Warn(context.Background(), "shown")
	if !bytes.Contains(buf.Bytes(), []byte("shown")) {
		t.Fatalf("expected warn entry, got %s", buf.String())
	}
}

func TestWithFieldsDoesNotLeakIntoParent(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Output: buf})

	parent := context.Background()
	_ = log.WithFields(parent, map[string]any{"days": 63})

	log.Info(parent, "plain")
	if bytes.Contains(buf.Bytes(), []byte("days")) {
		t.Fatalf("child fields leaked into parent context: %s", buf.String())
	}
}

func TestParseLevelDefaults(t *testing.T) {
	if lvl := ParseLevel(""); lvl != zerolog.InfoLevel {
		t.Fatalf("expected default info level, got %v", lvl)
	}
	if lvl := ParseLevel("invalid"); lvl != zerolog.InfoLevel {
		t.Fatalf("invalid level should fallback to info, got %v", lvl)
	}
	if lvl := ParseLevel(" DEBUG "); lvl != zerolog.DebugLevel {
		t.Fatalf("expected debug, got %v", lvl)
	}
}

func TestNopDiscards(t *testing.T) {
	log := Nop()
	log.Error(context.Background(), "nothing", errors.New("x"))
}
