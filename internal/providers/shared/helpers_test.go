package shared

import (
	"testing"
	"time"
)

func TestNonEmpty(t *testing.T) {
	if got := NonEmpty("a", "b"); got != "a" {
		t.Fatalf("got %q", got)
	}
	if got := NonEmpty("  ", "b"); got != "b" {
		t.Fatalf("got %q", got)
	}
}

func TestMillisOrNow(t *testing.T) {
	want := time.Date(2026, 1, 1, 0, 1, 0, 0, time.UTC)
	if got := MillisOrNow(want.UnixMilli()); !got.Equal(want) {
		t.Fatalf("got %s want %s", got, want)
	}
	if got := MillisOrNow(0); time.Since(got) > time.Minute {
		t.Fatalf("zero must fall back to now, got %s", got)
	}
}

func TestParseTimeOrNow(t *testing.T) {
	if got := ParseTimeOrNow("2026-03-01T12:00:00Z"); got.Hour() != 12 {
		t.Fatalf("got %s", got)
	}
	if got := ParseTimeOrNow("not a time"); time.Since(got) > time.Minute {
		t.Fatalf("unparseable must fall back to now, got %s", got)
	}
}

func TestNormalizeEventType(t *testing.T) {
	if got := NormalizeEventType("  AddNote "); got != "addnote" {
		t.Fatalf("got %q", got)
	}
}

func TestFallbackID(t *testing.T) {
	if got := FallbackID("d-1"); got != "d-1" {
		t.Fatalf("got %q", got)
	}
	if got := FallbackID("  "); got == "" {
		t.Fatal("expected generated id")
	}
}
