package serial

import (
	"context"
	"testing"
)

type staticSource struct {
	numbers []string
	err     error
}

func (s *staticSource) ListNumbersByPrefix(ctx context.Context, prefix string) ([]string, error) {
	return s.numbers, s.err
}

func TestDerive(t *testing.T) {
	got, err := Derive("2026-01-14", "a1b2c3d4e5f6")
	if err != nil {
		t.Fatalf("derive error: %v", err)
	}
	if got != "20260114-A1B2" {
		t.Fatalf("expected 20260114-A1B2, got %s", got)
	}
}

func TestDeriveInvalidDate(t *testing.T) {
	if _, err := Derive("14/01/2026", "a1b2c3d4"); err == nil {
		t.Fatalf("expected error for non-ISO date")
	}
}

func TestNextSkipsGaps(t *testing.T) {
	alloc := NewAllocator("GH", &staticSource{numbers: []string{"GH-00000001", "GH-00000003"}})

	got, err := alloc.Next(context.Background())
	if err != nil {
		t.Fatalf("allocation error: %v", err)
	}
	if got != "GH-00000004" {
		t.Fatalf("expected GH-00000004, got %s", got)
	}
}

func TestNextFirstAllocation(t *testing.T) {
	alloc := NewAllocator("GH", &staticSource{})

	got, err := alloc.Next(context.Background())
	if err != nil {
		t.Fatalf("allocation error: %v", err)
	}
	if got != "GH-00000001" {
		t.Fatalf("expected GH-00000001, got %s", got)
	}
}

func TestNextIgnoresForeignFormats(t *testing.T) {
	alloc := NewAllocator("GH", &staticSource{numbers: []string{
		"GH-00000002",
		"GH-123",          // wrong width
		"GH-ABCDEFGH",     // not numeric
		"20260114-A1B2",   // derived serial
		"OTHER-00000009",  // different prefix
	}})

	got, err := alloc.Next(context.Background())
	if err != nil {
		t.Fatalf("allocation error: %v", err)
	}
	if got != "GH-00000003" {
		t.Fatalf("expected GH-00000003, got %s", got)
	}
}

func TestResolve(t *testing.T) {
	if got := Resolve("GH-00000007", "20260114-A1B2"); got != "GH-00000007" {
		t.Fatalf("manual number must win, got %s", got)
	}
	if got := Resolve("   ", "20260114-A1B2"); got != "20260114-A1B2" {
		t.Fatalf("blank manual number must fall back to derived, got %s", got)
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  gh-00000001 "); got != "GH-00000001" {
		t.Fatalf("expected GH-00000001, got %s", got)
	}
}
