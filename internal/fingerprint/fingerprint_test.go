package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
)

func TestCanonicalizeOrder(t *testing.T) {
	in := CanonicalInput{
		Number:      "GH-00000001",
		StudentName: "Ahmad Fikri",
		IssueDate:   "2026-01-14",
		Narration:   "Hafs an Asim",
		IssuePlace:  "Jakarta",
	}

	got := Canonicalize(in, "secret")
	want := "GH-00000001|Ahmad Fikri|2026-01-14|Hafs an Asim|Jakarta|secret"
	if got != want {
		t.Fatalf("canonical string mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestComputeDeterministic(t *testing.T) {
	in := CanonicalInput{
		StudentName: "Ahmad Fikri",
		IssueDate:   "2026-01-14",
		IssuePlace:  "Jakarta",
	}

	first := Compute(in, "secret")
	second := Compute(in, "secret")
	if first != second {
		t.Fatalf("expected identical digests, got %s and %s", first, second)
	}

	if len(first) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(first))
	}
	if first != strings.ToLower(first) {
		t.Fatalf("expected lowercase hex, got %s", first)
	}

	// The digest must be plain SHA-256 over the canonical string.
	sum := sha256.Sum256([]byte(Canonicalize(in, "secret")))
	if first != hex.EncodeToString(sum[:]) {
		t.Fatalf("digest does not match SHA-256 of canonical string")
	}
}

func TestFieldOrderSensitivity(t *testing.T) {
	a := CanonicalInput{StudentName: "Ahmad", IssuePlace: "Jakarta", IssueDate: "2026-01-14"}
	b := CanonicalInput{StudentName: "Jakarta", IssuePlace: "Ahmad", IssueDate: "2026-01-14"}

	if Compute(a, "secret") == Compute(b, "secret") {
		t.Fatalf("swapping fields must change the fingerprint")
	}
}

func TestAbsentNarrationEqualsEmpty(t *testing.T) {
	absent := CanonicalInput{StudentName: "Ahmad", IssueDate: "2026-01-14", IssuePlace: "Jakarta"}
	empty := absent
	empty.Narration = ""

	if Compute(absent, "secret") != Compute(empty, "secret") {
		t.Fatalf("absent and empty narration must hash identically")
	}
}

func TestSecretChangesDigest(t *testing.T) {
	in := CanonicalInput{StudentName: "Ahmad", IssueDate: "2026-01-14"}
	if Compute(in, "a") == Compute(in, "b") {
		t.Fatalf("different secrets must produce different fingerprints")
	}
}

func TestMatches(t *testing.T) {
	in := CanonicalInput{StudentName: "Ahmad", IssueDate: "2026-01-14", IssuePlace: "Jakarta"}
	stored := Compute(in, "secret")

	if !Matches(in, "secret", stored) {
		t.Fatalf("expected untouched fields to match stored digest")
	}

	tampered := in
	tampered.StudentName = "Someone Else"
	if Matches(tampered, "secret", stored) {
		t.Fatalf("expected altered fields to be detected")
	}
}
