package serial

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// sequentialDigits is the zero-padded width of sequential suffixes,
	// e.g. GH-00000042.
	sequentialDigits = 8

	derivedPrefixLen = 4
)

// Derive builds the date-derived certificate number: the issue date as
// YYYYMMDD, a hyphen, and the first four hex characters of the
// fingerprint uppercased. Collisions within a day are possible in the
// 16-bit prefix space; they surface as a uniqueness violation when the
// certificate is persisted, not here.
func Derive(issueDate, fp string) (string, error) {
	t, err := time.Parse("2006-01-02", issueDate)
	if err != nil {
		return "", fmt.Errorf("invalid issue date %q: %w", issueDate, err)
	}
	if len(fp) < derivedPrefixLen {
		return "", fmt.Errorf("fingerprint too short: %q", fp)
	}

	return fmt.Sprintf("%s-%s", t.Format("20060102"), strings.ToUpper(fp[:derivedPrefixLen])), nil
}

// NumberSource lists existing certificate numbers for sequential
// allocation scans.
type NumberSource interface {
	ListNumbersByPrefix(ctx context.Context, prefix string) ([]string, error)
}

// Allocator allocates sequential certificate numbers of the form
// PREFIX-########. Allocation is scan-then-increment and is not
// serialized against concurrent issuances; the unique constraint on
// certificate_number rejects the loser, and the issuance path retries.
type Allocator struct {
	prefix string
	source NumberSource
}

// NewAllocator creates a sequential number allocator
func NewAllocator(prefix string, source NumberSource) *Allocator {
	return &Allocator{prefix: prefix, source: source}
}

// Next proposes the next sequential number: max existing suffix plus
// one, zero-padded. Gaps in the sequence are never refilled.
func (a *Allocator) Next(ctx context.Context) (string, error) {
	existing, err := a.source.ListNumbersByPrefix(ctx, a.prefix+"-")
	if err != nil {
		return "", fmt.Errorf("failed to scan existing numbers: %w", err)
	}

	var max uint64
	for _, number := range existing {
		suffix, ok := parseSuffix(number, a.prefix)
		if !ok {
			continue
		}
		if suffix > max {
			max = suffix
		}
	}

	return fmt.Sprintf("%s-%0*d", a.prefix, sequentialDigits, max+1), nil
}

// parseSuffix extracts the numeric suffix of PREFIX-######## numbers.
// Anything not matching the fixed pattern is ignored.
func parseSuffix(number, prefix string) (uint64, bool) {
	rest, found := strings.CutPrefix(number, prefix+"-")
	if !found || len(rest) != sequentialDigits {
		return 0, false
	}

	suffix, err := strconv.ParseUint(rest, 10, 64)
	if err != nil {
		return 0, false
	}

	return suffix, true
}

// Resolve picks the certificate number used at issuance: the manually
// or sequentially allocated value when present, the derived serial
// otherwise.
func Resolve(manual, derived string) string {
	if m := strings.TrimSpace(manual); m != "" {
		return m
	}
	return derived
}

// Normalize prepares a submitted identifier for lookup: trimmed and
// uppercased, exact match only after that.
func Normalize(number string) string {
	return strings.ToUpper(strings.TrimSpace(number))
}
