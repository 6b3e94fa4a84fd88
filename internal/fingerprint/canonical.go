package fingerprint

import "strings"

// canonicalDelimiter joins the identity fields. Embedded delimiters are
// not escaped; the field order below is load-bearing and must never
// change once certificates exist.
const canonicalDelimiter = "|"

// CanonicalInput holds the identity fields of a certificate in the order
// they are serialized. Number may be empty when the certificate number
// has not been assigned yet.
type CanonicalInput struct {
	Number      string
	StudentName string
	IssueDate   string // ISO calendar date, YYYY-MM-DD
	Narration   string
	IssuePlace  string
}

// Canonicalize produces the deterministic identity string for hashing:
// number|student|date|narration|place|secret. Absent fields degrade to
// the empty string, never to an error.
func Canonicalize(in CanonicalInput, secret string) string {
	return strings.Join([]string{
		in.Number,
		in.StudentName,
		in.IssueDate,
		in.Narration,
		in.IssuePlace,
		secret,
	}, canonicalDelimiter)
}
