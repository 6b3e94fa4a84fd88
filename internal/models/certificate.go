package models

import "time"

// Certificate status values. The integrity core only reads status;
// lifecycle transitions happen in the surrounding application.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Well-known metadata keys the integrity core reads. Everything else in
// the metadata bag is opaque and passed through untouched.
const (
	MetaStudentName = "student_name"
	MetaTeacherName = "teacher_name"
	MetaNarration   = "narration"
	MetaIssuePlace  = "issue_place"

	MetaPatternFamily  = "pattern_family"
	MetaPatternColor   = "pattern_color"
	MetaPatternOpacity = "pattern_opacity"
)

// Certificate represents an issued ijazah certificate record
type Certificate struct {
	ID                string            `json:"id"`
	CertificateNumber string            `json:"certificate_number"`
	IssueDate         string            `json:"issue_date"` // civil date, YYYY-MM-DD
	IjazahType        string            `json:"ijazah_type"`
	Recitation        string            `json:"recitation"`
	Fingerprint       string            `json:"fingerprint"`
	CanonicalNumber   string            `json:"-"` // number value hashed at issuance, may be empty
	Metadata          map[string]string `json:"metadata,omitempty"`
	ProfileID         string            `json:"profile_id,omitempty"`
	Status            string            `json:"status"`
	VerificationCount int64             `json:"verification_count"`
	LastVerifiedAt    *time.Time        `json:"last_verified_at,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
}
