package models

// Numbering schemes for issuance drafts
const (
	SchemeDerived    = "derived"
	SchemeSequential = "sequential"
)

// CertificateDraft is the input to issuance: the identity fields plus
// either a manually chosen number or a numbering scheme to allocate
// one from.
type CertificateDraft struct {
	StudentName string `json:"student_name"`
	IssueDate   string `json:"issue_date"` // YYYY-MM-DD
	IssuePlace  string `json:"issue_place"`
	Narration   string `json:"narration,omitempty"`
	IjazahType  string `json:"ijazah_type"`
	Recitation  string `json:"recitation"`
	TeacherName string `json:"teacher_name,omitempty"`
	ProfileID   string `json:"profile_id,omitempty"`

	// ManualNumber, when non-empty, overrides any scheme
	ManualNumber string `json:"manual_number,omitempty"`
	// Scheme selects the allocator when no manual number is given;
	// defaults to the derived serial.
	Scheme string `json:"scheme,omitempty"`

	// PatternFamily, PatternColor and PatternOpacity override the
	// issuer's default watermark configuration when all are set.
	PatternFamily  string   `json:"pattern_family,omitempty"`
	PatternColor   string   `json:"pattern_color,omitempty"`
	PatternOpacity *float64 `json:"pattern_opacity,omitempty"`

	// Metadata carries any extra attributes; the core stores them
	// untouched.
	Metadata map[string]string `json:"metadata,omitempty"`
}
