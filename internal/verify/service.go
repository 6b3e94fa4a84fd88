package verify

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/sanadhub/ijazahserver/internal/db/repository"
	"github.com/sanadhub/ijazahserver/internal/fingerprint"
	"github.com/sanadhub/ijazahserver/internal/models"
	"github.com/sanadhub/ijazahserver/internal/serial"
)

// PlaceholderName substitutes for display names that neither the
// certificate metadata nor a linked profile can supply
const PlaceholderName = "unspecified"

// Service errors. All are terminal for the request; the service never
// retries a lookup.
var (
	// ErrEmptyNumber is returned for blank input before any lookup
	// happens. No attempt is logged in that case.
	ErrEmptyNumber = errors.New("certificate number is empty")

	// ErrNotFound is returned when no certificate bears the number
	ErrNotFound = errors.New("certificate not found")

	// ErrTampered is returned when the fingerprint recomputed from the
	// stored identity fields no longer matches the stored digest.
	ErrTampered = errors.New("certificate failed integrity check")
)

// CertificateStore is the certificate lookup surface the service needs
type CertificateStore interface {
	GetByNumber(ctx context.Context, number string) (*models.Certificate, error)
	RecordVerification(ctx context.Context, id string, at time.Time) error
}

// AttemptStore appends verification attempts
type AttemptStore interface {
	Create(ctx context.Context, attempt *models.VerificationAttempt) error
}

// ProfileStore resolves linked profiles for the display-name fallback
type ProfileStore interface {
	GetByID(ctx context.Context, id string) (*models.Profile, error)
}

// Service implements the verification protocol
type Service struct {
	certs    CertificateStore
	attempts AttemptStore
	profiles ProfileStore
	secret   string
	now      func() time.Time
}

// NewService creates a verification service. The secret must be the
// same server-side value used at issuance time.
func NewService(certs CertificateStore, attempts AttemptStore, profiles ProfileStore, secret string) *Service {
	return &Service{
		certs:    certs,
		attempts: attempts,
		profiles: profiles,
		secret:   secret,
		now:      time.Now,
	}
}

// Request is one verification call
type Request struct {
	Number           string
	Method           string
	ActorFingerprint string
}

// Result is the resolved certificate view returned on success
type Result struct {
	Certificate       *models.Certificate `json:"certificate"`
	StudentName       string              `json:"student_name"`
	TeacherName       string              `json:"teacher_name"`
	Status            string              `json:"status"`
	VerificationCount int64               `json:"verification_count"`
	VerifiedAt        time.Time           `json:"verified_at"`
}

// Verify runs the verification state machine: normalize, look up,
// integrity-check, resolve display names, audit, bump the counter.
func (s *Service) Verify(ctx context.Context, req Request) (*Result, error) {
	number := serial.Normalize(req.Number)
	if number == "" {
		// Malformed input is rejected before any lookup, so no
		// attempt is recorded.
		return nil, ErrEmptyNumber
	}

	cert, err := s.certs.GetByNumber(ctx, number)
	if errors.Is(err, repository.ErrNotFound) {
		s.logAttempt(ctx, req, "", false, models.FailureNotFound)
		return nil, ErrNotFound
	}
	if err != nil {
		reason := models.FailureStoreError
		if errors.Is(err, context.DeadlineExceeded) {
			reason = models.FailureStoreTimeout
		}
		s.logAttempt(ctx, req, "", false, reason)
		return nil, fmt.Errorf("certificate lookup failed: %w", err)
	}

	// Recompute the fingerprint from the stored identity fields and
	// compare with the digest recorded at issuance. A mismatch means
	// the record was altered after the fact.
	in := fingerprint.CanonicalInput{
		Number:      cert.CanonicalNumber,
		StudentName: cert.Metadata[models.MetaStudentName],
		IssueDate:   cert.IssueDate,
		Narration:   cert.Metadata[models.MetaNarration],
		IssuePlace:  cert.Metadata[models.MetaIssuePlace],
	}
	if !fingerprint.Matches(in, s.secret, cert.Fingerprint) {
		s.logAttempt(ctx, req, cert.ID, false, models.FailureTampered)
		return nil, ErrTampered
	}

	studentName, teacherName := s.resolveNames(ctx, cert)

	s.logAttempt(ctx, req, cert.ID, true, "")

	now := s.now()
	if err := s.certs.RecordVerification(ctx, cert.ID, now); err != nil {
		// The result is already computed; a lost counter bump is an
		// operational problem, not a user-facing failure.
		log.Printf("Error recording verification for %s: %v", cert.ID, err)
	}

	return &Result{
		Certificate:       cert,
		StudentName:       studentName,
		TeacherName:       teacherName,
		Status:            cert.Status,
		VerificationCount: cert.VerificationCount + 1,
		VerifiedAt:        now,
	}, nil
}

// resolveNames applies the display-name fallback chain: certificate
// metadata, then the linked profile, then a generic placeholder. Older
// or externally issued records may lack a linked profile.
func (s *Service) resolveNames(ctx context.Context, cert *models.Certificate) (string, string) {
	studentName := cert.Metadata[models.MetaStudentName]
	teacherName := cert.Metadata[models.MetaTeacherName]

	if (studentName == "" || teacherName == "") && cert.ProfileID != "" {
		profile, err := s.profiles.GetByID(ctx, cert.ProfileID)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				log.Printf("Error resolving profile %s: %v", cert.ProfileID, err)
			}
		} else {
			if studentName == "" {
				studentName = profile.FullName
			}
			if teacherName == "" {
				teacherName = profile.TeacherName
			}
		}
	}

	if studentName == "" {
		studentName = PlaceholderName
	}
	if teacherName == "" {
		teacherName = PlaceholderName
	}

	return studentName, teacherName
}

// logAttempt appends one audit row. Audit failures are logged and
// swallowed; they never block the verification result.
func (s *Service) logAttempt(ctx context.Context, req Request, certificateID string, success bool, failureReason string) {
	attempt := &models.VerificationAttempt{
		ID:               uuid.NewString(),
		CertificateID:    certificateID,
		Method:           req.Method,
		Success:          success,
		FailureReason:    failureReason,
		ActorFingerprint: req.ActorFingerprint,
	}

	if err := s.attempts.Create(ctx, attempt); err != nil {
		log.Printf("Error writing verification attempt: %v", err)
	}
}

// ActorFingerprint derives a short best-effort caller identity from
// the network origin and client signature. Audit trail only, never
// access control.
func ActorFingerprint(clientIP, userAgent string) string {
	sum := sha256.Sum256([]byte(clientIP + "|" + userAgent))
	return hex.EncodeToString(sum[:8])
}
