// Package issue drives certificate issuance: canonical serialization,
// fingerprinting, number allocation and persistence.
package issue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sanadhub/ijazahserver/internal/db/repository"
	"github.com/sanadhub/ijazahserver/internal/fingerprint"
	"github.com/sanadhub/ijazahserver/internal/models"
	"github.com/sanadhub/ijazahserver/internal/pattern"
	"github.com/sanadhub/ijazahserver/internal/policy"
	"github.com/sanadhub/ijazahserver/internal/serial"
)

// maxAllocationRetries bounds the sequential-allocation retry loop.
// Two concurrent issuances can propose the same next number; the
// uniqueness constraint rejects the loser and we re-scan.
const maxAllocationRetries = 3

// Issuance errors
var (
	// ErrInvalidDraft wraps draft validation failures
	ErrInvalidDraft = errors.New("invalid certificate draft")

	// ErrNumberTaken is returned when the proposed certificate number
	// is already in use and no retry path applies (manual and derived
	// numbering).
	ErrNumberTaken = errors.New("certificate number already in use")
)

// CertificateStore is the persistence surface issuance needs
type CertificateStore interface {
	Create(ctx context.Context, cert *models.Certificate) error
	ListNumbersByPrefix(ctx context.Context, prefix string) ([]string, error)
}

// Service issues certificates
type Service struct {
	certs          CertificateStore
	alloc          *serial.Allocator
	validator      *policy.Validator
	secret         string
	patternDefault pattern.Config
}

// NewService creates an issuance service
func NewService(certs CertificateStore, alloc *serial.Allocator, validator *policy.Validator, secret string, patternDefault pattern.Config) *Service {
	return &Service{
		certs:          certs,
		alloc:          alloc,
		validator:      validator,
		secret:         secret,
		patternDefault: patternDefault,
	}
}

// Issue validates the draft, derives the fingerprint and certificate
// number, and persists the record. The fingerprint and number are
// immutable once this returns.
func (s *Service) Issue(ctx context.Context, draft *models.CertificateDraft) (*models.Certificate, error) {
	if err := s.validator.ValidateDraft(draft); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDraft, err)
	}

	cert := s.buildCertificate(draft)
	in := fingerprint.CanonicalInput{
		StudentName: cert.Metadata[models.MetaStudentName],
		IssueDate:   cert.IssueDate,
		Narration:   cert.Metadata[models.MetaNarration],
		IssuePlace:  cert.Metadata[models.MetaIssuePlace],
	}

	if manual := serial.Normalize(draft.ManualNumber); manual != "" {
		return s.issueWithNumber(ctx, cert, in, manual)
	}
	if draft.Scheme == models.SchemeSequential {
		return s.issueSequential(ctx, cert, in)
	}
	return s.issueDerived(ctx, cert, in)
}

// issueWithNumber fingerprints and persists under a known number. The
// number is part of the canonical identity string in this path.
func (s *Service) issueWithNumber(ctx context.Context, cert *models.Certificate, in fingerprint.CanonicalInput, number string) (*models.Certificate, error) {
	in.Number = number
	cert.CertificateNumber = number
	cert.CanonicalNumber = number
	cert.Fingerprint = fingerprint.Compute(in, s.secret)

	if err := s.certs.Create(ctx, cert); err != nil {
		if errors.Is(err, repository.ErrDuplicateNumber) {
			return nil, fmt.Errorf("%w: %s", ErrNumberTaken, number)
		}
		return nil, fmt.Errorf("failed to persist certificate: %w", err)
	}

	return cert, nil
}

// issueSequential allocates PREFIX-######## numbers with a bounded
// retry loop around the scan-then-insert race.
func (s *Service) issueSequential(ctx context.Context, cert *models.Certificate, in fingerprint.CanonicalInput) (*models.Certificate, error) {
	var lastErr error
	for attempt := 0; attempt < maxAllocationRetries; attempt++ {
		number, err := s.alloc.Next(ctx)
		if err != nil {
			return nil, err
		}

		issued, err := s.issueWithNumber(ctx, cert, in, number)
		if err == nil {
			return issued, nil
		}
		if !errors.Is(err, ErrNumberTaken) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("sequential allocation lost the race %d times: %w", maxAllocationRetries, lastErr)
}

// issueDerived fingerprints with an empty number, then derives the
// serial from the digest. A same-day prefix collision surfaces as
// ErrNumberTaken; there is no automatic fallback for it.
func (s *Service) issueDerived(ctx context.Context, cert *models.Certificate, in fingerprint.CanonicalInput) (*models.Certificate, error) {
	cert.CanonicalNumber = ""
	cert.Fingerprint = fingerprint.Compute(in, s.secret)

	number, err := serial.Derive(cert.IssueDate, cert.Fingerprint)
	if err != nil {
		return nil, err
	}
	cert.CertificateNumber = number

	if err := s.certs.Create(ctx, cert); err != nil {
		if errors.Is(err, repository.ErrDuplicateNumber) {
			return nil, fmt.Errorf("%w: %s", ErrNumberTaken, number)
		}
		return nil, fmt.Errorf("failed to persist certificate: %w", err)
	}

	return cert, nil
}

// buildCertificate assembles the record and its metadata bag from the
// draft. Draft metadata passes through untouched; the well-known keys
// are set last so they always reflect the identity fields that were
// fingerprinted.
func (s *Service) buildCertificate(draft *models.CertificateDraft) *models.Certificate {
	metadata := make(map[string]string, len(draft.Metadata)+8)
	for k, v := range draft.Metadata {
		metadata[k] = v
	}

	metadata[models.MetaStudentName] = strings.TrimSpace(draft.StudentName)
	metadata[models.MetaIssuePlace] = strings.TrimSpace(draft.IssuePlace)
	if narration := strings.TrimSpace(draft.Narration); narration != "" {
		metadata[models.MetaNarration] = narration
	}
	if teacher := strings.TrimSpace(draft.TeacherName); teacher != "" {
		metadata[models.MetaTeacherName] = teacher
	}

	patternCfg := s.patternDefault
	if draft.PatternFamily != "" {
		patternCfg = pattern.Config{
			Family:       draft.PatternFamily,
			PrimaryColor: draft.PatternColor,
			Opacity:      *draft.PatternOpacity,
		}
	}
	metadata[models.MetaPatternFamily] = patternCfg.Family
	metadata[models.MetaPatternColor] = patternCfg.PrimaryColor
	metadata[models.MetaPatternOpacity] = strconv.FormatFloat(patternCfg.Opacity, 'f', -1, 64)

	return &models.Certificate{
		ID:         uuid.NewString(),
		IssueDate:  strings.TrimSpace(draft.IssueDate),
		IjazahType: strings.TrimSpace(draft.IjazahType),
		Recitation: strings.TrimSpace(draft.Recitation),
		Metadata:   metadata,
		ProfileID:  strings.TrimSpace(draft.ProfileID),
		Status:     models.StatusActive,
	}
}
