package issue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/sanadhub/ijazahserver/internal/config"
	"github.com/sanadhub/ijazahserver/internal/db/repository"
	"github.com/sanadhub/ijazahserver/internal/fingerprint"
	"github.com/sanadhub/ijazahserver/internal/models"
	"github.com/sanadhub/ijazahserver/internal/pattern"
	"github.com/sanadhub/ijazahserver/internal/policy"
	"github.com/sanadhub/ijazahserver/internal/serial"
)

const testSecret = "issue-secret"

var testPatternDefault = pattern.Config{
	Family:       "diamonds",
	PrimaryColor: "#1a5632",
	Opacity:      0.5,
}

type fakeCertStore struct {
	certs map[string]*models.Certificate

	// rejectFirst makes the first rejectFirst Create calls fail with a
	// duplicate-number error, simulating lost allocation races.
	rejectFirst int
	createCalls int
}

func newFakeCertStore(numbers ...string) *fakeCertStore {
	store := &fakeCertStore{certs: make(map[string]*models.Certificate)}
	for _, number := range numbers {
		store.certs[number] = &models.Certificate{CertificateNumber: number}
	}
	return store
}

func (s *fakeCertStore) Create(ctx context.Context, cert *models.Certificate) error {
	s.createCalls++
	if s.createCalls <= s.rejectFirst {
		return fmt.Errorf("insert: %w", repository.ErrDuplicateNumber)
	}
	if _, exists := s.certs[cert.CertificateNumber]; exists {
		return fmt.Errorf("insert: %w", repository.ErrDuplicateNumber)
	}
	s.certs[cert.CertificateNumber] = cert
	return nil
}

func (s *fakeCertStore) ListNumbersByPrefix(ctx context.Context, prefix string) ([]string, error) {
	var numbers []string
	for number := range s.certs {
		if strings.HasPrefix(number, prefix) {
			numbers = append(numbers, number)
		}
	}
	return numbers, nil
}

func newTestService(store *fakeCertStore) *Service {
	alloc := serial.NewAllocator("GH", store)
	validator := policy.NewValidator(&config.Config{})
	return NewService(store, alloc, validator, testSecret, testPatternDefault)
}

func validDraft() *models.CertificateDraft {
	return &models.CertificateDraft{
		StudentName: "Ahmad Fikri",
		IssueDate:   "2026-01-14",
		IssuePlace:  "Jakarta",
		Narration:   "Hafs an Asim",
		IjazahType:  "hifz",
		Recitation:  "hafs",
		TeacherName: "Sheikh Mahmud",
	}
}

func TestIssueDerivedNumber(t *testing.T) {
	store := newFakeCertStore()
	svc := newTestService(store)

	cert, err := svc.Issue(context.Background(), validDraft())
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}

	wantPrefix := "20260114-"
	if !strings.HasPrefix(cert.CertificateNumber, wantPrefix) {
		t.Fatalf("expected number starting %q, got %q", wantPrefix, cert.CertificateNumber)
	}
	suffix := strings.TrimPrefix(cert.CertificateNumber, wantPrefix)
	if len(suffix) != 4 || suffix != strings.ToUpper(cert.Fingerprint[:4]) {
		t.Fatalf("suffix %q must be the uppercased fingerprint prefix %q", suffix, cert.Fingerprint[:4])
	}

	// The derived path fingerprints with an empty number slot.
	want := fingerprint.Compute(fingerprint.CanonicalInput{
		StudentName: "Ahmad Fikri",
		IssueDate:   "2026-01-14",
		Narration:   "Hafs an Asim",
		IssuePlace:  "Jakarta",
	}, testSecret)
	if cert.Fingerprint != want {
		t.Fatalf("unexpected fingerprint")
	}
	if cert.CanonicalNumber != "" {
		t.Fatalf("derived scheme must store an empty canonical number, got %q", cert.CanonicalNumber)
	}
	if cert.Status != models.StatusActive {
		t.Fatalf("new certificates must start active, got %q", cert.Status)
	}
}

func TestIssueManualNumberWins(t *testing.T) {
	store := newFakeCertStore()
	svc := newTestService(store)

	draft := validDraft()
	draft.ManualNumber = "  ijz-2026-007 "
	draft.Scheme = models.SchemeSequential

	cert, err := svc.Issue(context.Background(), draft)
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}
	if cert.CertificateNumber != "IJZ-2026-007" {
		t.Fatalf("expected normalized manual number, got %q", cert.CertificateNumber)
	}
	if cert.CanonicalNumber != "IJZ-2026-007" {
		t.Fatalf("manual number must join the canonical identity, got %q", cert.CanonicalNumber)
	}

	want := fingerprint.Compute(fingerprint.CanonicalInput{
		Number:      "IJZ-2026-007",
		StudentName: "Ahmad Fikri",
		IssueDate:   "2026-01-14",
		Narration:   "Hafs an Asim",
		IssuePlace:  "Jakarta",
	}, testSecret)
	if cert.Fingerprint != want {
		t.Fatalf("manual number must be fingerprinted into the identity")
	}
}

func TestIssueManualDuplicate(t *testing.T) {
	store := newFakeCertStore("IJZ-2026-007")
	svc := newTestService(store)

	draft := validDraft()
	draft.ManualNumber = "IJZ-2026-007"

	_, err := svc.Issue(context.Background(), draft)
	if !errors.Is(err, ErrNumberTaken) {
		t.Fatalf("expected ErrNumberTaken, got %v", err)
	}
	if store.createCalls != 1 {
		t.Fatalf("manual duplicates must not retry, got %d attempts", store.createCalls)
	}
}

func TestIssueSequential(t *testing.T) {
	store := newFakeCertStore("GH-00000001", "GH-00000003")
	svc := newTestService(store)

	draft := validDraft()
	draft.Scheme = models.SchemeSequential

	cert, err := svc.Issue(context.Background(), draft)
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}
	if cert.CertificateNumber != "GH-00000004" {
		t.Fatalf("expected GH-00000004 after the existing max, got %q", cert.CertificateNumber)
	}
	if cert.CanonicalNumber != "GH-00000004" {
		t.Fatalf("sequential numbers join the canonical identity, got %q", cert.CanonicalNumber)
	}
}

func TestIssueSequentialRetriesLostRace(t *testing.T) {
	store := newFakeCertStore()
	store.rejectFirst = 2
	svc := newTestService(store)

	draft := validDraft()
	draft.Scheme = models.SchemeSequential

	cert, err := svc.Issue(context.Background(), draft)
	if err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
	if store.createCalls != 3 {
		t.Fatalf("expected 3 create attempts, got %d", store.createCalls)
	}
	if cert.CertificateNumber == "" {
		t.Fatalf("expected an allocated number")
	}
}

func TestIssueSequentialExhaustsRetries(t *testing.T) {
	store := newFakeCertStore()
	store.rejectFirst = maxAllocationRetries
	svc := newTestService(store)

	draft := validDraft()
	draft.Scheme = models.SchemeSequential

	_, err := svc.Issue(context.Background(), draft)
	if !errors.Is(err, ErrNumberTaken) {
		t.Fatalf("expected exhaustion to surface ErrNumberTaken, got %v", err)
	}
	if store.createCalls != maxAllocationRetries {
		t.Fatalf("expected %d attempts, got %d", maxAllocationRetries, store.createCalls)
	}
}

func TestIssueDerivedCollisionNoRetry(t *testing.T) {
	store := newFakeCertStore()
	svc := newTestService(store)

	draft := validDraft()
	first, err := svc.Issue(context.Background(), draft)
	if err != nil {
		t.Fatalf("first issue error: %v", err)
	}

	// Same identity fields derive the same serial; the uniqueness
	// constraint reports it with no automatic fallback.
	_, err = svc.Issue(context.Background(), validDraft())
	if !errors.Is(err, ErrNumberTaken) {
		t.Fatalf("expected ErrNumberTaken for a derived collision, got %v", err)
	}
	if len(store.certs) != 1 {
		t.Fatalf("collision must not persist a second record")
	}
	if store.certs[first.CertificateNumber] == nil {
		t.Fatalf("original record must survive the collision")
	}
}

func TestIssueInvalidDraft(t *testing.T) {
	svc := newTestService(newFakeCertStore())

	draft := validDraft()
	draft.StudentName = ""

	_, err := svc.Issue(context.Background(), draft)
	if !errors.Is(err, ErrInvalidDraft) {
		t.Fatalf("expected ErrInvalidDraft, got %v", err)
	}
}

func TestIssuePatternDefaults(t *testing.T) {
	svc := newTestService(newFakeCertStore())

	cert, err := svc.Issue(context.Background(), validDraft())
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}

	if cert.Metadata[models.MetaPatternFamily] != "diamonds" {
		t.Fatalf("expected issuer default family, got %q", cert.Metadata[models.MetaPatternFamily])
	}
	if cert.Metadata[models.MetaPatternColor] != "#1a5632" {
		t.Fatalf("expected issuer default color, got %q", cert.Metadata[models.MetaPatternColor])
	}
	if cert.Metadata[models.MetaPatternOpacity] != "0.5" {
		t.Fatalf("expected issuer default opacity, got %q", cert.Metadata[models.MetaPatternOpacity])
	}
}

func TestIssuePatternOverride(t *testing.T) {
	svc := newTestService(newFakeCertStore())

	opacity := 0.25
	draft := validDraft()
	draft.PatternFamily = "waves"
	draft.PatternColor = "#8b6914"
	draft.PatternOpacity = &opacity

	cert, err := svc.Issue(context.Background(), draft)
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}

	if cert.Metadata[models.MetaPatternFamily] != "waves" {
		t.Fatalf("expected override family, got %q", cert.Metadata[models.MetaPatternFamily])
	}
	if cert.Metadata[models.MetaPatternOpacity] != "0.25" {
		t.Fatalf("expected override opacity, got %q", cert.Metadata[models.MetaPatternOpacity])
	}
}

func TestIssuePartialPatternOverrideRejected(t *testing.T) {
	svc := newTestService(newFakeCertStore())

	draft := validDraft()
	draft.PatternFamily = "waves"

	_, err := svc.Issue(context.Background(), draft)
	if !errors.Is(err, ErrInvalidDraft) {
		t.Fatalf("partial pattern override must fail validation, got %v", err)
	}
}

func TestIssueDraftMetadataPreserved(t *testing.T) {
	svc := newTestService(newFakeCertStore())

	draft := validDraft()
	draft.Metadata = map[string]string{
		"madrasah":             "Darul Quran",
		models.MetaStudentName: "Spoofed Name",
	}

	cert, err := svc.Issue(context.Background(), draft)
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}
	if cert.Metadata["madrasah"] != "Darul Quran" {
		t.Fatalf("custom metadata must pass through")
	}
	if cert.Metadata[models.MetaStudentName] != "Ahmad Fikri" {
		t.Fatalf("identity fields must win over draft metadata, got %q", cert.Metadata[models.MetaStudentName])
	}
}
