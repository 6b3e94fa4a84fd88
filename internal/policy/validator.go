package policy

import (
	"fmt"
	"strings"
	"time"

	"github.com/sanadhub/ijazahserver/internal/config"
	"github.com/sanadhub/ijazahserver/internal/models"
	"github.com/sanadhub/ijazahserver/internal/pattern"
)

// Validator validates issuance drafts against policy
type Validator struct {
	config *config.Config
}

// NewValidator creates a new policy validator
func NewValidator(cfg *config.Config) *Validator {
	return &Validator{config: cfg}
}

// ValidateDraft validates a certificate draft before issuance
func (v *Validator) ValidateDraft(draft *models.CertificateDraft) error {
	if strings.TrimSpace(draft.StudentName) == "" {
		return fmt.Errorf("student name is required")
	}
	if strings.TrimSpace(draft.IssuePlace) == "" {
		return fmt.Errorf("issue place is required")
	}
	if strings.TrimSpace(draft.IjazahType) == "" {
		return fmt.Errorf("ijazah type is required")
	}
	if strings.TrimSpace(draft.Recitation) == "" {
		return fmt.Errorf("recitation is required")
	}

	issueDate, err := time.Parse("2006-01-02", draft.IssueDate)
	if err != nil {
		return fmt.Errorf("issue date must be YYYY-MM-DD: %w", err)
	}
	if issueDate.After(time.Now().AddDate(0, 0, 1)) {
		return fmt.Errorf("issue date must not be in the future")
	}

	if draft.Scheme != "" && draft.Scheme != models.SchemeDerived && draft.Scheme != models.SchemeSequential {
		return fmt.Errorf("scheme must be %q or %q", models.SchemeDerived, models.SchemeSequential)
	}

	if err := v.validatePatternOverride(draft); err != nil {
		return err
	}

	return nil
}

// validatePatternOverride checks the optional watermark override. The
// override is all-or-nothing: a partial one would silently mix issuer
// defaults into the stored configuration.
func (v *Validator) validatePatternOverride(draft *models.CertificateDraft) error {
	hasAny := draft.PatternFamily != "" || draft.PatternColor != "" || draft.PatternOpacity != nil
	if !hasAny {
		return nil
	}

	if draft.PatternFamily == "" || draft.PatternColor == "" || draft.PatternOpacity == nil {
		return fmt.Errorf("pattern override requires family, color and opacity together")
	}

	cfg := pattern.Config{
		Family:       draft.PatternFamily,
		PrimaryColor: draft.PatternColor,
		Opacity:      *draft.PatternOpacity,
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid pattern override: %w", err)
	}

	return nil
}
