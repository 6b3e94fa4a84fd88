package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sanadhub/ijazahserver/internal/models"
)

// CertificateRepository handles certificate record data access
type CertificateRepository struct {
	db *sql.DB
}

// NewCertificateRepository creates a new certificate repository
func NewCertificateRepository(db *sql.DB) *CertificateRepository {
	return &CertificateRepository{db: db}
}

// Create persists a new certificate record. Returns ErrDuplicateNumber
// when the certificate number is already taken.
func (r *CertificateRepository) Create(ctx context.Context, cert *models.Certificate) error {
	metadata, err := json.Marshal(cert.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	query := `
		INSERT INTO certificates (
			id, certificate_number, issue_date, ijazah_type, recitation,
			fingerprint, canonical_number, metadata, profile_id, status
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		cert.ID,
		cert.CertificateNumber,
		cert.IssueDate,
		cert.IjazahType,
		cert.Recitation,
		cert.Fingerprint,
		cert.CanonicalNumber,
		string(metadata),
		nullString(cert.ProfileID),
		cert.Status,
	)
	if err != nil {
		if translated := translateConstraint(err); translated == ErrDuplicateNumber {
			return ErrDuplicateNumber
		}
		return fmt.Errorf("failed to create certificate record: %w", err)
	}

	cert.CreatedAt = time.Now()

	return nil
}

// GetByNumber retrieves a certificate by its certificate number, exact
// match only. Returns ErrNotFound when no record matches.
func (r *CertificateRepository) GetByNumber(ctx context.Context, number string) (*models.Certificate, error) {
	query := `
		SELECT id, certificate_number, issue_date, ijazah_type, recitation,
		       fingerprint, canonical_number, metadata, profile_id, status,
		       verification_count, last_verified_at, created_at
		FROM certificates
		WHERE certificate_number = ?
	`

	return r.scanOne(r.db.QueryRowContext(ctx, query, number))
}

// GetByID retrieves a certificate by its opaque identifier
func (r *CertificateRepository) GetByID(ctx context.Context, id string) (*models.Certificate, error) {
	query := `
		SELECT id, certificate_number, issue_date, ijazah_type, recitation,
		       fingerprint, canonical_number, metadata, profile_id, status,
		       verification_count, last_verified_at, created_at
		FROM certificates
		WHERE id = ?
	`

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// ListNumbersByPrefix returns every certificate number starting with
// the given prefix. Used by the sequential allocator's scan.
func (r *CertificateRepository) ListNumbersByPrefix(ctx context.Context, prefix string) ([]string, error) {
	query := `
		SELECT certificate_number
		FROM certificates
		WHERE certificate_number LIKE ? ESCAPE '\'
	`

	rows, err := r.db.QueryContext(ctx, query, escapeLike(prefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to list certificate numbers: %w", err)
	}
	defer rows.Close()

	var numbers []string
	for rows.Next() {
		var number string
		if err := rows.Scan(&number); err != nil {
			return nil, fmt.Errorf("failed to scan certificate number: %w", err)
		}
		numbers = append(numbers, number)
	}

	return numbers, rows.Err()
}

// RecordVerification bumps the verification counter and stamps the
// last successful verification time. The increment happens inside the
// UPDATE so concurrent verifications never lose counts.
func (r *CertificateRepository) RecordVerification(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE certificates
		SET verification_count = verification_count + 1,
		    last_verified_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("failed to record verification: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// List lists certificates, newest first
func (r *CertificateRepository) List(ctx context.Context, limit int) ([]*models.Certificate, error) {
	query := `
		SELECT id, certificate_number, issue_date, ijazah_type, recitation,
		       fingerprint, canonical_number, metadata, profile_id, status,
		       verification_count, last_verified_at, created_at
		FROM certificates
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list certificates: %w", err)
	}
	defer rows.Close()

	var certs []*models.Certificate
	for rows.Next() {
		cert, err := scanCertificate(rows)
		if err != nil {
			return nil, err
		}
		certs = append(certs, cert)
	}

	return certs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *CertificateRepository) scanOne(row *sql.Row) (*models.Certificate, error) {
	cert, err := scanCertificate(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return cert, nil
}

func scanCertificate(row rowScanner) (*models.Certificate, error) {
	cert := &models.Certificate{}
	var metadata string
	var profileID sql.NullString
	var lastVerifiedAt sql.NullTime

	err := row.Scan(
		&cert.ID,
		&cert.CertificateNumber,
		&cert.IssueDate,
		&cert.IjazahType,
		&cert.Recitation,
		&cert.Fingerprint,
		&cert.CanonicalNumber,
		&metadata,
		&profileID,
		&cert.Status,
		&cert.VerificationCount,
		&lastVerifiedAt,
		&cert.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan certificate: %w", err)
	}

	if err := json.Unmarshal([]byte(metadata), &cert.Metadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	if profileID.Valid {
		cert.ProfileID = profileID.String
	}
	if lastVerifiedAt.Valid {
		t := lastVerifiedAt.Time
		cert.LastVerifiedAt = &t
	}

	return cert, nil
}

// nullString maps an empty string to SQL NULL
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// escapeLike escapes LIKE metacharacters in a literal prefix
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' || s[i] == '_' || s[i] == '\\' {
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
