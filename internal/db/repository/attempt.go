package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sanadhub/ijazahserver/internal/models"
)

// AttemptRepository handles verification attempt data access. The
// attempts table is append-only: there is no update or delete path.
type AttemptRepository struct {
	db *sql.DB
}

// NewAttemptRepository creates a new attempt repository
func NewAttemptRepository(db *sql.DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

// Create appends a new verification attempt
func (r *AttemptRepository) Create(ctx context.Context, attempt *models.VerificationAttempt) error {
	query := `
		INSERT INTO verification_attempts (
			id, certificate_id, method, success, failure_reason, actor_fingerprint
		)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	success := 0
	if attempt.Success {
		success = 1
	}

	_, err := r.db.ExecContext(ctx, query,
		attempt.ID,
		nullString(attempt.CertificateID),
		attempt.Method,
		success,
		nullString(attempt.FailureReason),
		nullString(attempt.ActorFingerprint),
	)
	if err != nil {
		return fmt.Errorf("failed to create verification attempt: %w", err)
	}

	attempt.Timestamp = time.Now()

	return nil
}

// List lists verification attempts with optional filters, newest first
func (r *AttemptRepository) List(ctx context.Context, method string, success *bool, limit int) ([]*models.VerificationAttempt, error) {
	query := `
		SELECT id, timestamp, certificate_id, method, success, failure_reason, actor_fingerprint
		FROM verification_attempts
		WHERE 1=1
	`
	args := []interface{}{}

	if method != "" {
		query += " AND method = ?"
		args = append(args, method)
	}

	if success != nil {
		s := 0
		if *success {
			s = 1
		}
		query += " AND success = ?"
		args = append(args, s)
	}

	query += " ORDER BY timestamp DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list verification attempts: %w", err)
	}
	defer rows.Close()

	var attempts []*models.VerificationAttempt

	for rows.Next() {
		attempt := &models.VerificationAttempt{}
		var successInt int
		var certificateID, failureReason, actorFP sql.NullString

		err := rows.Scan(
			&attempt.ID,
			&attempt.Timestamp,
			&certificateID,
			&attempt.Method,
			&successInt,
			&failureReason,
			&actorFP,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan verification attempt: %w", err)
		}

		attempt.Success = successInt == 1
		if certificateID.Valid {
			attempt.CertificateID = certificateID.String
		}
		if failureReason.Valid {
			attempt.FailureReason = failureReason.String
		}
		if actorFP.Valid {
			attempt.ActorFingerprint = actorFP.String
		}

		attempts = append(attempts, attempt)
	}

	return attempts, rows.Err()
}

// CountByCertificate counts attempts against one certificate since the
// given time
func (r *AttemptRepository) CountByCertificate(ctx context.Context, certificateID string, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM verification_attempts
		WHERE certificate_id = ? AND timestamp >= ?
	`

	var count int
	err := r.db.QueryRowContext(ctx, query, certificateID, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count verification attempts: %w", err)
	}

	return count, nil
}
