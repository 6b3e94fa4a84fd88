package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sanadhub/ijazahserver/internal/models"
)

// ProfileRepository handles profile record data access
type ProfileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create creates a new profile record
func (r *ProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	query := `
		INSERT INTO profiles (id, full_name, teacher_name)
		VALUES (?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		profile.ID,
		profile.FullName,
		nullString(profile.TeacherName),
	)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}

	return nil
}

// GetByID retrieves a profile by ID. Returns ErrNotFound when no
// record matches.
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	query := `
		SELECT id, full_name, teacher_name, created_at
		FROM profiles
		WHERE id = ?
	`

	profile := &models.Profile{}
	var teacherName sql.NullString

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&profile.ID,
		&profile.FullName,
		&teacherName,
		&profile.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	if teacherName.Valid {
		profile.TeacherName = teacherName.String
	}

	return profile, nil
}

// List lists all profiles
func (r *ProfileRepository) List(ctx context.Context) ([]*models.Profile, error) {
	query := `
		SELECT id, full_name, teacher_name, created_at
		FROM profiles
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*models.Profile

	for rows.Next() {
		profile := &models.Profile{}
		var teacherName sql.NullString

		err := rows.Scan(
			&profile.ID,
			&profile.FullName,
			&teacherName,
			&profile.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}

		if teacherName.Valid {
			profile.TeacherName = teacherName.String
		}

		profiles = append(profiles, profile)
	}

	return profiles, rows.Err()
}
