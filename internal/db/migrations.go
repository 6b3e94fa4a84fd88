package db

import (
	"database/sql"
	"fmt"
)

// RunMigrations executes all database migrations
func RunMigrations(db *DB) error {
	// Check if schema_version table exists
	var tableExists bool
	err := db.QueryRow(`
		SELECT COUNT(*) > 0
		FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("failed to check schema_version table: %w", err)
	}

	if !tableExists {
		// First time initialization
		if err := initializeSchema(db); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
		return nil
	}

	// Get current version
	var currentVersion int
	err = db.QueryRow(`
		SELECT version FROM schema_version
		ORDER BY applied_at DESC LIMIT 1
	`).Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	// Apply migrations if needed
	// Currently only version 1 exists
	if currentVersion < 1 {
		return fmt.Errorf("invalid schema version: %d", currentVersion)
	}

	return nil
}

// initializeSchema creates all tables for a new database
func initializeSchema(db *DB) error {
	tx, err := db.BeginTx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Schema version table
	if err := execSQL(tx, schemaVersionTable); err != nil {
		return err
	}

	// Profiles table
	if err := execSQL(tx, profilesTable); err != nil {
		return err
	}
	if err := execSQL(tx, profilesIndexes); err != nil {
		return err
	}

	// Certificates table
	if err := execSQL(tx, certificatesTable); err != nil {
		return err
	}
	if err := execSQL(tx, certificatesIndexes); err != nil {
		return err
	}

	// Verification attempts table
	if err := execSQL(tx, attemptsTable); err != nil {
		return err
	}
	if err := execSQL(tx, attemptsIndexes); err != nil {
		return err
	}

	// Insert initial schema version
	if err := execSQL(tx, `INSERT INTO schema_version (version) VALUES (1)`); err != nil {
		return err
	}

	return tx.Commit()
}

// execSQL executes a SQL statement
func execSQL(tx *sql.Tx, query string) error {
	_, err := tx.Exec(query)
	return err
}

// Schema definitions
const (
	schemaVersionTable = `
CREATE TABLE schema_version (
    version INTEGER NOT NULL,
    applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

	profilesTable = `
CREATE TABLE profiles (
    id           TEXT PRIMARY KEY,
    full_name    TEXT NOT NULL,
    teacher_name TEXT,
    created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

	profilesIndexes = `
CREATE INDEX idx_profiles_full_name ON profiles(full_name)`

	certificatesTable = `
CREATE TABLE certificates (
    id                 TEXT PRIMARY KEY,
    certificate_number TEXT NOT NULL UNIQUE,
    issue_date         TEXT NOT NULL,
    ijazah_type        TEXT NOT NULL,
    recitation         TEXT NOT NULL,
    fingerprint        TEXT NOT NULL,
    canonical_number   TEXT NOT NULL DEFAULT '',
    metadata           TEXT NOT NULL DEFAULT '{}',
    profile_id         TEXT,
    status             TEXT NOT NULL DEFAULT 'active',
    verification_count INTEGER NOT NULL DEFAULT 0,
    last_verified_at   DATETIME,
    created_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,

    FOREIGN KEY (profile_id) REFERENCES profiles(id) ON DELETE SET NULL
)`

	certificatesIndexes = `
CREATE INDEX idx_certs_number ON certificates(certificate_number);
CREATE INDEX idx_certs_profile_id ON certificates(profile_id);
CREATE INDEX idx_certs_issue_date ON certificates(issue_date);
CREATE INDEX idx_certs_status ON certificates(status)`

	attemptsTable = `
CREATE TABLE verification_attempts (
    id                TEXT PRIMARY KEY,
    timestamp         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    certificate_id    TEXT,
    method            TEXT NOT NULL,
    success           INTEGER NOT NULL,
    failure_reason    TEXT,
    actor_fingerprint TEXT,

    FOREIGN KEY (certificate_id) REFERENCES certificates(id)
)`

	attemptsIndexes = `
CREATE INDEX idx_attempts_timestamp ON verification_attempts(timestamp);
CREATE INDEX idx_attempts_certificate_id ON verification_attempts(certificate_id);
CREATE INDEX idx_attempts_method ON verification_attempts(method);
CREATE INDEX idx_attempts_success ON verification_attempts(success)`
)
