package database

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates the voters and votes tables for the given driver.
// Safe to call multiple times.
func CreateSchema(db *sql.DB, driver string) error {
	schema := sqliteSchema
	if driver == DriverPostgres {
		schema = postgresSchema
	}

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS voters (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    email TEXT NOT NULL,
    mobile TEXT NOT NULL,
    age INTEGER,
    aadhaar TEXT NOT NULL UNIQUE,
    voter_id_number TEXT,
    voter_id_filename TEXT,
    aadhaar_filename TEXT,
    photo_filename TEXT,
    country TEXT,
    state TEXT,
    constituency TEXT,
    otp TEXT,
    face_encoding TEXT,
    approved BOOLEAN NOT NULL DEFAULT FALSE,
    voted BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_voters_email ON voters(email);
CREATE INDEX IF NOT EXISTS idx_voters_approved ON voters(approved);

CREATE TABLE IF NOT EXISTS votes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    voter_id INTEGER NOT NULL UNIQUE REFERENCES voters(id),
    candidate TEXT NOT NULL,
    cast_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_votes_candidate ON votes(candidate);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS voters (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(150) NOT NULL,
    email VARCHAR(150) NOT NULL,
    mobile VARCHAR(10) NOT NULL,
    age INTEGER,
    aadhaar VARCHAR(12) NOT NULL UNIQUE,
    voter_id_number VARCHAR(64),
    voter_id_filename VARCHAR(255),
    aadhaar_filename VARCHAR(255),
    photo_filename VARCHAR(255),
    country VARCHAR(50),
    state VARCHAR(50),
    constituency VARCHAR(100),
    otp VARCHAR(12),
    face_encoding TEXT,
    approved BOOLEAN NOT NULL DEFAULT FALSE,
    voted BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_voters_email ON voters(email);
CREATE INDEX IF NOT EXISTS idx_voters_approved ON voters(approved);

CREATE TABLE IF NOT EXISTS votes (
    id BIGSERIAL PRIMARY KEY,
    voter_id BIGINT NOT NULL UNIQUE REFERENCES voters(id),
    candidate VARCHAR(100) NOT NULL,
    cast_at TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_votes_candidate ON votes(candidate);
`
