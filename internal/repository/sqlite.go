package repository

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	// Concurrent registrations share one connection so the UNIQUE check and
	// insert observe a single serialized write path.
	db.SetMaxOpenConns(1)

	s := &SQLiteDB{
		db: db,
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating to database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS emergencies (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			location TEXT NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			narrative TEXT NOT NULL,
			type TEXT NOT NULL,
			confidence REAL NOT NULL,
			entities TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS resources (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			amenity TEXT NOT NULL,
			name TEXT NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			created_by INTEGER NOT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (created_by) REFERENCES volunteers(id)
		);

		CREATE TABLE IF NOT EXISTS volunteers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			credential_hash TEXT NOT NULL,
			location TEXT NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			speciality TEXT NOT NULL,
			phone TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_emergencies_type ON emergencies(type);
		CREATE INDEX IF NOT EXISTS idx_resources_created_by ON resources(created_by);
  	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}
