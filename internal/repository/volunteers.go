package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/akagup/go-emergency-response/internal/models"
)

// RegisterVolunteer inserts a new volunteer. Email uniqueness rides on the
// UNIQUE column rather than a separate SELECT, so two concurrent registrations
// for the same email cannot both pass a check-then-insert window: the loser
// observes the constraint violation, mapped to ErrDuplicateIdentity, and the
// table is left untouched.
func (s *SQLiteDB) RegisterVolunteer(ctx context.Context, v *models.Volunteer) (int64, error) {
	if !v.Coordinate.Valid() {
		return 0, fmt.Errorf("volunteer %q: %w", v.Email, models.ErrInvalidCoordinate)
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO volunteers (name, email, credential_hash, location, latitude, longitude, speciality, phone, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.Name, v.Email, v.CredentialHash, v.LocationLabel,
		v.Coordinate.Latitude, v.Coordinate.Longitude, v.Speciality, v.Phone, v.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("email %q already registered: %w", v.Email, models.ErrDuplicateIdentity)
		}
		return 0, fmt.Errorf("error inserting volunteer: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("error reading volunteer id: %w", err)
	}
	v.ID = id
	return id, nil
}

func (s *SQLiteDB) GetVolunteer(ctx context.Context, id int64) (*models.Volunteer, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, credential_hash, location, latitude, longitude, speciality, phone, created_at
		 FROM volunteers WHERE id = ?`, id)

	v, err := scanVolunteer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("volunteer %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error querying volunteer: %w", err)
	}
	return v, nil
}

func (s *SQLiteDB) VolunteerByEmail(ctx context.Context, email string) (*models.Volunteer, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, credential_hash, location, latitude, longitude, speciality, phone, created_at
		 FROM volunteers WHERE email = ?`, email)

	v, err := scanVolunteer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("volunteer %q: %w", email, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error querying volunteer: %w", err)
	}
	return v, nil
}

func (s *SQLiteDB) ListVolunteers(ctx context.Context) ([]models.Volunteer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, credential_hash, location, latitude, longitude, speciality, phone, created_at
		 FROM volunteers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("error listing volunteers: %w", err)
	}
	defer rows.Close()

	var volunteers []models.Volunteer
	for rows.Next() {
		v, err := scanVolunteer(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning volunteer: %w", err)
		}
		volunteers = append(volunteers, *v)
	}
	return volunteers, rows.Err()
}

func (s *SQLiteDB) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int
	row := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM volunteers WHERE email = ?", email)
	if err := row.Scan(&n); err != nil {
		return false, fmt.Errorf("error checking email: %w", err)
	}
	return n > 0, nil
}

func scanVolunteer(row rowScanner) (*models.Volunteer, error) {
	var v models.Volunteer
	err := row.Scan(&v.ID, &v.Name, &v.Email, &v.CredentialHash, &v.LocationLabel,
		&v.Coordinate.Latitude, &v.Coordinate.Longitude, &v.Speciality, &v.Phone, &v.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
