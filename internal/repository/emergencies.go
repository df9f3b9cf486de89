package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/akagup/go-emergency-response/internal/models"
)

func (s *SQLiteDB) AddEmergency(ctx context.Context, e *models.Emergency) (int64, error) {
	if !e.Coordinate.Valid() {
		return 0, fmt.Errorf("emergency at %q: %w", e.LocationLabel, models.ErrInvalidCoordinate)
	}
	if e.Narrative == "" {
		return 0, fmt.Errorf("emergency at %q has no narrative: %w", e.LocationLabel, models.ErrInsufficientInput)
	}

	entities, err := json.Marshal(e.Entities)
	if err != nil {
		return 0, fmt.Errorf("error encoding entities: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO emergencies (location, latitude, longitude, narrative, type, confidence, entities, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.LocationLabel, e.Coordinate.Latitude, e.Coordinate.Longitude,
		e.Narrative, e.Type, e.Confidence, string(entities), e.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("error inserting emergency: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("error reading emergency id: %w", err)
	}
	e.ID = id
	return id, nil
}

func (s *SQLiteDB) GetEmergency(ctx context.Context, id int64) (*models.Emergency, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, location, latitude, longitude, narrative, type, confidence, entities, created_at
		 FROM emergencies WHERE id = ?`, id)

	e, err := scanEmergency(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("emergency %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error querying emergency: %w", err)
	}
	return e, nil
}

func (s *SQLiteDB) ListEmergencies(ctx context.Context, opts Filter) ([]models.Emergency, error) {
	query := `SELECT id, location, latitude, longitude, narrative, type, confidence, entities, created_at
		 FROM emergencies`
	args := []any{}

	if opts.Type != "" {
		query += " WHERE type = ?"
		args = append(args, opts.Type)
	}
	query += " ORDER BY id"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing emergencies: %w", err)
	}
	defer rows.Close()

	var emergencies []models.Emergency
	for rows.Next() {
		e, err := scanEmergency(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning emergency: %w", err)
		}
		emergencies = append(emergencies, *e)
	}
	return emergencies, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmergency(row rowScanner) (*models.Emergency, error) {
	var (
		e        models.Emergency
		entities string
	)
	err := row.Scan(&e.ID, &e.LocationLabel, &e.Coordinate.Latitude, &e.Coordinate.Longitude,
		&e.Narrative, &e.Type, &e.Confidence, &entities, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(entities), &e.Entities); err != nil {
		return nil, fmt.Errorf("error decoding entities: %w", err)
	}
	return &e, nil
}

func (s *SQLiteDB) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	tables := []struct {
		name string
		dst  *int64
	}{
		{"emergencies", &c.Emergencies},
		{"resources", &c.Resources},
		{"volunteers", &c.Volunteers},
	}
	for _, t := range tables {
		row := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+t.name)
		if err := row.Scan(t.dst); err != nil {
			return Counts{}, fmt.Errorf("error counting %s: %w", t.name, err)
		}
	}
	return c, nil
}
