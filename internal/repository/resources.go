package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/akagup/go-emergency-response/internal/models"
)

func (s *SQLiteDB) AddResource(ctx context.Context, r *models.Resource) (int64, error) {
	if !r.Coordinate.Valid() {
		return 0, fmt.Errorf("resource %q: %w", r.Name, models.ErrInvalidCoordinate)
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO resources (amenity, name, latitude, longitude, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.Amenity, r.Name, r.Coordinate.Latitude, r.Coordinate.Longitude, r.OwnerID, r.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("error inserting resource: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("error reading resource id: %w", err)
	}
	r.ID = id
	return id, nil
}

func (s *SQLiteDB) ListResources(ctx context.Context, opts Filter) ([]models.Resource, error) {
	query := `SELECT id, amenity, name, latitude, longitude, created_by, created_at
		 FROM resources ORDER BY id`
	args := []any{}
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing resources: %w", err)
	}
	defer rows.Close()

	var resources []models.Resource
	for rows.Next() {
		var r models.Resource
		if err := rows.Scan(&r.ID, &r.Amenity, &r.Name,
			&r.Coordinate.Latitude, &r.Coordinate.Longitude, &r.OwnerID, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning resource: %w", err)
		}
		resources = append(resources, r)
	}
	return resources, rows.Err()
}

func (s *SQLiteDB) ResourcesByOwner(ctx context.Context, ownerID int64) ([]models.Resource, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, amenity, name, latitude, longitude, created_by, created_at
		 FROM resources WHERE created_by = ? ORDER BY id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error listing resources by owner: %w", err)
	}
	defer rows.Close()

	var resources []models.Resource
	for rows.Next() {
		var r models.Resource
		if err := rows.Scan(&r.ID, &r.Amenity, &r.Name,
			&r.Coordinate.Latitude, &r.Coordinate.Longitude, &r.OwnerID, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning resource: %w", err)
		}
		resources = append(resources, r)
	}
	return resources, rows.Err()
}
