package repository

import (
	"context"

	"github.com/akagup/go-emergency-response/internal/models"
)

// Filter narrows list queries. Zero values mean "no constraint".
type Filter struct {
	Limit int
	Type  string // emergency type label
}

// Counts holds per-table record totals for the stats endpoint.
type Counts struct {
	Emergencies int64
	Resources   int64
	Volunteers  int64
}

type EmergencyRepository interface {
	AddEmergency(ctx context.Context, e *models.Emergency) (int64, error)
	GetEmergency(ctx context.Context, id int64) (*models.Emergency, error)
	ListEmergencies(ctx context.Context, opts Filter) ([]models.Emergency, error)
}

type ResourceRepository interface {
	AddResource(ctx context.Context, r *models.Resource) (int64, error)
	ListResources(ctx context.Context, opts Filter) ([]models.Resource, error)
	ResourcesByOwner(ctx context.Context, ownerID int64) ([]models.Resource, error)
}

type VolunteerRepository interface {
	RegisterVolunteer(ctx context.Context, v *models.Volunteer) (int64, error)
	GetVolunteer(ctx context.Context, id int64) (*models.Volunteer, error)
	VolunteerByEmail(ctx context.Context, email string) (*models.Volunteer, error)
	ListVolunteers(ctx context.Context) ([]models.Volunteer, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

// Store is the full persistence boundary consumed by the pipeline and API.
type Store interface {
	EmergencyRepository
	ResourceRepository
	VolunteerRepository
	Counts(ctx context.Context) (Counts, error)
}
