package models

import "time"

// Coordinate is an immutable latitude/longitude pair in degrees.
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// Valid reports whether the coordinate lies in the geographically valid range.
func (c Coordinate) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// Emergency is one persisted emergency report. Records are append-only: once
// written they are never mutated or deleted.
type Emergency struct {
	ID            int64
	LocationLabel string
	Coordinate    Coordinate
	Narrative     string
	Type          string  // classified emergency type, "unknown" when classification degraded
	Confidence    float64 // classification similarity in [0,1]
	Entities      EntityBundle
	CreatedAt     time.Time
}

// Resource is a volunteer-registered amenity (shelter, hospital, supply point).
type Resource struct {
	ID         int64
	Amenity    string
	Name       string
	Coordinate Coordinate
	OwnerID    int64 // volunteer that registered it; lookup only, no cascade
	CreatedAt  time.Time
}

// Volunteer is a registered responder. Email is unique across the store.
type Volunteer struct {
	ID             int64
	Name           string
	Email          string
	CredentialHash string
	LocationLabel  string
	Coordinate     Coordinate
	Speciality     string
	Phone          string
	CreatedAt      time.Time
}
