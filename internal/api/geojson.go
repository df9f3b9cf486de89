package api

import (
	"github.com/akagup/go-emergency-response/internal/models"
)

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

func newFeatureCollection(features []Feature) FeatureCollection {
	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}

func pointFeature(c models.Coordinate, props map[string]any) Feature {
	return Feature{
		Type: "Feature",
		Geometry: Geometry{
			Type:        "Point",
			Coordinates: []float64{c.Longitude, c.Latitude},
		},
		Properties: props,
	}
}

func emergencyFeatures(matches []models.ProximityMatch, byID map[int64]models.Emergency) []Feature {
	features := make([]Feature, 0, len(matches))
	for _, m := range matches {
		e := byID[m.ID]
		features = append(features, pointFeature(m.Coordinate, map[string]any{
			"id":          e.ID,
			"location":    e.LocationLabel,
			"type":        e.Type,
			"confidence":  e.Confidence,
			"created_at":  e.CreatedAt,
			"distance_km": m.DistanceKM,
		}))
	}
	return features
}

func resourceFeatures(matches []models.ProximityMatch, byID map[int64]models.Resource) []Feature {
	features := make([]Feature, 0, len(matches))
	for _, m := range matches {
		r := byID[m.ID]
		features = append(features, pointFeature(m.Coordinate, map[string]any{
			"id":          r.ID,
			"amenity":     r.Amenity,
			"name":        r.Name,
			"distance_km": m.DistanceKM,
		}))
	}
	return features
}

func volunteerFeatures(matches []models.ProximityMatch, byID map[int64]models.Volunteer) []Feature {
	features := make([]Feature, 0, len(matches))
	for _, m := range matches {
		v := byID[m.ID]
		features = append(features, pointFeature(m.Coordinate, map[string]any{
			"id":          v.ID,
			"name":        v.Name,
			"speciality":  v.Speciality,
			"phone":       v.Phone,
			"distance_km": m.DistanceKM,
		}))
	}
	return features
}
