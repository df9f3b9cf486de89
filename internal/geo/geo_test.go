package geo

import (
	"math"
	"testing"

	"github.com/akagup/go-emergency-response/internal/models"
)

func TestHaversine_Identity(t *testing.T) {
	points := []models.Coordinate{
		{Latitude: 0, Longitude: 0},
		{Latitude: 28.7041, Longitude: 77.1025},
		{Latitude: -33.8688, Longitude: 151.2093},
		{Latitude: 90, Longitude: 0},
	}
	for _, p := range points {
		if d := Haversine(p, p); d != 0 {
			t.Errorf("Haversine(%v, %v) = %v, want 0", p, p, d)
		}
	}
}

func TestHaversine_Symmetry(t *testing.T) {
	a := models.Coordinate{Latitude: 28.7041, Longitude: 77.1025}
	b := models.Coordinate{Latitude: 19.0760, Longitude: 72.8777}

	ab := Haversine(a, b)
	ba := Haversine(b, a)
	if math.Abs(ab-ba) > 1e-9 {
		t.Errorf("expected symmetry, got %v vs %v", ab, ba)
	}
	if ab <= 0 {
		t.Errorf("expected positive distance, got %v", ab)
	}
}

func TestHaversine_KnownDistance(t *testing.T) {
	// Delhi: origin to a point ~1 km northeast.
	origin := models.Coordinate{Latitude: 28.7041, Longitude: 77.1025}
	near := models.Coordinate{Latitude: 28.7100, Longitude: 77.1100}

	d := Haversine(origin, near)
	if math.Abs(d-1.0) > 0.1 {
		t.Errorf("expected ~1.0 km, got %v", d)
	}
}

func TestNearest_RadiusAndLimit(t *testing.T) {
	origin := models.Coordinate{Latitude: 28.7041, Longitude: 77.1025}
	candidates := []Candidate{
		{ID: 1, Coordinate: models.Coordinate{Latitude: 28.7100, Longitude: 77.1100}}, // ~1 km
		{ID: 2, Coordinate: models.Coordinate{Latitude: 28.7041, Longitude: 77.1025}}, // 0 km
		{ID: 3, Coordinate: models.Coordinate{Latitude: 19.0760, Longitude: 72.8777}}, // ~1100 km
	}

	matches := Nearest(origin, candidates, 10, 5)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches within 10 km, got %d", len(matches))
	}
	if matches[0].ID != 2 || matches[1].ID != 1 {
		t.Errorf("expected order [2 1], got [%d %d]", matches[0].ID, matches[1].ID)
	}
	for _, m := range matches {
		if m.DistanceKM > 10 {
			t.Errorf("match %d outside radius: %v km", m.ID, m.DistanceKM)
		}
	}
}

func TestNearest_OrderingNonDecreasing(t *testing.T) {
	origin := models.Coordinate{Latitude: 0, Longitude: 0}
	candidates := []Candidate{
		{ID: 1, Coordinate: models.Coordinate{Latitude: 0, Longitude: 3}},
		{ID: 2, Coordinate: models.Coordinate{Latitude: 0, Longitude: 1}},
		{ID: 3, Coordinate: models.Coordinate{Latitude: 0, Longitude: 2}},
		{ID: 4, Coordinate: models.Coordinate{Latitude: 0, Longitude: 0.5}},
	}

	matches := Nearest(origin, candidates, 1000, 10)
	for i := 1; i < len(matches); i++ {
		if matches[i].DistanceKM < matches[i-1].DistanceKM {
			t.Errorf("ordering not non-decreasing at %d: %v < %v", i, matches[i].DistanceKM, matches[i-1].DistanceKM)
		}
	}
}

func TestNearest_TiesKeepInsertionOrder(t *testing.T) {
	origin := models.Coordinate{Latitude: 0, Longitude: 0}
	// Equidistant points east and west.
	candidates := []Candidate{
		{ID: 7, Coordinate: models.Coordinate{Latitude: 0, Longitude: 1}},
		{ID: 8, Coordinate: models.Coordinate{Latitude: 0, Longitude: -1}},
	}

	matches := Nearest(origin, candidates, 500, 10)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].ID != 7 || matches[1].ID != 8 {
		t.Errorf("expected stable tie order [7 8], got [%d %d]", matches[0].ID, matches[1].ID)
	}
}

func TestNearest_Truncation(t *testing.T) {
	origin := models.Coordinate{Latitude: 0, Longitude: 0}
	var candidates []Candidate
	for i := 0; i < 10; i++ {
		candidates = append(candidates, Candidate{
			ID:         int64(i),
			Coordinate: models.Coordinate{Latitude: 0, Longitude: float64(i) * 0.01},
		})
	}

	matches := Nearest(origin, candidates, 1000, 3)
	if len(matches) != 3 {
		t.Errorf("expected truncation to 3, got %d", len(matches))
	}
}

func TestNearest_DegenerateInputs(t *testing.T) {
	origin := models.Coordinate{Latitude: 0, Longitude: 0}
	candidates := []Candidate{{ID: 1, Coordinate: origin}}

	if got := Nearest(origin, candidates, 0, 5); len(got) != 0 {
		t.Errorf("radius 0: expected empty result, got %d", len(got))
	}
	if got := Nearest(origin, candidates, -1, 5); len(got) != 0 {
		t.Errorf("negative radius: expected empty result, got %d", len(got))
	}
	if got := Nearest(origin, nil, 10, 5); len(got) != 0 {
		t.Errorf("no candidates: expected empty result, got %d", len(got))
	}
}

func TestNearest_InclusiveBoundary(t *testing.T) {
	origin := models.Coordinate{Latitude: 0, Longitude: 0}
	target := models.Coordinate{Latitude: 0, Longitude: 1}
	exact := Haversine(origin, target)

	matches := Nearest(origin, []Candidate{{ID: 1, Coordinate: target}}, exact, 5)
	if len(matches) != 1 {
		t.Errorf("boundary distance should be included, got %d matches", len(matches))
	}
}
