// Package geo computes great-circle distances and answers nearest-within-radius
// queries over records already loaded from the store.
package geo

import (
	"math"
	"sort"

	"github.com/akagup/go-emergency-response/internal/models"
)

// earthRadiusKM is the mean Earth radius used by the haversine formula.
const earthRadiusKM = 6371

// Haversine returns the great-circle distance between a and b in kilometers.
// It is total: out-of-range coordinates still produce a well-defined result,
// validation belongs to record creation.
func Haversine(a, b models.Coordinate) float64 {
	phi1 := radians(a.Latitude)
	phi2 := radians(b.Latitude)
	dPhi := radians(b.Latitude - a.Latitude)
	dLambda := radians(b.Longitude - a.Longitude)

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * earthRadiusKM * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Candidate is one record considered by Nearest.
type Candidate struct {
	ID         int64
	Coordinate models.Coordinate
}

// Nearest returns the candidates within radiusKM of origin, ordered by
// ascending distance with ties kept in insertion order, truncated to limit.
// A non-positive radius or an empty candidate set yields an empty result.
func Nearest(origin models.Coordinate, candidates []Candidate, radiusKM float64, limit int) []models.ProximityMatch {
	matches := []models.ProximityMatch{}
	if radiusKM <= 0 || limit <= 0 {
		return matches
	}

	for _, c := range candidates {
		d := Haversine(origin, c.Coordinate)
		if d <= radiusKM {
			matches = append(matches, models.ProximityMatch{
				ID:         c.ID,
				Coordinate: c.Coordinate,
				DistanceKM: d,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].DistanceKM < matches[j].DistanceKM
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
