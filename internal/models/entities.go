package models

// EntityCategory enumerates the extraction categories. Using a fixed type keeps
// category names checked at compile time instead of living in map keys.
type EntityCategory string

const (
	CategoryEmergencyType   EntityCategory = "emergency_type"
	CategorySeverity        EntityCategory = "severity"
	CategoryVictimCondition EntityCategory = "victim_condition"
	CategoryDamage          EntityCategory = "damage"
	CategoryLocation        EntityCategory = "location"
	CategoryDate            EntityCategory = "date"
)

// Categories lists every category in a stable order.
var Categories = []EntityCategory{
	CategoryEmergencyType,
	CategorySeverity,
	CategoryVictimCondition,
	CategoryDamage,
	CategoryLocation,
	CategoryDate,
}

// EntityBundle maps each category to the matched surface strings in narrative
// occurrence order. Duplicates are retained.
type EntityBundle map[EntityCategory][]string

// NewEntityBundle returns a bundle with every category present and empty.
func NewEntityBundle() EntityBundle {
	b := make(EntityBundle, len(Categories))
	for _, c := range Categories {
		b[c] = []string{}
	}
	return b
}

// Empty reports whether no category matched anything.
func (b EntityBundle) Empty() bool {
	for _, items := range b {
		if len(items) > 0 {
			return false
		}
	}
	return true
}

// ProximityMatch pairs a record id with its distance from a query origin.
// Matches are transient query results and are never persisted.
type ProximityMatch struct {
	ID         int64
	Coordinate Coordinate
	DistanceKM float64
}
