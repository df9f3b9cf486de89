package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/akagup/go-emergency-response/internal/models"
)

func setupTestDB(t *testing.T) *SQLiteDB {
	db, err := NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testEmergency() *models.Emergency {
	return &models.Emergency{
		LocationLabel: "Rohini, Delhi",
		Coordinate:    models.Coordinate{Latitude: 28.7041, Longitude: 77.1025},
		Narrative:     "Text Description: fire near the market",
		Type:          "fire",
		Confidence:    0.91,
		Entities:      models.NewEntityBundle(),
		CreatedAt:     time.Now(),
	}
}

func TestSQLiteDB_AddAndGetEmergency(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	e := testEmergency()
	e.Entities[models.CategoryEmergencyType] = []string{"fire"}

	id, err := db.AddEmergency(ctx, e)
	if err != nil {
		t.Fatalf("AddEmergency failed: %v", err)
	}
	if id != 1 {
		t.Errorf("expected first id 1, got %d", id)
	}

	got, err := db.GetEmergency(ctx, id)
	if err != nil {
		t.Fatalf("GetEmergency failed: %v", err)
	}
	if got.LocationLabel != "Rohini, Delhi" {
		t.Errorf("expected location 'Rohini, Delhi', got %q", got.LocationLabel)
	}
	if got.Type != "fire" || got.Confidence != 0.91 {
		t.Errorf("classification not persisted: %q %v", got.Type, got.Confidence)
	}
	if len(got.Entities[models.CategoryEmergencyType]) != 1 {
		t.Errorf("entities not round-tripped: %+v", got.Entities)
	}
}

func TestSQLiteDB_AddEmergency_MonotonicIDs(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	var last int64
	for i := 0; i < 3; i++ {
		id, err := db.AddEmergency(ctx, testEmergency())
		if err != nil {
			t.Fatalf("AddEmergency failed: %v", err)
		}
		if id <= last {
			t.Errorf("ids not monotonic: %d after %d", id, last)
		}
		last = id
	}
}

func TestSQLiteDB_AddEmergency_Invalid(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	bad := testEmergency()
	bad.Coordinate.Latitude = 95
	if _, err := db.AddEmergency(ctx, bad); !errors.Is(err, models.ErrInvalidCoordinate) {
		t.Errorf("expected ErrInvalidCoordinate, got %v", err)
	}

	empty := testEmergency()
	empty.Narrative = ""
	if _, err := db.AddEmergency(ctx, empty); !errors.Is(err, models.ErrInsufficientInput) {
		t.Errorf("expected ErrInsufficientInput, got %v", err)
	}
}

func TestSQLiteDB_GetEmergency_NotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetEmergency(context.Background(), 42)
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteDB_ListEmergencies_TypeFilter(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	types := []string{"fire", "flood", "fire"}
	for _, ty := range types {
		e := testEmergency()
		e.Type = ty
		if _, err := db.AddEmergency(ctx, e); err != nil {
			t.Fatalf("AddEmergency failed: %v", err)
		}
	}

	fires, err := db.ListEmergencies(ctx, Filter{Type: "fire"})
	if err != nil {
		t.Fatalf("ListEmergencies failed: %v", err)
	}
	if len(fires) != 2 {
		t.Errorf("expected 2 fire records, got %d", len(fires))
	}

	limited, err := db.ListEmergencies(ctx, Filter{Limit: 1})
	if err != nil {
		t.Fatalf("ListEmergencies failed: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("expected 1 record with limit, got %d", len(limited))
	}
}

func testVolunteer(email string) *models.Volunteer {
	return &models.Volunteer{
		Name:           "Asha",
		Email:          email,
		CredentialHash: "deadbeef",
		LocationLabel:  "Delhi",
		Coordinate:     models.Coordinate{Latitude: 28.7, Longitude: 77.1},
		Speciality:     "First Aid",
		Phone:          "+911234567890",
		CreatedAt:      time.Now(),
	}
}

func TestSQLiteDB_RegisterVolunteer_DuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := db.RegisterVolunteer(ctx, testVolunteer("asha@example.com")); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}

	_, err := db.RegisterVolunteer(ctx, testVolunteer("asha@example.com"))
	if !errors.Is(err, models.ErrDuplicateIdentity) {
		t.Fatalf("expected ErrDuplicateIdentity, got %v", err)
	}

	counts, err := db.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	if counts.Volunteers != 1 {
		t.Errorf("duplicate registration changed volunteer count: %d", counts.Volunteers)
	}
}

func TestSQLiteDB_RegisterVolunteer_ConcurrentSameEmail(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, errs[n] = db.RegisterVolunteer(ctx, testVolunteer("race@example.com"))
		}(i)
	}
	wg.Wait()

	succeeded, duplicates := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, models.ErrDuplicateIdentity):
			duplicates++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("expected exactly 1 successful registration, got %d", succeeded)
	}
	if duplicates != attempts-1 {
		t.Errorf("expected %d ErrDuplicateIdentity, got %d", attempts-1, duplicates)
	}
}

func TestSQLiteDB_VolunteerLookups(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	id, err := db.RegisterVolunteer(ctx, testVolunteer("lookup@example.com"))
	if err != nil {
		t.Fatalf("RegisterVolunteer failed: %v", err)
	}

	byID, err := db.GetVolunteer(ctx, id)
	if err != nil {
		t.Fatalf("GetVolunteer failed: %v", err)
	}
	if byID.Email != "lookup@example.com" {
		t.Errorf("unexpected email %q", byID.Email)
	}

	byEmail, err := db.VolunteerByEmail(ctx, "lookup@example.com")
	if err != nil {
		t.Fatalf("VolunteerByEmail failed: %v", err)
	}
	if byEmail.ID != id {
		t.Errorf("expected id %d, got %d", id, byEmail.ID)
	}

	exists, err := db.EmailExists(ctx, "lookup@example.com")
	if err != nil {
		t.Fatalf("EmailExists failed: %v", err)
	}
	if !exists {
		t.Error("expected email to exist")
	}

	exists, err = db.EmailExists(ctx, "nobody@example.com")
	if err != nil {
		t.Fatalf("EmailExists failed: %v", err)
	}
	if exists {
		t.Error("expected email to be absent")
	}
}

func TestSQLiteDB_ResourcesByOwner(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	ownerID, err := db.RegisterVolunteer(ctx, testVolunteer("owner@example.com"))
	if err != nil {
		t.Fatalf("RegisterVolunteer failed: %v", err)
	}

	for i, name := range []string{"Shelter A", "Water Point"} {
		_, err := db.AddResource(ctx, &models.Resource{
			Amenity:    "shelter",
			Name:       name,
			Coordinate: models.Coordinate{Latitude: 28.71, Longitude: 77.11},
			OwnerID:    ownerID,
			CreatedAt:  time.Now().Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("AddResource failed: %v", err)
		}
	}

	owned, err := db.ResourcesByOwner(ctx, ownerID)
	if err != nil {
		t.Fatalf("ResourcesByOwner failed: %v", err)
	}
	if len(owned) != 2 {
		t.Errorf("expected 2 owned resources, got %d", len(owned))
	}

	all, err := db.ListResources(ctx, Filter{})
	if err != nil {
		t.Fatalf("ListResources failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 resources, got %d", len(all))
	}
}
