package store

import (
	"testing"
	"time"

	"github.com/royalbikeclub/royalbike/internal/database"
)

func setupTripTestDB(t *testing.T) *TripStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewTripStore(db)
}

func tripDates() (time.Time, time.Time) {
	start := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 3)
}

func TestTripCreate(t *testing.T) {
	ts := setupTripTestDB(t)
	start, end := tripDates()

	trip, err := ts.Create("Coastal Ride", "Three days along the coast.", 199.50, "/img/coast.jpg", start, end, 12, 12)
	if err != nil {
		t.Fatalf("create trip: %v", err)
	}
	if trip.ID == 0 {
		t.Error("expected non-zero id")
	}
	if trip.SeatsLeft != 12 {
		t.Errorf("seats_left = %d, want 12", trip.SeatsLeft)
	}
}

func TestTripCreateDefaultsSeatsLeft(t *testing.T) {
	ts := setupTripTestDB(t)
	start, end := tripDates()

	trip, err := ts.Create("Coastal Ride", "Three days along the coast.", 199.50, "/img/coast.jpg", start, end, 12, -1)
	if err != nil {
		t.Fatalf("create trip: %v", err)
	}
	if trip.SeatsLeft != trip.TotalSeats {
		t.Errorf("seats_left = %d, want total seats %d", trip.SeatsLeft, trip.TotalSeats)
	}
}

func TestTripListOrderedByStart(t *testing.T) {
	ts := setupTripTestDB(t)
	start, end := tripDates()

	ts.Create("Later Trip", "desc", 100, "/img/b.jpg", start.AddDate(0, 1, 0), end.AddDate(0, 1, 0), 8, -1)
	ts.Create("Earlier Trip", "desc", 100, "/img/a.jpg", start, end, 8, -1)

	trips, err := ts.List()
	if err != nil {
		t.Fatalf("list trips: %v", err)
	}
	if len(trips) != 2 {
		t.Fatalf("len = %d, want 2", len(trips))
	}
	if trips[0].Title != "Earlier Trip" {
		t.Errorf("first trip = %q, want %q", trips[0].Title, "Earlier Trip")
	}
}

func TestBookSeats(t *testing.T) {
	ts := setupTripTestDB(t)
	start, end := tripDates()

	trip, _ := ts.Create("Coastal Ride", "desc", 199.50, "/img/coast.jpg", start, end, 5, -1)

	ok, err := ts.BookSeats(trip.ID, 3)
	if err != nil {
		t.Fatalf("book seats: %v", err)
	}
	if !ok {
		t.Fatal("expected booking to succeed")
	}

	got, _ := ts.GetByID(trip.ID)
	if got.SeatsLeft != 2 {
		t.Errorf("seats_left = %d, want 2", got.SeatsLeft)
	}
}

func TestBookSeatsNotEnough(t *testing.T) {
	ts := setupTripTestDB(t)
	start, end := tripDates()

	trip, _ := ts.Create("Coastal Ride", "desc", 199.50, "/img/coast.jpg", start, end, 5, -1)

	ok, err := ts.BookSeats(trip.ID, 6)
	if err != nil {
		t.Fatalf("book seats: %v", err)
	}
	if ok {
		t.Error("booking more seats than available should fail")
	}

	got, _ := ts.GetByID(trip.ID)
	if got.SeatsLeft != 5 {
		t.Errorf("seats_left = %d, want 5 (unchanged)", got.SeatsLeft)
	}
}

func TestBookSeatsExactlyRemaining(t *testing.T) {
	ts := setupTripTestDB(t)
	start, end := tripDates()

	trip, _ := ts.Create("Coastal Ride", "desc", 199.50, "/img/coast.jpg", start, end, 5, -1)

	ok, _ := ts.BookSeats(trip.ID, 5)
	if !ok {
		t.Fatal("booking exactly the remaining seats should succeed")
	}

	got, _ := ts.GetByID(trip.ID)
	if got.SeatsLeft != 0 {
		t.Errorf("seats_left = %d, want 0", got.SeatsLeft)
	}

	if ok, _ := ts.BookSeats(trip.ID, 1); ok {
		t.Error("booking a full trip should fail")
	}
}

func TestBookSeatsInvalidCount(t *testing.T) {
	ts := setupTripTestDB(t)
	start, end := tripDates()

	trip, _ := ts.Create("Coastal Ride", "desc", 199.50, "/img/coast.jpg", start, end, 5, -1)

	if _, err := ts.BookSeats(trip.ID, 0); err == nil {
		t.Error("expected error for zero seats")
	}
	if _, err := ts.BookSeats(trip.ID, -2); err == nil {
		t.Error("expected error for negative seats")
	}
}

func TestTripUpdate(t *testing.T) {
	ts := setupTripTestDB(t)
	start, end := tripDates()

	trip, _ := ts.Create("Coastal Ride", "desc", 199.50, "/img/coast.jpg", start, end, 5, -1)

	updated, err := ts.Update(trip.ID, "Coastal Ride Deluxe", "Longer route.", 249, "/img/deluxe.jpg", start, end.AddDate(0, 0, 1), 10, 8)
	if err != nil {
		t.Fatalf("update trip: %v", err)
	}
	if updated.Title != "Coastal Ride Deluxe" {
		t.Errorf("title = %q, want %q", updated.Title, "Coastal Ride Deluxe")
	}
	if updated.TotalSeats != 10 || updated.SeatsLeft != 8 {
		t.Errorf("seats = %d/%d, want 8/10", updated.SeatsLeft, updated.TotalSeats)
	}
}

func TestTripDelete(t *testing.T) {
	ts := setupTripTestDB(t)
	start, end := tripDates()

	trip, _ := ts.Create("Coastal Ride", "desc", 199.50, "/img/coast.jpg", start, end, 5, -1)

	if err := ts.Delete(trip.ID); err != nil {
		t.Fatalf("delete trip: %v", err)
	}
	if got, _ := ts.GetByID(trip.ID); got != nil {
		t.Error("expected trip gone after delete")
	}
}
