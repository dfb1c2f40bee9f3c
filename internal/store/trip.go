package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/royalbikeclub/royalbike/internal/model"
)

type TripStore struct {
	db *sql.DB
}

func NewTripStore(db *sql.DB) *TripStore {
	return &TripStore{db: db}
}

func scanTrip(scanner interface{ Scan(...any) error }) (*model.Trip, error) {
	var t model.Trip
	err := scanner.Scan(
		&t.ID, &t.Title, &t.Description, &t.Price, &t.ImageURL,
		&t.StartDate, &t.EndDate, &t.TotalSeats, &t.SeatsLeft,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

const tripCols = `id, title, description, price, image_url, start_date, end_date, total_seats, seats_left, created_at, updated_at`

// Create inserts a trip. A negative seatsLeft means "not specified" and
// defaults to totalSeats, matching the add-trip form's optional field.
func (s *TripStore) Create(title, description string, price float64, imageURL string, startDate, endDate time.Time, totalSeats, seatsLeft int) (*model.Trip, error) {
	if seatsLeft < 0 {
		seatsLeft = totalSeats
	}
	result, err := s.db.Exec(
		`INSERT INTO trips (title, description, price, image_url, start_date, end_date, total_seats, seats_left) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		title, description, price, imageURL, startDate, endDate, totalSeats, seatsLeft,
	)
	if err != nil {
		return nil, fmt.Errorf("insert trip: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *TripStore) GetByID(id int64) (*model.Trip, error) {
	row := s.db.QueryRow(`SELECT `+tripCols+` FROM trips WHERE id = ?`, id)
	t, err := scanTrip(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get trip: %w", err)
	}
	return t, nil
}

func (s *TripStore) List() ([]model.Trip, error) {
	rows, err := s.db.Query(`SELECT ` + tripCols + ` FROM trips ORDER BY start_date ASC`)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	defer rows.Close()

	var trips []model.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		trips = append(trips, *t)
	}
	return trips, rows.Err()
}

func (s *TripStore) Update(id int64, title, description string, price float64, imageURL string, startDate, endDate time.Time, totalSeats, seatsLeft int) (*model.Trip, error) {
	_, err := s.db.Exec(
		`UPDATE trips SET title = ?, description = ?, price = ?, image_url = ?, start_date = ?, end_date = ?, total_seats = ?, seats_left = ?, updated_at = datetime('now') WHERE id = ?`,
		title, description, price, imageURL, startDate, endDate, totalSeats, seatsLeft, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update trip: %w", err)
	}
	return s.GetByID(id)
}

// BookSeats reserves seats for a booking. The condition guards against two
// bookings both taking the last seats.
func (s *TripStore) BookSeats(id int64, seats int) (bool, error) {
	if seats <= 0 {
		return false, fmt.Errorf("invalid seat count %d", seats)
	}
	result, err := s.db.Exec(
		`UPDATE trips SET seats_left = seats_left - ?, updated_at = datetime('now') WHERE id = ? AND seats_left >= ?`,
		seats, id, seats,
	)
	if err != nil {
		return false, fmt.Errorf("book seats: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

func (s *TripStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM trips WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete trip: %w", err)
	}
	return nil
}
