package store

import (
	"database/sql"
	"fmt"

	"github.com/royalbikeclub/royalbike/internal/model"
)

type BikeStore struct {
	db *sql.DB
}

func NewBikeStore(db *sql.DB) *BikeStore {
	return &BikeStore{db: db}
}

func scanBike(scanner interface{ Scan(...any) error }) (*model.Bike, error) {
	var b model.Bike
	err := scanner.Scan(
		&b.ID, &b.Name, &b.Type, &b.SellingPrice, &b.RentalPricePerDay,
		&b.Quantity, &b.ImageURL, &b.Featured, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

const bikeCols = `id, name, type, selling_price, rental_price_per_day, quantity, image_url, featured, created_at, updated_at`

func (s *BikeStore) Create(name, bikeType string, sellingPrice, rentalPricePerDay float64, quantity int, imageURL string) (*model.Bike, error) {
	result, err := s.db.Exec(
		`INSERT INTO bikes (name, type, selling_price, rental_price_per_day, quantity, image_url) VALUES (?, ?, ?, ?, ?, ?)`,
		name, bikeType, sellingPrice, rentalPricePerDay, quantity, imageURL,
	)
	if err != nil {
		return nil, fmt.Errorf("insert bike: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *BikeStore) GetByID(id int64) (*model.Bike, error) {
	row := s.db.QueryRow(`SELECT `+bikeCols+` FROM bikes WHERE id = ?`, id)
	b, err := scanBike(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get bike: %w", err)
	}
	return b, nil
}

func (s *BikeStore) List() ([]model.Bike, error) {
	rows, err := s.db.Query(`SELECT ` + bikeCols + ` FROM bikes ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list bikes: %w", err)
	}
	defer rows.Close()

	var bikes []model.Bike
	for rows.Next() {
		b, err := scanBike(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bike: %w", err)
		}
		bikes = append(bikes, *b)
	}
	return bikes, rows.Err()
}

func (s *BikeStore) ListFeatured() ([]model.Bike, error) {
	rows, err := s.db.Query(`SELECT ` + bikeCols + ` FROM bikes WHERE featured = 1 ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list featured bikes: %w", err)
	}
	defer rows.Close()

	var bikes []model.Bike
	for rows.Next() {
		b, err := scanBike(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bike: %w", err)
		}
		bikes = append(bikes, *b)
	}
	return bikes, rows.Err()
}

func (s *BikeStore) Update(id int64, name, bikeType string, sellingPrice, rentalPricePerDay float64, quantity int, imageURL string) (*model.Bike, error) {
	_, err := s.db.Exec(
		`UPDATE bikes SET name = ?, type = ?, selling_price = ?, rental_price_per_day = ?, quantity = ?, image_url = ?, updated_at = datetime('now') WHERE id = ?`,
		name, bikeType, sellingPrice, rentalPricePerDay, quantity, imageURL, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update bike: %w", err)
	}
	return s.GetByID(id)
}

// SetFeatured marks or unmarks a bike for the home page showcase.
func (s *BikeStore) SetFeatured(id int64, featured bool) error {
	result, err := s.db.Exec(
		`UPDATE bikes SET featured = ?, updated_at = datetime('now') WHERE id = ?`,
		featured, id,
	)
	if err != nil {
		return fmt.Errorf("set featured: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DecrementQuantity reserves one unit. The condition guards against
// overselling when two rentals race for the last bike.
func (s *BikeStore) DecrementQuantity(id int64) (bool, error) {
	result, err := s.db.Exec(
		`UPDATE bikes SET quantity = quantity - 1, updated_at = datetime('now') WHERE id = ? AND quantity > 0`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("decrement quantity: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

func (s *BikeStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM bikes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete bike: %w", err)
	}
	return nil
}
