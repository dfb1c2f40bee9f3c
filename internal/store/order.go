package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/royalbikeclub/royalbike/internal/model"
)

type OrderStore struct {
	db *sql.DB
}

func NewOrderStore(db *sql.DB) *OrderStore {
	return &OrderStore{db: db}
}

func scanOrder(scanner interface{ Scan(...any) error }) (*model.Order, error) {
	var o model.Order
	err := scanner.Scan(
		&o.ID, &o.Reference, &o.UserID, &o.BikeID, &o.RenterName, &o.RenterEmail,
		&o.RentalDays, &o.TotalCost, &o.PaymentMethod, &o.Status, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

const orderCols = `id, reference, user_id, bike_id, renter_name, renter_email, rental_days, total_cost, payment_method, status, created_at`

// NewReference returns a fresh booking reference.
func NewReference() string {
	return uuid.NewString()
}

func (s *OrderStore) Create(reference string, userID, bikeID int64, renterName, renterEmail string, rentalDays int, totalCost float64, paymentMethod string) (*model.Order, error) {
	result, err := s.db.Exec(
		`INSERT INTO orders (reference, user_id, bike_id, renter_name, renter_email, rental_days, total_cost, payment_method) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		reference, userID, bikeID, renterName, renterEmail, rentalDays, totalCost, paymentMethod,
	)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *OrderStore) GetByID(id int64) (*model.Order, error) {
	row := s.db.QueryRow(`SELECT `+orderCols+` FROM orders WHERE id = ?`, id)
	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

func (s *OrderStore) List() ([]model.Order, error) {
	rows, err := s.db.Query(`SELECT ` + orderCols + ` FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (s *OrderStore) ListByUser(userID int64) ([]model.Order, error) {
	rows, err := s.db.Query(`SELECT `+orderCols+` FROM orders WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders by user: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (s *OrderStore) SetStatus(id int64, status string) error {
	if status != model.OrderPending && status != model.OrderCompleted {
		return fmt.Errorf("invalid status %q", status)
	}
	result, err := s.db.Exec(`UPDATE orders SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("set order status: %w", err)
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
