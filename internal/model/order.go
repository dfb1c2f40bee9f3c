package model

import "time"

// Order statuses.
const (
	OrderPending   = "Pending"
	OrderCompleted = "Completed"
)

type Order struct {
	ID            int64     `json:"id"`
	Reference     string    `json:"reference"`
	UserID        int64     `json:"user_id"`
	BikeID        int64     `json:"bike_id"`
	RenterName    string    `json:"renter_name"`
	RenterEmail   string    `json:"renter_email"`
	RentalDays    int       `json:"rental_days"`
	TotalCost     float64   `json:"total_cost"`
	PaymentMethod string    `json:"payment_method"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}
