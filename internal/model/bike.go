package model

import "time"

type Bike struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Type              string    `json:"type"`
	SellingPrice      float64   `json:"selling_price"`
	RentalPricePerDay float64   `json:"rental_price_per_day"`
	Quantity          int       `json:"quantity"`
	ImageURL          string    `json:"image_url"`
	Featured          bool      `json:"featured"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Available reports whether at least one unit is in stock.
func (b *Bike) Available() bool {
	return b.Quantity > 0
}
