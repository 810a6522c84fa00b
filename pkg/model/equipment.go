package model

import "time"

type Equipment struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name          string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	TotalQuantity int       `json:"total_quantity" bson:"total_quantity" validate:"gte=0"`
	RentalPrice   float64   `json:"rental_price" bson:"rental_price" validate:"gte=0"`
	Active        bool      `json:"active" bson:"active"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}
