package model

import "time"

const (
	CourtTypeIndoor  = "indoor"
	CourtTypeOutdoor = "outdoor"
)

type Court struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name      string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Type      string    `json:"type" bson:"type" validate:"required,oneof=indoor outdoor"`
	BasePrice float64   `json:"base_price" bson:"base_price" validate:"gte=0"`
	Active    bool      `json:"active" bson:"active"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}
