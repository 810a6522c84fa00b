package model

import "time"

type Coach struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name       string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Bio        string    `json:"bio,omitempty" bson:"bio,omitempty" validate:"omitempty,max=500"`
	HourlyRate float64   `json:"hourly_rate" bson:"hourly_rate" validate:"gte=0"`
	Active     bool      `json:"active" bson:"active"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}
