package model

import "time"

// WaitlistEntry is a pending request for a contended slot. Position is
// 1-based and unique within the (court, start time) group; entries in
// a group always form the gapless sequence 1..N. Entries are deleted
// on promotion, with later positions decremented in the same
// transaction.
type WaitlistEntry struct {
	ID           string         `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	UserName     string         `json:"user_name" bson:"user_name" validate:"required,min=2,max=100"`
	CourtID      string         `json:"court_id" bson:"court_id" validate:"required,mongodb"`
	CoachID      string         `json:"coach_id,omitempty" bson:"coach_id,omitempty" validate:"omitempty,mongodb"`
	EquipmentQty map[string]int `json:"equipment_qty,omitempty" bson:"equipment_qty,omitempty" validate:"omitempty,equipment_qty_map"`
	StartTime    time.Time      `json:"start_time" bson:"start_time" validate:"required"`
	EndTime      time.Time      `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	Position     int            `json:"position" bson:"position" validate:"required,min=1"`
	CreatedAt    time.Time      `json:"created_at" bson:"created_at" validate:"omitempty"`
}
