package model

import "time"

const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// PriceBreakdown itemizes the components summed into a reservation
// total. Optional components are pointers so an absent component is
// distinguishable from an explicit zero. Values are raw floating
// sums; no currency rounding is applied.
type PriceBreakdown struct {
	Base      float64  `json:"base" bson:"base"`
	PeakHour  *float64 `json:"peak_hour,omitempty" bson:"peak_hour,omitempty"`
	Weekend   *float64 `json:"weekend,omitempty" bson:"weekend,omitempty"`
	CourtType *float64 `json:"court_type,omitempty" bson:"court_type,omitempty"`
	Equipment *float64 `json:"equipment,omitempty" bson:"equipment,omitempty"`
	Coach     *float64 `json:"coach,omitempty" bson:"coach,omitempty"`
	Total     float64  `json:"total" bson:"total"`
}

// Reservation is a committed booking of a court for [StartTime,
// EndTime), optionally bundled with a coach and equipment quantities.
// Reservations are created only through the coordinator's commit
// path, mutated only by flipping Status to cancelled, and never
// deleted.
type Reservation struct {
	ID           string         `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	UserName     string         `json:"user_name" bson:"user_name" validate:"required,min=2,max=100"`
	CourtID      string         `json:"court_id" bson:"court_id" validate:"required,mongodb"`
	CoachID      string         `json:"coach_id,omitempty" bson:"coach_id,omitempty" validate:"omitempty,mongodb"`
	EquipmentQty map[string]int `json:"equipment_qty,omitempty" bson:"equipment_qty,omitempty" validate:"omitempty,equipment_qty_map"`
	StartTime    time.Time      `json:"start_time" bson:"start_time" validate:"required"`
	EndTime      time.Time      `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	Status       string         `json:"status" bson:"status" validate:"required,oneof=confirmed cancelled"`
	Pricing      PriceBreakdown `json:"pricing" bson:"pricing"`
	CreatedAt    time.Time      `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// ReservationRequest is the inbound booking request handed to the
// coordinator.
type ReservationRequest struct {
	UserName     string         `json:"user_name" validate:"required,min=2,max=100"`
	CourtID      string         `json:"court_id" validate:"required,mongodb"`
	CoachID      string         `json:"coach_id,omitempty" validate:"omitempty,mongodb"`
	EquipmentQty map[string]int `json:"equipment_qty,omitempty" validate:"omitempty,equipment_qty_map"`
	StartTime    time.Time      `json:"start_time" validate:"required"`
	EndTime      time.Time      `json:"end_time" validate:"required,gtfield=StartTime"`
}

const (
	BookingStatusConfirmed  = "confirmed"
	BookingStatusWaitlisted = "waitlisted"
)

// BookingResult reports the outcome of a BookOrWaitlist call.
type BookingResult struct {
	Status        string          `json:"status"`
	ReservationID string          `json:"reservation_id,omitempty"`
	WaitlistID    string          `json:"waitlist_id,omitempty"`
	Position      int             `json:"position,omitempty"`
	Pricing       *PriceBreakdown `json:"pricing,omitempty"`
}

// PromotionResult reports the outcome of a CancelAndPromote call.
type PromotionResult struct {
	Promoted         bool   `json:"promoted"`
	NewReservationID string `json:"new_reservation_id,omitempty"`
	PromotedUser     string `json:"promoted_user,omitempty"`
}
