// Package events publishes booking lifecycle events. Publication is
// post-commit and best effort: a failed publish is logged and never
// rolls back the booking it describes.
package events

import (
	"context"
	"time"

	"courtside/pkg/model"
)

const (
	TypeReservationConfirmed  = "reservation.confirmed"
	TypeReservationWaitlisted = "reservation.waitlisted"
	TypeReservationCancelled  = "reservation.cancelled"
	TypeWaitlistPromoted      = "waitlist.promoted"

	SchemaVersion = "1"
	Source        = "courtside-bookings"
)

// ReservationEvent is the payload for confirmed and cancelled
// reservation events.
type ReservationEvent struct {
	ReservationID string               `json:"reservation_id"`
	UserName      string               `json:"user_name"`
	CourtID       string               `json:"court_id"`
	CoachID       string               `json:"coach_id,omitempty"`
	StartTime     time.Time            `json:"start_time"`
	EndTime       time.Time            `json:"end_time"`
	Pricing       model.PriceBreakdown `json:"pricing"`
	OccurredAt    time.Time            `json:"occurred_at"`
}

// WaitlistEvent is the payload for waitlisted and promoted events.
type WaitlistEvent struct {
	WaitlistID    string    `json:"waitlist_id,omitempty"`
	ReservationID string    `json:"reservation_id,omitempty"`
	UserName      string    `json:"user_name"`
	CourtID       string    `json:"court_id"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Position      int       `json:"position,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Publisher emits booking lifecycle events keyed by court, so events
// for one court preserve order.
type Publisher interface {
	PublishReservationConfirmed(ctx context.Context, reservation *model.Reservation) error
	PublishReservationCancelled(ctx context.Context, reservation *model.Reservation) error
	PublishWaitlisted(ctx context.Context, entry *model.WaitlistEntry) error
	PublishPromoted(ctx context.Context, entry *model.WaitlistEntry, reservationID string) error
	Close() error
}
