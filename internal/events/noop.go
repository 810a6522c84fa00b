package events

import (
	"context"

	"courtside/pkg/model"
)

// NoopPublisher discards every event. Used when Kafka is disabled.
type NoopPublisher struct{}

func NewNoopPublisher() Publisher {
	return NoopPublisher{}
}

func (NoopPublisher) PublishReservationConfirmed(context.Context, *model.Reservation) error {
	return nil
}

func (NoopPublisher) PublishReservationCancelled(context.Context, *model.Reservation) error {
	return nil
}

func (NoopPublisher) PublishWaitlisted(context.Context, *model.WaitlistEntry) error {
	return nil
}

func (NoopPublisher) PublishPromoted(context.Context, *model.WaitlistEntry, string) error {
	return nil
}

func (NoopPublisher) Close() error {
	return nil
}
