package events

import (
	"context"
	"time"

	"courtside/pkg/kafka"
	kafka_config "courtside/pkg/kafka/config"
	"courtside/pkg/logger"
	"courtside/pkg/model"
)

type kafkaPublisher struct {
	producer *kafka.Producer
	log      *logger.Logger
}

func NewKafkaPublisher(cfg *kafka_config.Config, log *logger.Logger) (Publisher, error) {
	producer, err := kafka.NewProducer(cfg, cfg.ReservationTopic, cfg.ReservationDLQTopic)
	if err != nil {
		return nil, err
	}

	log.Info("Kafka event publisher initialized",
		"topic", cfg.ReservationTopic,
		"dlq_topic", cfg.ReservationDLQTopic,
	)

	return &kafkaPublisher{
		producer: producer,
		log:      log,
	}, nil
}

func (p *kafkaPublisher) PublishReservationConfirmed(ctx context.Context, reservation *model.Reservation) error {
	return p.publish(ctx, TypeReservationConfirmed, reservation.CourtID, ReservationEvent{
		ReservationID: reservation.ID,
		UserName:      reservation.UserName,
		CourtID:       reservation.CourtID,
		CoachID:       reservation.CoachID,
		StartTime:     reservation.StartTime,
		EndTime:       reservation.EndTime,
		Pricing:       reservation.Pricing,
		OccurredAt:    time.Now().UTC(),
	})
}

func (p *kafkaPublisher) PublishReservationCancelled(ctx context.Context, reservation *model.Reservation) error {
	return p.publish(ctx, TypeReservationCancelled, reservation.CourtID, ReservationEvent{
		ReservationID: reservation.ID,
		UserName:      reservation.UserName,
		CourtID:       reservation.CourtID,
		CoachID:       reservation.CoachID,
		StartTime:     reservation.StartTime,
		EndTime:       reservation.EndTime,
		Pricing:       reservation.Pricing,
		OccurredAt:    time.Now().UTC(),
	})
}

func (p *kafkaPublisher) PublishWaitlisted(ctx context.Context, entry *model.WaitlistEntry) error {
	return p.publish(ctx, TypeReservationWaitlisted, entry.CourtID, WaitlistEvent{
		WaitlistID: entry.ID,
		UserName:   entry.UserName,
		CourtID:    entry.CourtID,
		StartTime:  entry.StartTime,
		EndTime:    entry.EndTime,
		Position:   entry.Position,
		OccurredAt: time.Now().UTC(),
	})
}

func (p *kafkaPublisher) PublishPromoted(ctx context.Context, entry *model.WaitlistEntry, reservationID string) error {
	return p.publish(ctx, TypeWaitlistPromoted, entry.CourtID, WaitlistEvent{
		WaitlistID:    entry.ID,
		ReservationID: reservationID,
		UserName:      entry.UserName,
		CourtID:       entry.CourtID,
		StartTime:     entry.StartTime,
		EndTime:       entry.EndTime,
		OccurredAt:    time.Now().UTC(),
	})
}

func (p *kafkaPublisher) publish(ctx context.Context, eventType, courtID string, payload any) error {
	msg := kafka.NewMessage().
		WithKey(courtID).
		WithValue(payload).
		WithEventID("").
		WithEventType(eventType).
		WithSource(Source).
		WithHeader(kafka.HeaderSchemaVersion, SchemaVersion).
		Build()

	return p.producer.Publish(ctx, msg)
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}
