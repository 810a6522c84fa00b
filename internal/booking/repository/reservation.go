package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingerrors "courtside/internal/booking/errors"
	"courtside/pkg/config"
	mongotx "courtside/pkg/db/mongo"
	"courtside/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ReservationsCollection = "Reservations"
)

type ReservationRepository interface {
	Create(ctx context.Context, reservation *model.Reservation) error
	FindByID(ctx context.Context, id string) (*model.Reservation, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, error)
	Count(ctx context.Context) (int64, error)

	// CancelConfirmed flips a reservation from confirmed to cancelled
	// as a single conditional update. Returns ErrNotConfirmed when no
	// confirmed reservation matches the id, so concurrent cancels of
	// the same reservation settle with exactly one winner.
	CancelConfirmed(ctx context.Context, id string) error

	// FindConfirmedCourtOverlap returns a confirmed reservation for
	// the court whose interval overlaps [start, end) under half-open
	// semantics, or nil when the slot is free.
	FindConfirmedCourtOverlap(ctx context.Context, courtID string, start, end time.Time) (*model.Reservation, error)
	FindConfirmedCoachOverlap(ctx context.Context, coachID string, start, end time.Time) (*model.Reservation, error)

	// SumCommittedEquipment totals the quantity of one equipment unit
	// committed across ALL confirmed reservations, regardless of time
	// overlap. SumCommittedEquipmentInWindow is the window-scoped
	// variant selected by EQUIPMENT_WINDOW_SCOPED.
	SumCommittedEquipment(ctx context.Context, equipmentID string) (int, error)
	SumCommittedEquipmentInWindow(ctx context.Context, equipmentID string, start, end time.Time) (int, error)

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoReservationRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoReservationRepository(cfg *config.Config) ReservationRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoReservationRepository{
		cfg:        cfg,
		collection: db.Collection(ReservationsCollection),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout if not already in a
// transaction. SessionContext cannot be wrapped without breaking
// transaction semantics, so it is returned unchanged with a no-op
// cancel.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline {
		if remaining := time.Until(deadline); remaining < timeout {
			return context.WithTimeout(ctx, remaining)
		}
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoReservationRepository) Create(ctx context.Context, reservation *model.Reservation) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	reservation.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, reservation)
	if err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		reservation.ID = oid.Hex()
	}
	return nil
}

func (r *mongoReservationRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingerrors.ErrInvalidID, id)
	}

	var reservation model.Reservation
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&reservation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find reservation: %w", err)
	}

	return &reservation, nil
}

func (r *mongoReservationRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []*model.Reservation
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}

	return reservations, nil
}

func (r *mongoReservationRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count reservations: %w", err)
	}

	return count, nil
}

func (r *mongoReservationRepository) CancelConfirmed(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingerrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID, "status": model.StatusConfirmed},
		bson.M{"$set": bson.M{"status": model.StatusCancelled}},
	)
	if err != nil {
		return fmt.Errorf("failed to cancel reservation: %w", err)
	}

	if result.MatchedCount == 0 {
		return bookingerrors.ErrNotConfirmed
	}

	return nil
}

func (r *mongoReservationRepository) FindConfirmedCourtOverlap(ctx context.Context, courtID string, start, end time.Time) (*model.Reservation, error) {
	return r.findConfirmedOverlap(ctx, bson.M{"court_id": courtID}, start, end)
}

func (r *mongoReservationRepository) FindConfirmedCoachOverlap(ctx context.Context, coachID string, start, end time.Time) (*model.Reservation, error) {
	return r.findConfirmedOverlap(ctx, bson.M{"coach_id": coachID}, start, end)
}

// findConfirmedOverlap uses half-open overlap semantics: intervals
// [a,b) and [c,d) overlap iff a < d && c < b, so back-to-back slots
// sharing a boundary do not conflict.
func (r *mongoReservationRepository) findConfirmedOverlap(ctx context.Context, filter bson.M, start, end time.Time) (*model.Reservation, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter["status"] = model.StatusConfirmed
	filter["start_time"] = bson.M{"$lt": end}
	filter["end_time"] = bson.M{"$gt": start}

	var reservation model.Reservation
	err := r.collection.FindOne(ctx, filter).Decode(&reservation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to check reservation overlap: %w", err)
	}

	return &reservation, nil
}

func (r *mongoReservationRepository) SumCommittedEquipment(ctx context.Context, equipmentID string) (int, error) {
	return r.sumCommittedEquipment(ctx, equipmentID, nil)
}

func (r *mongoReservationRepository) SumCommittedEquipmentInWindow(ctx context.Context, equipmentID string, start, end time.Time) (int, error) {
	return r.sumCommittedEquipment(ctx, equipmentID, bson.M{
		"start_time": bson.M{"$lt": end},
		"end_time":   bson.M{"$gt": start},
	})
}

func (r *mongoReservationRepository) sumCommittedEquipment(ctx context.Context, equipmentID string, window bson.M) (int, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	field := "equipment_qty." + equipmentID
	match := bson.M{
		"status": model.StatusConfirmed,
		field:    bson.M{"$exists": true},
	}
	for k, v := range window {
		match[k] = v
	}

	pipeline := []bson.M{
		{"$match": match},
		{"$group": bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$" + field},
		}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate committed equipment: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total int `bson:"total"`
	}
	if err = cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("failed to decode committed equipment total: %w", err)
	}

	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}

func (r *mongoReservationRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
