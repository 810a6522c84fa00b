package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingerrors "courtside/internal/booking/errors"
	"courtside/pkg/config"
	"courtside/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	WaitlistCollection = "Waitlist"
)

type WaitlistRepository interface {
	Create(ctx context.Context, entry *model.WaitlistEntry) error
	// CountBySlot returns the number of entries waiting on the exact
	// (court, start time) pair. Position assignment is count+1 inside
	// the booking transaction.
	CountBySlot(ctx context.Context, courtID string, startTime time.Time) (int64, error)
	// FindHeadBySlot returns the position-1 entry for the slot, or nil
	// when the slot has no waitlist.
	FindHeadBySlot(ctx context.Context, courtID string, startTime time.Time) (*model.WaitlistEntry, error)
	Delete(ctx context.Context, id string) error
	// ShiftPositionsDown decrements position for every entry of the
	// slot with position > 1, closing the gap left by a promoted head.
	ShiftPositionsDown(ctx context.Context, courtID string, startTime time.Time) error
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.WaitlistEntry, error)
	Count(ctx context.Context) (int64, error)
}

type mongoWaitlistRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoWaitlistRepository(cfg *config.Config) WaitlistRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoWaitlistRepository{
		cfg:        cfg,
		collection: db.Collection(WaitlistCollection),
	}
}

func (r *mongoWaitlistRepository) Create(ctx context.Context, entry *model.WaitlistEntry) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	entry.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		return fmt.Errorf("failed to create waitlist entry: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		entry.ID = oid.Hex()
	}
	return nil
}

func (r *mongoWaitlistRepository) CountBySlot(ctx context.Context, courtID string, startTime time.Time) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{
		"court_id":   courtID,
		"start_time": startTime,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count waitlist entries: %w", err)
	}

	return count, nil
}

func (r *mongoWaitlistRepository) FindHeadBySlot(ctx context.Context, courtID string, startTime time.Time) (*model.WaitlistEntry, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var entry model.WaitlistEntry
	err := r.collection.FindOne(ctx, bson.M{
		"court_id":   courtID,
		"start_time": startTime,
		"position":   1,
	}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find waitlist head: %w", err)
	}

	return &entry, nil
}

func (r *mongoWaitlistRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingerrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete waitlist entry: %w", err)
	}

	if result.DeletedCount == 0 {
		return bookingerrors.ErrWaitlistEntryNotFound
	}

	return nil
}

func (r *mongoWaitlistRepository) ShiftPositionsDown(ctx context.Context, courtID string, startTime time.Time) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.collection.UpdateMany(ctx,
		bson.M{
			"court_id":   courtID,
			"start_time": startTime,
			"position":   bson.M{"$gt": 1},
		},
		bson.M{"$inc": bson.M{"position": -1}},
	)
	if err != nil {
		return fmt.Errorf("failed to shift waitlist positions: %w", err)
	}

	return nil
}

func (r *mongoWaitlistRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.WaitlistEntry, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{
			{Key: "court_id", Value: 1},
			{Key: "start_time", Value: 1},
			{Key: "position", Value: 1},
		}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find waitlist entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*model.WaitlistEntry
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode waitlist entries: %w", err)
	}

	return entries, nil
}

func (r *mongoWaitlistRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count waitlist entries: %w", err)
	}

	return count, nil
}
