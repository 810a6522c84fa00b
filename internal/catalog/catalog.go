// Package catalog is the resource-catalog collaborator: read access
// to courts, equipment, coaches and pricing rules. Entity management
// lives outside this service; writes here exist only for seeding and
// test fixtures.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"courtside/pkg/config"
	"courtside/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	CourtsCollection       = "Courts"
	EquipmentCollection    = "Equipment"
	CoachesCollection      = "Coaches"
	PricingRulesCollection = "Pricing_rules"
)

var (
	ErrNotFound  = errors.New("catalog resource not found")
	ErrInvalidID = errors.New("invalid catalog resource ID format")
)

type Repository interface {
	GetCourt(ctx context.Context, id string) (*model.Court, error)
	GetEquipment(ctx context.Context, id string) (*model.Equipment, error)
	GetCoach(ctx context.Context, id string) (*model.Coach, error)
	// ListActivePricingRules returns active rules in storage order;
	// price evaluation applies them in exactly this order.
	ListActivePricingRules(ctx context.Context) ([]*model.PricingRule, error)

	InsertCourt(ctx context.Context, court *model.Court) error
	InsertEquipment(ctx context.Context, equipment *model.Equipment) error
	InsertCoach(ctx context.Context, coach *model.Coach) error
	InsertPricingRule(ctx context.Context, rule *model.PricingRule) error
	// Reset wipes every catalog collection. Seeding only.
	Reset(ctx context.Context) error
}

type mongoCatalogRepository struct {
	cfg          *config.Config
	courts       *mongo.Collection
	equipment    *mongo.Collection
	coaches      *mongo.Collection
	pricingRules *mongo.Collection
}

func NewMongoCatalogRepository(cfg *config.Config) Repository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCatalogRepository{
		cfg:          cfg,
		courts:       db.Collection(CourtsCollection),
		equipment:    db.Collection(EquipmentCollection),
		coaches:      db.Collection(CoachesCollection),
		pricingRules: db.Collection(PricingRulesCollection),
	}
}

// withTimeout wraps the context with a timeout unless already inside a
// transaction; SessionContext cannot be wrapped without breaking
// transaction semantics.
func (r *mongoCatalogRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoCatalogRepository) GetCourt(ctx context.Context, id string) (*model.Court, error) {
	var court model.Court
	if err := r.findByID(ctx, r.courts, id, &court); err != nil {
		return nil, err
	}
	return &court, nil
}

func (r *mongoCatalogRepository) GetEquipment(ctx context.Context, id string) (*model.Equipment, error) {
	var equipment model.Equipment
	if err := r.findByID(ctx, r.equipment, id, &equipment); err != nil {
		return nil, err
	}
	return &equipment, nil
}

func (r *mongoCatalogRepository) GetCoach(ctx context.Context, id string) (*model.Coach, error) {
	var coach model.Coach
	if err := r.findByID(ctx, r.coaches, id, &coach); err != nil {
		return nil, err
	}
	return &coach, nil
}

func (r *mongoCatalogRepository) findByID(ctx context.Context, coll *mongo.Collection, id string, out any) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidID, id)
	}

	err = coll.FindOne(ctx, bson.M{"_id": objectID}).Decode(out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to find %s document: %w", coll.Name(), err)
	}

	return nil
}

func (r *mongoCatalogRepository) ListActivePricingRules(ctx context.Context) ([]*model.PricingRule, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.pricingRules.Find(ctx, bson.M{"active": true})
	if err != nil {
		return nil, fmt.Errorf("failed to find pricing rules: %w", err)
	}
	defer cursor.Close(ctx)

	var rules []*model.PricingRule
	if err = cursor.All(ctx, &rules); err != nil {
		return nil, fmt.Errorf("failed to decode pricing rules: %w", err)
	}

	return rules, nil
}

func (r *mongoCatalogRepository) InsertCourt(ctx context.Context, court *model.Court) error {
	return r.insert(ctx, r.courts, court, &court.ID, &court.CreatedAt)
}

func (r *mongoCatalogRepository) InsertEquipment(ctx context.Context, equipment *model.Equipment) error {
	return r.insert(ctx, r.equipment, equipment, &equipment.ID, &equipment.CreatedAt)
}

func (r *mongoCatalogRepository) InsertCoach(ctx context.Context, coach *model.Coach) error {
	return r.insert(ctx, r.coaches, coach, &coach.ID, &coach.CreatedAt)
}

func (r *mongoCatalogRepository) InsertPricingRule(ctx context.Context, rule *model.PricingRule) error {
	return r.insert(ctx, r.pricingRules, rule, &rule.ID, &rule.CreatedAt)
}

func (r *mongoCatalogRepository) Reset(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	for _, coll := range []*mongo.Collection{r.courts, r.equipment, r.coaches, r.pricingRules} {
		if _, err := coll.DeleteMany(ctx, bson.M{}); err != nil {
			return fmt.Errorf("failed to reset %s collection: %w", coll.Name(), err)
		}
	}
	return nil
}

func (r *mongoCatalogRepository) insert(ctx context.Context, coll *mongo.Collection, doc any, id *string, createdAt *time.Time) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	*createdAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := coll.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to insert %s document: %w", coll.Name(), err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		*id = oid.Hex()
	}
	return nil
}
