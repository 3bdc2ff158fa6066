package repository

import (
	"context"
	"fmt"
	"time"

	reserrors "reservo/internal/reservations/errors"
	"reservo/pkg/config"
	"reservo/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ConflictCollection = "Booking_conflicts"
)

type ConflictRepository interface {
	Create(ctx context.Context, conflict *model.BookingConflict) error
	FindByID(ctx context.Context, id string) (*model.BookingConflict, error)
	FindAll(ctx context.Context, orgID string, resolved *bool, limit int, offset int64) ([]*model.BookingConflict, error)
	Count(ctx context.Context, orgID string, resolved *bool) (int64, error)
	Resolve(ctx context.Context, id, resolvedBy, action, notes string) error
}

type mongoConflictRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoConflictRepository(cfg *config.Config) ConflictRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoConflictRepository{
		cfg:        cfg,
		collection: db.Collection(ConflictCollection),
	}
}

func (r *mongoConflictRepository) Create(ctx context.Context, conflict *model.BookingConflict) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	conflict.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	if _, err := r.collection.InsertOne(ctx, conflict); err != nil {
		return fmt.Errorf("failed to create conflict record: %w", err)
	}
	return nil
}

func (r *mongoConflictRepository) FindByID(ctx context.Context, id string) (*model.BookingConflict, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var conflict model.BookingConflict
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&conflict)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, reserrors.ErrConflictNotFound
		}
		return nil, fmt.Errorf("failed to find conflict: %w", err)
	}

	return &conflict, nil
}

func buildConflictFilter(orgID string, resolved *bool) bson.M {
	filter := bson.M{}
	if orgID != "" {
		filter["org_id"] = orgID
	}
	if resolved != nil {
		filter["resolved"] = *resolved
	}
	return filter
}

func (r *mongoConflictRepository) FindAll(ctx context.Context, orgID string, resolved *bool, limit int, offset int64) ([]*model.BookingConflict, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, buildConflictFilter(orgID, resolved), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find conflicts: %w", err)
	}
	defer cursor.Close(ctx)

	var conflicts []*model.BookingConflict
	if err = cursor.All(ctx, &conflicts); err != nil {
		return nil, fmt.Errorf("failed to decode conflicts: %w", err)
	}

	return conflicts, nil
}

func (r *mongoConflictRepository) Count(ctx context.Context, orgID string, resolved *bool) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildConflictFilter(orgID, resolved))
	if err != nil {
		return 0, fmt.Errorf("failed to count conflicts: %w", err)
	}
	return count, nil
}

func (r *mongoConflictRepository) Resolve(ctx context.Context, id, resolvedBy, action, notes string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	update := bson.M{
		"$set": bson.M{
			"resolved":          true,
			"resolved_by":       resolvedBy,
			"resolved_at":       now,
			"resolution_action": action,
			"notes":             notes,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to resolve conflict: %w", err)
	}

	if result.MatchedCount == 0 {
		return reserrors.ErrConflictNotFound
	}

	return nil
}
