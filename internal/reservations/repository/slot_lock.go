package repository

import (
	"context"
	"fmt"
	"time"

	"reservo/pkg/config"
	"reservo/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	SlotLockCollection = "Slot_locks"
)

// SlotLockRepository implements a short-lived advisory lock per resource.
// The unique _id insert makes acquisition atomic: the second writer on the
// same key gets a duplicate key error.
type SlotLockRepository interface {
	Create(ctx context.Context, lock *model.SlotLock) error
	Delete(ctx context.Context, id string) error
	IsDuplicateKeyError(err error) bool
}

type mongoSlotLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSlotLockRepository(cfg *config.Config) SlotLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSlotLockRepository{
		cfg:        cfg,
		collection: db.Collection(SlotLockCollection),
	}
}

func (r *mongoSlotLockRepository) Create(ctx context.Context, lock *model.SlotLock) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC()
	lock.CreatedAt = now
	lock.ExpiresAt = now.Add(r.cfg.SlotLockTTL)

	if _, err := r.collection.InsertOne(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return err
		}
		return fmt.Errorf("failed to acquire slot lock: %w", err)
	}
	return nil
}

func (r *mongoSlotLockRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to release slot lock: %w", err)
	}
	return nil
}

func (r *mongoSlotLockRepository) IsDuplicateKeyError(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
