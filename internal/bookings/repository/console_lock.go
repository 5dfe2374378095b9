package repository

import (
	"context"
	"time"

	"gamehall/pkg/config"
	"gamehall/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const LockCollectionName = "Console_locks"

// ConsoleLockRepository provides advisory locks, one per console.
type ConsoleLockRepository interface {
	Create(ctx context.Context, lock *model.ConsoleLock) (*model.ConsoleLock, error)
	Delete(ctx context.Context, lockID string) error
}

type mongoConsoleLockRepository struct {
	collection *mongo.Collection
}

func NewConsoleLockRepository(cfg *config.Config) ConsoleLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoConsoleLockRepository{
		collection: db.Collection(LockCollectionName),
	}
}

// Create inserts the lock document. A duplicate key error means the console
// is locked by a concurrent reservation.
func (r *mongoConsoleLockRepository) Create(ctx context.Context, lock *model.ConsoleLock) (*model.ConsoleLock, error) {
	lock.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, lock)
	if err != nil {
		return nil, err
	}

	return lock, nil
}

// Delete removes an advisory lock.
func (r *mongoConsoleLockRepository) Delete(ctx context.Context, lockID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	return err
}
