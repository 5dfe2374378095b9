package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	consoleserrors "gamehall/internal/consoles/errors"
	"gamehall/pkg/config"
	"gamehall/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Consoles"
)

type ConsoleRepository interface {
	FindByID(ctx context.Context, id int64) (*model.Console, error)
	FindAll(ctx context.Context) ([]*model.Console, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

type mongoConsoleRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoConsoleRepository(cfg *config.Config) ConsoleRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoConsoleRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

// withTimeout wraps the context with a timeout unless the call is already
// running inside a transaction; a SessionContext cannot be wrapped without
// breaking transaction semantics.
func (r *mongoConsoleRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline && time.Until(deadline) < timeout {
		return context.WithTimeout(ctx, time.Until(deadline))
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoConsoleRepository) FindByID(ctx context.Context, id int64) (*model.Console, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var console model.Console
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&console)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %d", consoleserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find console: %w", err)
	}

	return &console, nil
}

func (r *mongoConsoleRepository) FindAll(ctx context.Context) ([]*model.Console, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find consoles: %w", err)
	}
	defer cursor.Close(ctx)

	var consoles []*model.Console
	if err = cursor.All(ctx, &consoles); err != nil {
		return nil, fmt.Errorf("failed to decode consoles: %w", err)
	}

	return consoles, nil
}

func (r *mongoConsoleRepository) Exists(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check console existence: %w", err)
	}

	return count > 0, nil
}
