package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	userserrors "gamehall/internal/users/errors"
	"gamehall/pkg/config"
	mongodb "gamehall/pkg/db/mongo"
	"gamehall/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Users"

	userSequence = "users"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id int64) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateProfile(ctx context.Context, username string, update *model.ProfileUpdate) error
	Exists(ctx context.Context, id int64) (bool, error)
	// AddPlaytime atomically increments the user's playtime counter and
	// returns the new total. The hours argument must already be validated;
	// this is a single $inc, callers never read-modify-write the counter.
	AddPlaytime(ctx context.Context, userID int64, hours float64) (float64, error)
}

type mongoUserRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
}

func NewMongoUserRepository(cfg *config.Config) UserRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoUserRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
	}
}

// withTimeout wraps the context with a timeout unless the call is already
// running inside a transaction; a SessionContext cannot be wrapped without
// breaking transaction semantics.
func (r *mongoUserRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline && time.Until(deadline) < timeout {
		return context.WithTimeout(ctx, time.Until(deadline))
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoUserRepository) Create(ctx context.Context, user *model.User) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	id, err := mongodb.NextSequence(ctx, r.db, userSequence)
	if err != nil {
		return fmt.Errorf("failed to assign user id: %w", err)
	}
	user.ID = id

	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", userserrors.ErrDuplicateUsername, user.Username)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var user model.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %d", userserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return &user, nil
}

func (r *mongoUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var user model.User
	err := r.collection.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", userserrors.ErrNotFound, username)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return &user, nil
}

func (r *mongoUserRepository) UpdateProfile(ctx context.Context, username string, update *model.ProfileUpdate) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	fields := bson.M{}
	if update.Email != nil {
		fields["email"] = *update.Email
	}
	if update.Phone != nil {
		fields["phone"] = *update.Phone
	}
	if len(fields) == 0 {
		return nil
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"username": username}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", userserrors.ErrNotFound, username)
	}

	return nil
}

func (r *mongoUserRepository) Exists(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}

	return count > 0, nil
}

func (r *mongoUserRepository) AddPlaytime(ctx context.Context, userID int64, hours float64) (float64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user model.User
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": userID},
		bson.M{"$inc": bson.M{"playtime": hours}},
		opts,
	).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, fmt.Errorf("%w: %d", userserrors.ErrNotFound, userID)
		}
		return 0, fmt.Errorf("failed to add playtime: %w", err)
	}

	return user.Playtime, nil
}
