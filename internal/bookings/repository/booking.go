package repository

import (
	"context"
	"fmt"
	"time"

	"gamehall/pkg/config"
	mongotx "gamehall/pkg/db/mongo"
	"gamehall/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	CollectionName = "Bookings"

	bookingSequence = "bookings"

	usersCollection    = "Users"
	consolesCollection = "Consoles"
)

type BookingRepository interface {
	// NextID reserves the next booking id. It is called with the parent
	// context, never a session context: an aborted reservation leaves a gap
	// in the sequence but can never hand the same id to two bookings.
	NextID(ctx context.Context) (int64, error)
	Insert(ctx context.Context, booking *model.Booking) error
	// FindOverlapping returns the first booking on the console whose window
	// intersects [start, end), or nil when the window is free. Bounds are
	// strict on both sides, so back-to-back bookings never match.
	FindOverlapping(ctx context.Context, consoleID int64, start, end time.Time) (*model.Booking, error)
	FindAllViews(ctx context.Context, userID *int64, limit int, offset int64) ([]*model.BookingView, error)
	Count(ctx context.Context, userID *int64) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoBookingRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout unless the call is already
// running inside a transaction; a SessionContext cannot be wrapped without
// breaking transaction semantics.
func (r *mongoBookingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline && time.Until(deadline) < timeout {
		return context.WithTimeout(ctx, time.Until(deadline))
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoBookingRepository) NextID(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	id, err := mongotx.NextSequence(ctx, r.db, bookingSequence)
	if err != nil {
		return 0, fmt.Errorf("failed to reserve booking id: %w", err)
	}

	return id, nil
}

func (r *mongoBookingRepository) Insert(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	booking.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	if _, err := r.collection.InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	return nil
}

func (r *mongoBookingRepository) FindOverlapping(ctx context.Context, consoleID int64, start, end time.Time) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"console_id": consoleID,
		"start_time": bson.M{"$lt": end},
		"end_time":   bson.M{"$gt": start},
	}

	var booking model.Booking
	err := r.collection.FindOne(ctx, filter).Decode(&booking)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to check overlapping bookings: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) FindAllViews(ctx context.Context, userID *int64, limit int, offset int64) ([]*model.BookingView, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{}
	if userID != nil {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{"user_id": *userID}}})
	}

	pipeline = append(pipeline,
		bson.D{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		bson.D{{Key: "$skip", Value: offset}},
		bson.D{{Key: "$limit", Value: int64(limit)}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         usersCollection,
			"localField":   "user_id",
			"foreignField": "_id",
			"as":           "user",
		}}},
		bson.D{{Key: "$unwind", Value: "$user"}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         consolesCollection,
			"localField":   "console_id",
			"foreignField": "_id",
			"as":           "console",
		}}},
		bson.D{{Key: "$unwind", Value: "$console"}},
		bson.D{{Key: "$project", Value: bson.M{
			"_id":        1,
			"start_time": 1,
			"end_time":   1,
			"created_at": 1,
			"username":   "$user.username",
			"console":    "$console.name",
		}}},
	)

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var views []*model.BookingView
	if err = cursor.All(ctx, &views); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return views, nil
}

func (r *mongoBookingRepository) Count(ctx context.Context, userID *int64) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{}
	if userID != nil {
		filter["user_id"] = *userID
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	return count, nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
