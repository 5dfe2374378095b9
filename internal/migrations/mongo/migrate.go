package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"gamehall/internal/migrations/mongo/validators"
	"gamehall/pkg/config"
	mongodb "gamehall/pkg/db/mongo"
)

var (
	UsersIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	ConsolesIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	BookingsIndexes = []mongo.IndexModel{
		// Serves the overlap query: equality on console_id, range on the
		// window bounds.
		{Keys: bson.D{
			{Key: "console_id", Value: 1},
			{Key: "start_time", Value: 1},
			{Key: "end_time", Value: 1},
		}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	}

	ConsoleLocksIndexes = []mongo.IndexModel{
		// TTL reaper for locks orphaned by a crashed request.
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}
)

func RunMigration(ctx context.Context, cfg *config.Config) error {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	fmt.Printf("🚀 Running gamehall Mongo migrations on database: %s\n", cfg.MongoDatabaseName)

	collections := map[string]struct {
		Indexes   []mongo.IndexModel
		Validator bson.M
	}{
		"Users": {
			Indexes:   UsersIndexes,
			Validator: validators.UserValidator,
		},
		"Consoles": {
			Indexes:   ConsolesIndexes,
			Validator: validators.ConsoleValidator,
		},
		"Bookings": {
			Indexes:   BookingsIndexes,
			Validator: validators.BookingValidator,
		},
		"Console_locks": {
			Indexes: ConsoleLocksIndexes,
		},
	}

	for name, def := range collections {
		if err := ensureCollection(ctx, db, name, def.Validator); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	if err := seedConsoles(ctx, db, cfg.ConsoleSeed); err != nil {
		return fmt.Errorf("failed to seed consoles: %w", err)
	}

	fmt.Println("✅ All migrations applied successfully.")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		fmt.Printf("🆕 Creating collection: %s\n", name)
		opts := options.CreateCollection()
		if validator != nil {
			opts = opts.SetValidator(validator)
		}
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
	} else if validator != nil {
		fmt.Printf("ℹ️ Collection %s already exists — updating validator if needed\n", name)
		command := bson.D{
			{Key: "collMod", Value: name},
			{Key: "validator", Value: validator},
		}
		if err := db.RunCommand(ctx, command).Err(); err != nil {
			fmt.Printf("⚠️ Warning: failed updating validator for %s: %v\n", name, err)
		}
	}

	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel) error {
	coll := db.Collection(name)
	_, err := coll.Indexes().CreateMany(ctx, models)
	if err != nil {
		return err
	}
	fmt.Printf("📚 Ensured indexes for %s\n", name)
	return nil
}

// seedConsoles inserts the configured console fleet. Re-running is a no-op
// for names that already exist, so the job stays idempotent; ids come from
// the shared counter and are never reassigned.
func seedConsoles(ctx context.Context, db *mongo.Database, names []string) error {
	coll := db.Collection("Consoles")

	for _, name := range names {
		err := coll.FindOne(ctx, bson.M{"name": name}).Err()
		if err == nil {
			continue
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("failed to check console %q: %w", name, err)
		}

		id, err := mongodb.NextSequence(ctx, db, "consoles")
		if err != nil {
			return fmt.Errorf("failed to assign id for console %q: %w", name, err)
		}

		if _, err := coll.InsertOne(ctx, bson.M{"_id": id, "name": name}); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				continue
			}
			return fmt.Errorf("failed to seed console %q: %w", name, err)
		}
		fmt.Printf("🎮 Seeded console %q with id %d\n", name, id)
	}

	return nil
}
