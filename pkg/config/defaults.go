package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "gamehall"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultConsoleLockTTL = 10 * time.Second

	DefaultConsoleSeed = "PS 1,PS 2,PS 3,PS 4,PS 5"

	DefaultKafkaEnabled      = false
	DefaultBookingEventTopic = "gamehall.bookings"

	DefaultPaginationLimit = 100
)
