package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvAccrualMode     = "ACCRUAL_MODE"
	EnvAccrualMinHours = "ACCRUAL_MIN_HOURS"

	EnvConsoleLockTTL = "CONSOLE_LOCK_TTL"

	EnvConsoleSeed = "CONSOLE_SEED"

	EnvKafkaEnabled      = "KAFKA_ENABLED"
	EnvBookingEventTopic = "BOOKING_EVENT_TOPIC"
)
