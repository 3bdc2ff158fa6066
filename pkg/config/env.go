package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvSlotLockTTL       = "SLOT_LOCK_TTL"
	EnvMaxOccurrences    = "MAX_RECURRENCE_OCCURRENCES"
	EnvOverlapScanLimit  = "OVERLAP_SCAN_LIMIT"
	EnvEventsEnabled     = "EVENTS_ENABLED"
	EnvEventsTopic       = "EVENTS_TOPIC"
	EnvMaintenanceTopic  = "MAINTENANCE_HOLDS_TOPIC"
	EnvMaintenanceGroup  = "MAINTENANCE_HOLDS_GROUP"
)
