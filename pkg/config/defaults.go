package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "reservo"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Advisory slot locks auto-expire so a crashed writer cannot wedge a resource.
	DefaultSlotLockTTL = 10 * time.Second

	// Upper bound on occurrences expanded from a single recurring request.
	DefaultMaxOccurrences = 366

	// How many non-terminal bookings an overlap check will fetch per resource.
	DefaultOverlapScanLimit = 50

	DefaultEventsEnabled    = false
	DefaultEventsTopic      = "reservation-events"
	DefaultMaintenanceTopic = "maintenance-holds"
	DefaultMaintenanceGroup = "reservo-maintenance"

	DefaultPaginationLimit = 100
)
