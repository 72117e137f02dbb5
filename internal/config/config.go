package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`
	DatabaseURL string `envconfig:"DATABASE_URL" default:"venuebook.db"`
	JWTSecret   string `envconfig:"JWT_SECRET" required:"true"`
	JWTTTL      time.Duration `envconfig:"JWT_TTL" default:"24h"`

	// Redis
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Cache TTLs. Slot status hashes deliberately carry no TTL; only the
	// derived schedule view expires.
	LockTTL     time.Duration `envconfig:"LOCK_TTL" default:"60s"`
	ScheduleTTL time.Duration `envconfig:"SCHEDULE_TTL" default:"60s"`
	VenueTTL    time.Duration `envconfig:"VENUE_TTL" default:"5m"`

	// Default day schedule seeded on cache miss.
	SlotOpen     string        `envconfig:"SLOT_OPEN" default:"09:00"`
	SlotClose    string        `envconfig:"SLOT_CLOSE" default:"21:00"`
	SlotInterval time.Duration `envconfig:"SLOT_INTERVAL" default:"30m"`

	// Confirmation queue
	BookingStream string        `envconfig:"BOOKING_STREAM" default:"stream:bookings"`
	BookingGroup  string        `envconfig:"BOOKING_GROUP" default:"bookers"`
	ConsumerName  string        `envconfig:"CONSUMER_NAME" default:""`
	WorkerBatch   int64         `envconfig:"WORKER_BATCH" default:"10"`
	WorkerBlock   time.Duration `envconfig:"WORKER_BLOCK" default:"5s"`
}

func Load() (Config, error) {
	var c Config
	err := envconfig.Process("", &c)
	return c, err
}
