package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Config holds the application configuration read from the environment.
type Config struct {
	Port              string        `env:"PORT,default=3000"`
	MongoURI          string        `env:"MONGO_URI,required"`
	Database          string        `env:"MONGO_DB,default=habits-db"`
	Collection        string        `env:"MONGO_COLLECTION,default=habits"`
	AllowedOrigins    string        `env:"CORS_ALLOWED_ORIGINS,default=*"`
	LogLevel          string        `env:"LOG_LEVEL,default=info"`
	HeartbeatSchedule string        `env:"HEARTBEAT_SCHEDULE,default=@every 1m"`
	DBTimeout         time.Duration `env:"DB_TIMEOUT,default=10s"`
}

// LoadConfig loads variables from an optional .env file and decodes the
// process environment into a Config.
func LoadConfig() (*Config, error) {
	// A missing .env is fine; the real environment is authoritative.
	_ = godotenv.Load()

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}
	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI is required")
	}
	return &cfg, nil
}

// Origins splits AllowedOrigins into the list rs/cors expects.
func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
