package store

import (
	"fmt"

	"github.com/kbukum/authgate/database"
	"github.com/kbukum/authgate/redis"
)

// Driver constants for supported backends.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Config selects and configures the credential store.
type Config struct {
	// Driver selects the backend: "memory", "sqlite" or "redis" (default: memory).
	Driver string `mapstructure:"driver"`

	// SQLite configures the sqlite backend.
	SQLite database.Config `mapstructure:"sqlite"`

	// Redis configures the redis backend.
	Redis redis.Config `mapstructure:"redis"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields. Only the
// selected backend's sub-config is defaulted.
func (c *Config) ApplyDefaults() {
	if c.Driver == "" {
		c.Driver = DriverMemory
	}
	switch c.Driver {
	case DriverSQLite:
		c.SQLite.ApplyDefaults()
	case DriverRedis:
		c.Redis.ApplyDefaults()
	}
}

// Validate checks the selected backend's configuration.
func (c *Config) Validate() error {
	switch c.Driver {
	case DriverMemory:
		return nil
	case DriverSQLite:
		if err := c.SQLite.Validate(); err != nil {
			return fmt.Errorf("store.sqlite: %w", err)
		}
		return nil
	case DriverRedis:
		if err := c.Redis.Validate(); err != nil {
			return fmt.Errorf("store.redis: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("store: unsupported driver %q (use memory, sqlite or redis)", c.Driver)
	}
}
