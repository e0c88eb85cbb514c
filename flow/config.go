package flow

import (
	"fmt"
	"runtime"
)

// Config tunes the register and login flows.
type Config struct {
	// MaxConcurrentHashes bounds how many hash or verify computations run at
	// once. Defaults to GOMAXPROCS.
	MaxConcurrentHashes int `mapstructure:"max_concurrent_hashes"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.MaxConcurrentHashes == 0 {
		c.MaxConcurrentHashes = runtime.GOMAXPROCS(0)
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.MaxConcurrentHashes < 1 {
		return fmt.Errorf("max_concurrent_hashes must be positive, got %d", c.MaxConcurrentHashes)
	}
	return nil
}
