package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/authgate/logger"
)

// Factory creates a Backend from configuration.
type Factory func(ctx context.Context, cfg Config, log *logger.Logger) (Backend, error)

var (
	factoriesMu sync.RWMutex
	factories   = map[string]Factory{
		DriverMemory: func(context.Context, Config, *logger.Logger) (Backend, error) {
			return NewMemory(), nil
		},
	}
)

// RegisterFactory registers a backend factory for the given driver name.
// Backend packages call this from an init function.
func RegisterFactory(driver string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[driver] = f
}

// Open creates the Backend selected by cfg.Driver.
func Open(ctx context.Context, cfg Config, log *logger.Logger) (Backend, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	factoriesMu.RLock()
	f, ok := factories[cfg.Driver]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("store: driver %q is not linked into this binary", cfg.Driver)
	}

	l := log.WithComponent("store")
	l.Info("Opening credential store", map[string]interface{}{"driver": cfg.Driver})
	return f(ctx, cfg, l)
}
