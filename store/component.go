package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/authgate/component"
	"github.com/kbukum/authgate/logger"
	"github.com/kbukum/authgate/resilience"
)

// ErrNotStarted is returned by Component's Store methods before Start.
var ErrNotStarted = errors.New("store: not started")

// Component opens the configured Backend on Start and closes it on Stop.
// It implements Store by delegating to the opened backend, so it can be
// handed to consumers before the registry starts it.
type Component struct {
	cfg     Config
	log     *logger.Logger
	mu      sync.RWMutex
	backend Backend
}

var (
	_ component.Component = (*Component)(nil)
	_ Store               = (*Component)(nil)
)

// NewComponent creates a store component for use with the component registry.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.Nop()
	}
	return &Component{cfg: cfg, log: log}
}

// Store returns the opened backend, or nil if not started.
func (c *Component) Store() Backend {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.backend
}

// Name returns the component name.
func (c *Component) Name() string { return "store" }

// Start opens the backend and pings it, retrying transient ping failures.
func (c *Component) Start(ctx context.Context) error {
	b, err := Open(ctx, c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("store start: %w", err)
	}
	retry := resilience.DefaultRetryConfig()
	retry.InitialBackoff = 500 * time.Millisecond
	retry.OnRetry = func(attempt int, err error, backoff time.Duration) {
		c.log.Warn("Store ping failed, retrying", map[string]interface{}{
			"attempt":         attempt,
			"driver":          c.cfg.Driver,
			logger.FieldError: err.Error(),
			"backoff":         backoff.String(),
		})
	}
	if err := resilience.RetryFunc(ctx, retry, func() error { return b.Ping(ctx) }); err != nil {
		_ = b.Close()
		return fmt.Errorf("store ping: %w", err)
	}
	c.mu.Lock()
	c.backend = b
	c.mu.Unlock()
	return nil
}

// Stop closes the backend.
func (c *Component) Stop(_ context.Context) error {
	c.mu.Lock()
	b := c.backend
	c.backend = nil
	c.mu.Unlock()
	if b == nil {
		return nil
	}
	return b.Close()
}

// Health pings the backend.
func (c *Component) Health(ctx context.Context) component.Health {
	b := c.Store()
	if b == nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: "store not initialized",
		}
	}
	if err := b.Ping(ctx); err != nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: fmt.Sprintf("ping failed: %v", err),
		}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// schemaVersioner is implemented by backends whose schema is migrated.
type schemaVersioner interface {
	SchemaVersion() (uint, error)
}

// Describe returns summary info for the startup log.
func (c *Component) Describe() component.Description {
	details := "driver=" + c.cfg.Driver
	switch c.cfg.Driver {
	case DriverSQLite:
		details += " dsn=" + c.cfg.SQLite.DSN
	case DriverRedis:
		details += fmt.Sprintf(" addr=%s db=%d", c.cfg.Redis.Addr, c.cfg.Redis.DB)
	}
	if v, ok := c.Store().(schemaVersioner); ok {
		if n, err := v.SchemaVersion(); err == nil {
			details += fmt.Sprintf(" schema=v%d", n)
		}
	}
	return component.Description{Name: "Credential Store", Type: "store", Details: details}
}

func (c *Component) FindByUsername(ctx context.Context, username string) (*Record, error) {
	b := c.Store()
	if b == nil {
		return nil, ErrNotStarted
	}
	return b.FindByUsername(ctx, username)
}

func (c *Component) Add(ctx context.Context, rec Record) (*Record, error) {
	b := c.Store()
	if b == nil {
		return nil, ErrNotStarted
	}
	return b.Add(ctx, rec)
}

func (c *Component) List(ctx context.Context) ([]Record, error) {
	b := c.Store()
	if b == nil {
		return nil, ErrNotStarted
	}
	return b.List(ctx)
}
