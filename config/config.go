package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/kbukum/authgate/auth"
	"github.com/kbukum/authgate/flow"
	"github.com/kbukum/authgate/logger"
	"github.com/kbukum/authgate/observability"
	"github.com/kbukum/authgate/server"
	"github.com/kbukum/authgate/store"
	"github.com/kbukum/authgate/version"
)

// ServiceName is the default service name used for file lookup and logging.
const ServiceName = "authgate"

// Environments accepted by Validate.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// ErrDefaultSecret is returned by Validate when a production config would
// sign tokens with the built-in development secret.
var ErrDefaultSecret = errors.New("config: the default signing secret is not allowed in production; set auth.secret or JWT_SECRET")

// Config is the complete authgate configuration.
type Config struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Environment string `yaml:"environment" mapstructure:"environment"`
	Version     string `yaml:"version" mapstructure:"version"`
	Debug       bool   `yaml:"debug" mapstructure:"debug"`

	Logging       logger.Config        `yaml:"logging" mapstructure:"logging"`
	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Auth          auth.Config          `yaml:"auth" mapstructure:"auth"`
	Flow          flow.Config          `yaml:"flow" mapstructure:"flow"`
	Store         store.Config         `yaml:"store" mapstructure:"store"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults applies default values to every section.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = ServiceName
	}
	if c.Environment == "" {
		c.Environment = EnvDevelopment
	}
	if c.Version == "" {
		c.Version = version.Version
	}
	if c.Environment == EnvDevelopment {
		c.Debug = true
	}
	if c.Logging.ServiceName == "" {
		c.Logging.ServiceName = c.Name
	}
	if c.Debug && c.Logging.Level == "" {
		c.Logging.Level = "debug"
	}
	c.Logging.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Auth.ApplyDefaults()
	c.Flow.ApplyDefaults()
	c.Store.ApplyDefaults()

	if c.Observability.ServiceName == "" {
		c.Observability.ServiceName = c.Name
	}
	if c.Observability.ServiceVersion == "" {
		c.Observability.ServiceVersion = c.Version
	}
	if c.Observability.Environment == "" {
		c.Observability.Environment = c.Environment
	}
	c.Observability.ApplyDefaults()
}

// Validate validates every section. In production the signing secret must
// not be the built-in default.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config.name is required")
	}
	valid := []string{EnvDevelopment, EnvStaging, EnvProduction}
	if !slices.Contains(valid, c.Environment) {
		return fmt.Errorf("config.environment must be one of %v (got: %s)", valid, c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("config.server: %w", err)
	}
	if err := c.Auth.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.Flow.Validate(); err != nil {
		return fmt.Errorf("config.flow: %w", err)
	}
	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("config.observability: %w", err)
	}
	if c.Environment == EnvProduction && c.Auth.SecretProvider().IsDefault() {
		return ErrDefaultSecret
	}
	return nil
}
