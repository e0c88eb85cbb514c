// Package auth composes the configuration of the authentication packages:
//
//   - auth/secret: signing secret resolution
//   - auth/password: credential hashing (bcrypt, argon2id)
//   - auth/token: token issuance and verification
//   - auth/bearer: Authorization header parsing
//   - auth/authctx: claims propagation through request context
//
//	auth:
//	  secret: "..."          # or JWT_SECRET
//	  token:
//	    lifetime: "1h"
//	  password:
//	    bcrypt_cost: 10
//	  header:
//	    schemes: ["Bearer"]
package auth

import (
	"fmt"

	"github.com/kbukum/authgate/auth/bearer"
	"github.com/kbukum/authgate/auth/password"
	"github.com/kbukum/authgate/auth/secret"
	"github.com/kbukum/authgate/auth/token"
)

// Config holds all authentication configuration.
type Config struct {
	// Secret overrides the signing secret. Empty falls back to JWT_SECRET,
	// then to secret.DefaultSecret.
	Secret string `mapstructure:"secret"`

	Token    token.Config    `mapstructure:"token"`
	Password password.Config `mapstructure:"password"`
	Header   bearer.Config   `mapstructure:"header"`
}

// ApplyDefaults sets sensible defaults on all sub-configurations.
func (c *Config) ApplyDefaults() {
	c.Token.ApplyDefaults()
	c.Password.ApplyDefaults()
	c.Header.ApplyDefaults()
}

// Validate checks all sub-configurations.
func (c *Config) Validate() error {
	if err := c.Token.Validate(); err != nil {
		return fmt.Errorf("auth.token: %w", err)
	}
	if err := c.Password.Validate(); err != nil {
		return fmt.Errorf("auth.password: %w", err)
	}
	if err := c.Header.Validate(); err != nil {
		return fmt.Errorf("auth.header: %w", err)
	}
	return nil
}

// SecretProvider resolves the signing secret once. Callers construct the
// issuer and verifier from the same returned provider.
func (c *Config) SecretProvider() *secret.Provider {
	if c.Secret != "" {
		return secret.New(c.Secret)
	}
	return secret.FromEnv()
}

// Describe returns a human-readable one-liner for the startup summary.
// Example: "token(HS256) TTL=1h0m0s password=bcrypt(10) schemes=[Bearer]"
func (c *Config) Describe() string {
	pw := string(c.Password.Algorithm)
	if c.Password.Algorithm == password.AlgorithmBcrypt {
		pw = fmt.Sprintf("%s(%d)", pw, c.Password.BcryptCost)
	}
	return fmt.Sprintf("token(%s) TTL=%s password=%s schemes=%v",
		c.Token.Algorithm, c.Token.Lifetime, pw, c.Header.Schemes)
}
