package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Supported HMAC algorithms.
const (
	HS256 = "HS256"
	HS384 = "HS384"
	HS512 = "HS512"
)

// Config configures token issuance and verification.
type Config struct {
	// Subject is the fixed role marker (default: "user").
	Subject string `mapstructure:"subject"`

	// Lifetime is the default token lifetime (default: 1h). Whole seconds only.
	Lifetime time.Duration `mapstructure:"lifetime"`

	// Algorithm is the HMAC signing algorithm (default: HS256).
	Algorithm string `mapstructure:"algorithm"`

	// ClaimAttributes lists profile keys that may be embedded as token
	// attributes. Empty means none.
	ClaimAttributes []string `mapstructure:"claim_attributes"`

	// Leeway tolerates clock skew when checking expiry (default: 0).
	Leeway time.Duration `mapstructure:"leeway"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Subject == "" {
		c.Subject = DefaultSubject
	}
	if c.Lifetime == 0 {
		c.Lifetime = time.Hour
	}
	if c.Algorithm == "" {
		c.Algorithm = HS256
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Lifetime < time.Second {
		return fmt.Errorf("lifetime must be at least 1s (got: %s)", c.Lifetime)
	}
	if c.Leeway < 0 {
		return errors.New("leeway must not be negative")
	}
	if signingMethod(c.Algorithm) == nil {
		return fmt.Errorf("unsupported algorithm: %s (use HS256, HS384 or HS512)", c.Algorithm)
	}
	if len(c.ClaimAttributes) > MaxAttributes {
		return fmt.Errorf("claim_attributes allows at most %d entries", MaxAttributes)
	}
	for _, name := range c.ClaimAttributes {
		if IsSensitiveName(name) {
			return fmt.Errorf("claim_attributes: %q may not be embedded in a token", name)
		}
	}
	return nil
}

func signingMethod(alg string) jwt.SigningMethod {
	switch alg {
	case HS256:
		return jwt.SigningMethodHS256
	case HS384:
		return jwt.SigningMethodHS384
	case HS512:
		return jwt.SigningMethodHS512
	default:
		return nil
	}
}
