// Package secret resolves the HMAC signing key shared by the token issuer and
// verifier.
//
// A Provider is built once at process start and handed to both sides; neither
// side reads configuration on its own.
package secret

import "os"

// DefaultSecret is the insecure development fallback used when no override is
// configured. Never rely on it outside local development.
const DefaultSecret = "wethotuwasatoad"

// EnvVar is the environment variable consulted by FromEnv.
const EnvVar = "JWT_SECRET"

// Provider is a read-only signing key. It is safe for concurrent use.
type Provider struct {
	key       []byte
	isDefault bool
}

// New returns a Provider for the given override, falling back to DefaultSecret
// when override is empty.
func New(override string) *Provider {
	if override == "" {
		return &Provider{key: []byte(DefaultSecret), isDefault: true}
	}
	return &Provider{key: []byte(override)}
}

// FromEnv returns a Provider resolved from the JWT_SECRET environment variable.
func FromEnv() *Provider {
	return New(os.Getenv(EnvVar))
}

// SigningSecret returns a copy of the key.
func (p *Provider) SigningSecret() []byte {
	out := make([]byte, len(p.key))
	copy(out, p.key)
	return out
}

// IsDefault reports whether the insecure fallback is in use.
func (p *Provider) IsDefault() bool {
	return p.isDefault
}

// String never reveals the key.
func (p *Provider) String() string {
	if p.isDefault {
		return "secret(default)"
	}
	return "secret(configured)"
}
