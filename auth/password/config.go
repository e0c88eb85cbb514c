package password

import (
	"fmt"
	"strings"
)

// Algorithm represents supported password hashing algorithms.
type Algorithm string

const (
	// AlgorithmBcrypt is bcrypt hashing.
	AlgorithmBcrypt Algorithm = "bcrypt"

	// AlgorithmArgon2id is argon2id hashing.
	AlgorithmArgon2id Algorithm = "argon2id"
)

// Config configures password hashing behavior.
// Loadable from YAML/env via mapstructure tags.
type Config struct {
	// Algorithm selects the hashing algorithm for new hashes (default: "bcrypt").
	Algorithm Algorithm `mapstructure:"algorithm"`

	// BcryptCost is the bcrypt cost parameter (default: 10, range: 4-31).
	BcryptCost int `mapstructure:"bcrypt_cost"`

	// Argon2Time is the number of iterations for argon2id (default: 1).
	Argon2Time uint32 `mapstructure:"argon2_time"`

	// Argon2Memory is the memory usage in KiB for argon2id (default: 65536 = 64MB).
	Argon2Memory uint32 `mapstructure:"argon2_memory"`

	// Argon2Threads is the parallelism for argon2id (default: 4).
	Argon2Threads uint8 `mapstructure:"argon2_threads"`

	// MinLength is the minimum password length (default: 1).
	MinLength int `mapstructure:"min_length"`

	// MaxLength is the maximum password length (default: 72, the bcrypt limit).
	MaxLength int `mapstructure:"max_length"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Algorithm == "" {
		c.Algorithm = AlgorithmBcrypt
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = 10
	}
	if c.Argon2Time == 0 {
		c.Argon2Time = 1
	}
	if c.Argon2Memory == 0 {
		c.Argon2Memory = 64 * 1024
	}
	if c.Argon2Threads == 0 {
		c.Argon2Threads = 4
	}
	if c.MinLength == 0 {
		c.MinLength = 1
	}
	if c.MaxLength == 0 {
		c.MaxLength = BcryptMaxLength
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch c.Algorithm {
	case AlgorithmBcrypt, AlgorithmArgon2id:
	default:
		return fmt.Errorf("unsupported algorithm: %s (use bcrypt or argon2id)", c.Algorithm)
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("bcrypt_cost must be between 4 and 31 (got: %d)", c.BcryptCost)
	}
	if c.MinLength < 1 {
		return fmt.Errorf("min_length must be >= 1 (got: %d)", c.MinLength)
	}
	if c.MaxLength < c.MinLength {
		return fmt.Errorf("max_length must be >= min_length (got: %d < %d)", c.MaxLength, c.MinLength)
	}
	if c.Algorithm == AlgorithmBcrypt && c.MaxLength > BcryptMaxLength {
		return fmt.Errorf("max_length must be <= %d for bcrypt (got: %d)", BcryptMaxLength, c.MaxLength)
	}
	return nil
}

// MultiHasher hashes with one configured algorithm and verifies any
// supported self-describing hash, so changing the algorithm or cost never
// invalidates stored credentials.
type MultiHasher struct {
	algorithm Algorithm
	bcrypt    *BcryptHasher
	argon2    *Argon2Hasher
}

// NewHasher creates a MultiHasher from configuration.
func NewHasher(cfg Config) *MultiHasher {
	cfg.ApplyDefaults()
	return &MultiHasher{
		algorithm: cfg.Algorithm,
		bcrypt: NewBcryptHasher(
			WithCost(cfg.BcryptCost),
			WithMinLength(cfg.MinLength),
		),
		argon2: NewArgon2Hasher(
			WithArgon2Time(cfg.Argon2Time),
			WithArgon2Memory(cfg.Argon2Memory),
			WithArgon2Threads(cfg.Argon2Threads),
			WithArgon2Lengths(cfg.MinLength, cfg.MaxLength),
		),
	}
}

// Algorithm returns the algorithm used for new hashes.
func (m *MultiHasher) Algorithm() Algorithm { return m.algorithm }

func (m *MultiHasher) Hash(plaintext string) (string, error) {
	return m.primary().Hash(plaintext)
}

// HashWithCost hashes with bcrypt at an explicit cost regardless of the
// configured algorithm.
func (m *MultiHasher) HashWithCost(plaintext string, cost int) (string, error) {
	return m.bcrypt.HashWithCost(plaintext, cost)
}

func (m *MultiHasher) Verify(plaintext, hash string) (bool, error) {
	h, err := m.forHash(hash)
	if err != nil {
		return false, err
	}
	return h.Verify(plaintext, hash)
}

func (m *MultiHasher) NeedsRehash(hash string) bool {
	h, err := m.forHash(hash)
	if err != nil || h != m.primary() {
		return true
	}
	return h.NeedsRehash(hash)
}

func (m *MultiHasher) primary() Hasher {
	if m.algorithm == AlgorithmArgon2id {
		return m.argon2
	}
	return m.bcrypt
}

func (m *MultiHasher) forHash(hash string) (Hasher, error) {
	switch {
	case isBcrypt(hash):
		return m.bcrypt, nil
	case strings.HasPrefix(hash, argon2Prefix):
		return m.argon2, nil
	default:
		return nil, ErrMalformedHash
	}
}
