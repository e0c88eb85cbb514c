// Package password provides one-way salted hashing of credential secrets.
//
// Hash strings are self-describing: the algorithm, cost and salt travel inside
// the stored value, so a Hasher can be reconfigured (new cost, new algorithm)
// without breaking hashes that are already persisted.
//
//	hasher := password.NewBcryptHasher(password.WithCost(10))
//	hash, err := hasher.Hash("s3cret")
//	ok, err := hasher.Verify("s3cret", hash)
package password

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidInput is returned when a plaintext is empty or too long.
	ErrInvalidInput = errors.New("password: invalid input")
	// ErrMalformedHash is returned when a stored hash is not in a recognized format.
	ErrMalformedHash = errors.New("password: malformed hash")
)

// BcryptMaxLength is the number of bytes bcrypt actually consumes.
const BcryptMaxLength = 72

// Hasher defines the interface for password hashing and verification.
type Hasher interface {
	// Hash returns a salted one-way hash of plaintext.
	Hash(plaintext string) (string, error)

	// Verify reports whether plaintext matches hash. A mismatch is (false, nil);
	// an error is returned only when hash is not a recognizable hash.
	Verify(plaintext, hash string) (bool, error)

	// NeedsRehash reports whether hash was produced with parameters other than
	// the hasher's current ones.
	NeedsRehash(hash string) bool
}

// --- Bcrypt Implementation ---

// BcryptHasher implements Hasher using bcrypt.
type BcryptHasher struct {
	cost      int
	minLength int
}

// BcryptOption configures the bcrypt hasher.
type BcryptOption func(*BcryptHasher)

// WithCost sets the bcrypt cost parameter (default: 10, range: 4-31).
// Each increment doubles the work.
func WithCost(cost int) BcryptOption {
	return func(h *BcryptHasher) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			h.cost = cost
		}
	}
}

// WithMinLength sets the minimum accepted plaintext length (default: 1).
func WithMinLength(n int) BcryptOption {
	return func(h *BcryptHasher) {
		if n > 0 {
			h.minLength = n
		}
	}
}

// NewBcryptHasher creates a bcrypt-based password hasher.
func NewBcryptHasher(opts ...BcryptOption) *BcryptHasher {
	h := &BcryptHasher{cost: bcrypt.DefaultCost, minLength: 1}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Cost returns the configured cost factor.
func (h *BcryptHasher) Cost() int { return h.cost }

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	return h.HashWithCost(plaintext, h.cost)
}

// HashWithCost hashes plaintext with an explicit cost factor.
func (h *BcryptHasher) HashWithCost(plaintext string, cost int) (string, error) {
	if err := checkInput(plaintext, h.minLength, BcryptMaxLength); err != nil {
		return "", err
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return "", fmt.Errorf("%w: cost must be between %d and %d (got: %d)",
			ErrInvalidInput, bcrypt.MinCost, bcrypt.MaxCost, cost)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return "", fmt.Errorf("password: hash: %w", err)
	}
	return string(hash), nil
}

func (h *BcryptHasher) Verify(plaintext, hash string) (bool, error) {
	if !isBcrypt(hash) {
		return false, ErrMalformedHash
	}
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
	if plaintext == "" || len(plaintext) > BcryptMaxLength {
		return false, nil
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
}

func (h *BcryptHasher) NeedsRehash(hash string) bool {
	if !isBcrypt(hash) {
		return true
	}
	cost, err := bcrypt.Cost([]byte(hash))
	return err != nil || cost != h.cost
}

func isBcrypt(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") ||
		strings.HasPrefix(hash, "$2b$") ||
		strings.HasPrefix(hash, "$2y$")
}

func checkInput(plaintext string, minLength, maxLength int) error {
	if plaintext == "" {
		return fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	if len(plaintext) < minLength {
		return fmt.Errorf("%w: minimum length is %d characters", ErrInvalidInput, minLength)
	}
	if len(plaintext) > maxLength {
		return fmt.Errorf("%w: maximum length is %d characters", ErrInvalidInput, maxLength)
	}
	return nil
}
