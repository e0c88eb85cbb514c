package token

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// MaxAttributes bounds the extension map carried in a token.
const MaxAttributes = 16

// DefaultSubject is the role marker written into every token.
const DefaultSubject = "user"

var sensitiveNames = []string{"password", "hash", "secret", "token"}

// Claims is the decoded token payload.
//
// The structure is closed: only the fields below are read back from a token
// and the Attributes map is bounded in size and restricted to scalar values.
type Claims struct {
	Subject    string           `json:"subject"`
	Username   string           `json:"username"`
	Attributes map[string]any   `json:"attrs,omitempty"`
	IssuedAt   *jwt.NumericDate `json:"iat"`
	ExpiresAt  *jwt.NumericDate `json:"exp"`
}

var _ jwt.Claims = (*Claims)(nil)

func (c *Claims) GetExpirationTime() (*jwt.NumericDate, error) { return c.ExpiresAt, nil }
func (c *Claims) GetIssuedAt() (*jwt.NumericDate, error)       { return c.IssuedAt, nil }
func (c *Claims) GetNotBefore() (*jwt.NumericDate, error)      { return nil, nil }
func (c *Claims) GetIssuer() (string, error)                   { return "", nil }
func (c *Claims) GetSubject() (string, error)                  { return c.Subject, nil }
func (c *Claims) GetAudience() (jwt.ClaimStrings, error)       { return nil, nil }

// Validate is called by the jwt parser after the registered time claims
// have been checked.
func (c *Claims) Validate() error {
	if c.Username == "" {
		return errors.New("username claim is required")
	}
	if c.Subject == "" {
		return errors.New("subject claim is required")
	}
	if c.IssuedAt == nil {
		return errors.New("iat claim is required")
	}
	return validateAttributes(c.Attributes)
}

// Attribute returns a single extension attribute.
func (c *Claims) Attribute(name string) (any, bool) {
	v, ok := c.Attributes[name]
	return v, ok
}

func validateAttributes(attrs map[string]any) error {
	if len(attrs) > MaxAttributes {
		return fmt.Errorf("too many attributes: %d > %d", len(attrs), MaxAttributes)
	}
	for k, v := range attrs {
		if IsSensitiveName(k) {
			return fmt.Errorf("attribute %q is not allowed in a token", k)
		}
		if !isScalar(v) {
			return fmt.Errorf("attribute %q must be a scalar value", k)
		}
	}
	return nil
}

// IsSensitiveName reports whether an attribute name looks like it carries
// credential material.
func IsSensitiveName(name string) bool {
	n := strings.ToLower(name)
	for _, s := range sensitiveNames {
		if strings.Contains(n, s) {
			return true
		}
	}
	return false
}

func isScalar(v any) bool {
	switch v.(type) {
	case nil, string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	default:
		return false
	}
}
