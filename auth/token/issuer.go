// Package token issues and verifies HMAC-signed access tokens.
//
// Issuer and Verifier are built from the same secret.Provider; neither reads
// configuration on its own.
//
//	issuer, _ := token.NewIssuer(cfg, provider)
//	verifier, _ := token.NewVerifier(cfg, provider)
//	tok, _ := issuer.Issue(token.Principal{Username: "alice"}, 0)
//	claims, err := verifier.Verify(tok)
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/authgate/auth/secret"
)

var (
	// ErrSignature means the token was not signed with the configured secret
	// and algorithm.
	ErrSignature = errors.New("token: invalid signature")
	// ErrExpired means the token's exp is at or before the current time.
	ErrExpired = errors.New("token: expired")
	// ErrMalformedToken means the token could not be decoded or its claims
	// do not have the required shape.
	ErrMalformedToken = errors.New("token: malformed")
	// ErrInvalidPrincipal means Issue was called without a username or with
	// attributes that cannot be embedded.
	ErrInvalidPrincipal = errors.New("token: invalid principal")
)

// Principal identifies the subject a token is issued for.
type Principal struct {
	Username   string
	Attributes map[string]any
}

// Option configures an Issuer or Verifier.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Issuer signs tokens for authenticated principals.
type Issuer struct {
	cfg     Config
	method  jwt.SigningMethod
	key     []byte
	allowed map[string]struct{}
	now     func() time.Time
}

// NewIssuer creates an Issuer signing with provider's secret.
func NewIssuer(cfg Config, provider *secret.Provider, opts ...Option) (*Issuer, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("token: %w", err)
	}
	if provider == nil {
		return nil, errors.New("token: secret provider is required")
	}
	allowed := make(map[string]struct{}, len(cfg.ClaimAttributes))
	for _, name := range cfg.ClaimAttributes {
		allowed[name] = struct{}{}
	}
	o := buildOptions(opts)
	return &Issuer{
		cfg:     cfg,
		method:  signingMethod(cfg.Algorithm),
		key:     provider.SigningSecret(),
		allowed: allowed,
		now:     o.now,
	}, nil
}

// Lifetime returns the default token lifetime.
func (i *Issuer) Lifetime() time.Duration { return i.cfg.Lifetime }

// Issue returns a signed token for p. A lifetime <= 0 uses the configured
// default. The lifetime is truncated to whole seconds, so exp - iat equals
// the truncated lifetime exactly.
func (i *Issuer) Issue(p Principal, lifetime time.Duration) (string, error) {
	if p.Username == "" {
		return "", fmt.Errorf("%w: username is required", ErrInvalidPrincipal)
	}
	if lifetime <= 0 {
		lifetime = i.cfg.Lifetime
	}
	lifetime = lifetime.Truncate(time.Second)
	if lifetime < time.Second {
		return "", fmt.Errorf("%w: lifetime must be at least 1s", ErrInvalidPrincipal)
	}

	attrs, err := i.attributes(p.Attributes)
	if err != nil {
		return "", err
	}

	iat := i.now().Truncate(time.Second)
	claims := &Claims{
		Subject:    i.cfg.Subject,
		Username:   p.Username,
		Attributes: attrs,
		IssuedAt:   jwt.NewNumericDate(iat),
		ExpiresAt:  jwt.NewNumericDate(iat.Add(lifetime)),
	}

	signed, err := jwt.NewWithClaims(i.method, claims).SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// attributes keeps only allow-listed, non-sensitive scalar attributes.
func (i *Issuer) attributes(in map[string]any) (map[string]any, error) {
	if len(in) == 0 || len(i.allowed) == 0 {
		return nil, nil
	}
	out := make(map[string]any)
	for k, v := range in {
		if _, ok := i.allowed[k]; !ok || IsSensitiveName(k) || !isScalar(v) {
			continue
		}
		out[k] = v
	}
	if err := validateAttributes(out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrincipal, err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}
