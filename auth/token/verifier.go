package token

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/authgate/auth/secret"
)

// Verifier checks token signatures and expiry.
type Verifier struct {
	method jwt.SigningMethod
	key    []byte
	parser *jwt.Parser
}

// NewVerifier creates a Verifier accepting tokens signed with provider's secret.
func NewVerifier(cfg Config, provider *secret.Provider, opts ...Option) (*Verifier, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("token: %w", err)
	}
	if provider == nil {
		return nil, errors.New("token: secret provider is required")
	}
	o := buildOptions(opts)
	method := signingMethod(cfg.Algorithm)
	return &Verifier{
		method: method,
		key:    provider.SigningSecret(),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{method.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithIssuedAt(),
			jwt.WithLeeway(cfg.Leeway),
			jwt.WithTimeFunc(o.now),
		),
	}, nil
}

// Verify decodes tok and returns its claims. Errors wrap exactly one of
// ErrSignature, ErrExpired or ErrMalformedToken.
func (v *Verifier) Verify(tok string) (*Claims, error) {
	if strings.Count(tok, ".") != 2 {
		return nil, fmt.Errorf("%w: token must have three segments", ErrMalformedToken)
	}

	claims := &Claims{}
	parsed, err := v.parser.ParseWithClaims(tok, claims, v.keyFunc)
	if err != nil {
		return nil, classify(err)
	}
	if !parsed.Valid {
		return nil, ErrMalformedToken
	}
	return claims, nil
}

func (v *Verifier) keyFunc(t *jwt.Token) (interface{}, error) {
	if t.Method.Alg() != v.method.Alg() {
		return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
	}
	return v.key, nil
}

// classify maps jwt parser errors onto the package sentinels. Expiry is
// checked first because the parser reports it only after the signature
// has been verified.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrSignature, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
}
