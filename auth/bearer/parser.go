// Package bearer extracts credentials from Authorization header values.
package bearer

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"
)

// HeaderName is the request header carrying credentials.
const HeaderName = "Authorization"

var (
	// ErrMissingHeader is returned when the header is absent or blank.
	ErrMissingHeader = errors.New("bearer: missing authorization header")
	// ErrMalformedHeader is returned when the value is not "<scheme> <token>".
	ErrMalformedHeader = errors.New("bearer: malformed authorization header")
	// ErrUnsupportedScheme is returned for a well-formed header with an
	// unrecognized scheme.
	ErrUnsupportedScheme = errors.New("bearer: unsupported scheme")
)

// Credential is a parsed Authorization header.
type Credential struct {
	Scheme string
	Token  string
}

// Config configures accepted schemes.
type Config struct {
	// Schemes lists accepted schemes, compared case-insensitively
	// (default: ["Bearer"]).
	Schemes []string `mapstructure:"schemes"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if len(c.Schemes) == 0 {
		c.Schemes = []string{"Bearer"}
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	for _, s := range c.Schemes {
		if s == "" || strings.IndexFunc(s, unicode.IsSpace) >= 0 {
			return fmt.Errorf("invalid scheme %q", s)
		}
	}
	return nil
}

// Parser parses Authorization header values.
type Parser struct {
	schemes []string
}

// NewParser creates a Parser for cfg.
func NewParser(cfg Config) *Parser {
	cfg.ApplyDefaults()
	return &Parser{schemes: cfg.Schemes}
}

// Parse splits raw into scheme and token. Surrounding whitespace is ignored;
// scheme and token must be separated by whitespace and the token itself must
// not contain any.
func (p *Parser) Parse(raw string) (Credential, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Credential{}, ErrMissingHeader
	}

	i := strings.IndexFunc(raw, unicode.IsSpace)
	if i < 0 {
		return Credential{}, ErrMalformedHeader
	}
	scheme := raw[:i]
	tok := strings.TrimSpace(raw[i:])
	if tok == "" || strings.IndexFunc(tok, unicode.IsSpace) >= 0 {
		return Credential{}, ErrMalformedHeader
	}

	for _, s := range p.schemes {
		if strings.EqualFold(s, scheme) {
			return Credential{Scheme: s, Token: tok}, nil
		}
	}
	return Credential{Scheme: scheme}, fmt.Errorf("%w: %s", ErrUnsupportedScheme, scheme)
}

// ParseRequest parses the Authorization header of r.
func (p *Parser) ParseRequest(r *http.Request) (Credential, error) {
	return p.Parse(r.Header.Get(HeaderName))
}
