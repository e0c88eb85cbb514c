// Package flow orchestrates registration and login on top of the password,
// token and store packages. It converts collaborator failures into its own
// sentinel errors; AppError maps those to HTTP-facing errors at the edge.
package flow

import (
	"context"
	stderrors "errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/semaphore"

	"github.com/kbukum/authgate/auth/password"
	"github.com/kbukum/authgate/auth/token"
	"github.com/kbukum/authgate/errors"
	"github.com/kbukum/authgate/logger"
	"github.com/kbukum/authgate/observability"
	"github.com/kbukum/authgate/store"
	"github.com/kbukum/authgate/validation"
)

// Store is the storage the flow reads and writes.
type Store interface {
	FindByUsername(ctx context.Context, username string) (*store.Record, error)
	Add(ctx context.Context, rec store.Record) (*store.Record, error)
}

// TokenIssuer signs tokens for authenticated users.
type TokenIssuer interface {
	Issue(p token.Principal, lifetime time.Duration) (string, error)
}

// RegisterInput is a registration request. Profile carries any extra fields
// the caller sent; they are stored verbatim apart from reserved keys.
type RegisterInput struct {
	Username string         `json:"username" validate:"required,max=64,username"`
	Password string         `json:"password" validate:"required"`
	Profile  map[string]any `json:"-"`
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// reservedProfileKeys are owned by the record and never taken from Profile.
var reservedProfileKeys = []string{"id", "username", "password", "password_hash", "created_at"}

// dummyPassword is hashed once at startup and compared against on unknown
// usernames so a miss costs the same as a wrong password. The dummy uses the
// configured algorithm and parameters, so the costs match for users whose
// stored hash is current. Hashes left from an earlier algorithm or cost
// (NeedsRehash) verify at their own cost and stay distinguishable by timing
// until those users register again under the current settings.
const dummyPassword = "authgate-timing-equalizer"

// Service runs the register and login flows.
type Service struct {
	store  Store
	hasher password.Hasher
	issuer TokenIssuer
	slots  *semaphore.Weighted
	dummy  string
	log    *logger.Logger

	registerTotal metric.Int64Counter
	loginTotal    metric.Int64Counter
	hashDuration  metric.Float64Histogram
}

// Option customizes a Service.
type Option func(*serviceOptions)

type serviceOptions struct {
	meter metric.Meter
}

// WithMeter records flow metrics on m instead of the global meter.
func WithMeter(m metric.Meter) Option {
	return func(o *serviceOptions) { o.meter = m }
}

// New builds a Service. It hashes the timing-equalizer password once, so it
// costs one hash computation.
func New(cfg Config, st Store, hasher password.Hasher, issuer TokenIssuer, log *logger.Logger, opts ...Option) (*Service, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("flow: %w", err)
	}
	if st == nil || hasher == nil || issuer == nil {
		return nil, fmt.Errorf("flow: store, hasher and issuer are required")
	}
	if log == nil {
		log = logger.Nop()
	}

	o := serviceOptions{meter: observability.Meter(observability.InstrumentationName)}
	for _, opt := range opts {
		opt(&o)
	}

	dummy, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("flow: preparing dummy hash: %w", err)
	}

	s := &Service{
		store:  st,
		hasher: hasher,
		issuer: issuer,
		slots:  semaphore.NewWeighted(int64(cfg.MaxConcurrentHashes)),
		dummy:  dummy,
		log:    log.WithComponent("flow"),
	}
	if err := s.initMetrics(o.meter); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) initMetrics(m metric.Meter) error {
	var err error
	if s.registerTotal, err = m.Int64Counter("authgate.register.total",
		metric.WithDescription("Registration attempts by outcome"),
	); err != nil {
		return fmt.Errorf("flow: creating register counter: %w", err)
	}
	if s.loginTotal, err = m.Int64Counter("authgate.login.total",
		metric.WithDescription("Login attempts by outcome"),
	); err != nil {
		return fmt.Errorf("flow: creating login counter: %w", err)
	}
	if s.hashDuration, err = m.Float64Histogram("authgate.hash.duration",
		metric.WithDescription("Time spent hashing or verifying passwords"),
		metric.WithUnit("s"),
	); err != nil {
		return fmt.Errorf("flow: creating hash histogram: %w", err)
	}
	return nil
}

// Register validates in, hashes the password and persists the record. The
// returned record carries the hash in place of the password.
func (s *Service) Register(ctx context.Context, in RegisterInput) (rec *store.Record, err error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanRegister)
	defer func() {
		s.finish(ctx, s.registerTotal, "register", in.Username, err)
		span.End()
	}()

	if verr := validation.Validate(in); verr != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, verr)
	}

	hash, err := s.hash(ctx, in.Password)
	if err != nil {
		return nil, err
	}
	// A hash computed for a request that is already gone is never stored.
	if cerr := ctx.Err(); cerr != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, cerr)
	}

	profile := maps.Clone(in.Profile)
	for _, k := range reservedProfileKeys {
		delete(profile, k)
	}
	if len(profile) == 0 {
		profile = nil
	}

	rec, err = s.store.Add(ctx, store.Record{
		Username:     in.Username,
		PasswordHash: hash,
		Profile:      profile,
	})
	switch {
	case err == nil:
		return rec, nil
	case stderrors.Is(err, store.ErrConflict):
		return nil, fmt.Errorf("%w: %s", ErrConflict, in.Username)
	default:
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
}

// Login checks the credential and returns a signed token. Unknown usernames
// and wrong passwords both return ErrInvalidCredentials after the same amount
// of hashing work.
func (s *Service) Login(ctx context.Context, username, plaintext string) (res *LoginResult, err error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanLogin)
	defer func() {
		s.finish(ctx, s.loginTotal, "login", username, err)
		span.End()
	}()

	if verr := validation.New().Present("username", username).Present("password", plaintext).Validate(); verr != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, verr)
	}

	rec, err := s.store.FindByUsername(ctx, username)
	switch {
	case stderrors.Is(err, store.ErrNotFound):
		if _, verr := s.verify(ctx, plaintext, s.dummy); stderrors.Is(verr, ErrStorage) {
			return nil, verr
		}
		return nil, ErrInvalidCredentials
	case err != nil:
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	ok, err := s.verify(ctx, plaintext, rec.PasswordHash)
	switch {
	case stderrors.Is(err, password.ErrMalformedHash):
		return nil, fmt.Errorf("%w: stored hash for %q is unreadable: %w", ErrStorage, username, err)
	case err != nil:
		return nil, err
	case !ok:
		return nil, ErrInvalidCredentials
	}

	if s.hasher.NeedsRehash(rec.PasswordHash) {
		s.log.Debug("stored hash uses outdated parameters", logger.Fields(logger.FieldUsername, username))
	}

	signed, err := s.issuer.Issue(token.Principal{Username: rec.Username, Attributes: rec.Profile}, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: issuing token: %w", ErrInternal, err)
	}
	return &LoginResult{Message: "Welcome " + rec.Username + "!", Token: signed}, nil
}

// hash computes a password hash inside a hash slot.
func (s *Service) hash(ctx context.Context, plaintext string) (string, error) {
	if err := s.acquire(ctx); err != nil {
		return "", err
	}
	defer s.slots.Release(1)

	start := time.Now()
	hash, err := s.hasher.Hash(plaintext)
	s.recordHash(ctx, "hash", start)
	if stderrors.Is(err, password.ErrInvalidInput) {
		reason := strings.TrimPrefix(err.Error(), password.ErrInvalidInput.Error()+": ")
		return "", fmt.Errorf("%w: %w", ErrInvalidInput, errors.InvalidInput("password", reason))
	}
	if err != nil {
		return "", fmt.Errorf("%w: hashing password: %w", ErrInternal, err)
	}
	return hash, nil
}

// verify compares plaintext against hash inside a hash slot.
func (s *Service) verify(ctx context.Context, plaintext, hash string) (bool, error) {
	if err := s.acquire(ctx); err != nil {
		return false, err
	}
	defer s.slots.Release(1)

	start := time.Now()
	ok, err := s.hasher.Verify(plaintext, hash)
	s.recordHash(ctx, "verify", start)
	return ok, err
}

func (s *Service) acquire(ctx context.Context) error {
	if err := s.slots.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("%w: waiting for hash slot: %w", ErrStorage, err)
	}
	return nil
}

func (s *Service) recordHash(ctx context.Context, op string, start time.Time) {
	s.hashDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("op", op)))
}

// finish records the outcome of a flow on its counter, span and log.
// Storage and internal failures are logged with their cause; caller errors
// are logged at debug level without one.
func (s *Service) finish(ctx context.Context, counter metric.Int64Counter, op, username string, err error) {
	result := outcome(err)
	counter.Add(ctx, 1, metric.WithAttributes(attribute.String(observability.AttrOutcome, result)))
	observability.SetSpanAttribute(ctx, observability.AttrOutcome, result)

	fields := logger.Fields(
		logger.FieldOperation, op,
		logger.FieldUsername, username,
		logger.FieldOutcome, result,
	)
	switch result {
	case "success":
		s.log.Info(op+" succeeded", fields)
	case "storage_error", "internal_error":
		observability.SetSpanError(ctx, err)
		s.log.WithError(err).Error(op+" failed", fields)
	default:
		s.log.Debug(op+" rejected", fields)
	}
}
