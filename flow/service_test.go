package flow

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/kbukum/authgate/auth/password"
	"github.com/kbukum/authgate/auth/secret"
	"github.com/kbukum/authgate/auth/token"
	"github.com/kbukum/authgate/errors"
	"github.com/kbukum/authgate/store"
)

type fixture struct {
	svc      *Service
	store    *store.Memory
	hasher   *countingHasher
	verifier *token.Verifier
	reader   *sdkmetric.ManualReader
}

// countingHasher counts Verify calls on top of a fast bcrypt hasher.
type countingHasher struct {
	password.Hasher
	verifies atomic.Int32
}

func (h *countingHasher) Verify(plaintext, hash string) (bool, error) {
	h.verifies.Add(1)
	return h.Hasher.Verify(plaintext, hash)
}

func newFixture(t *testing.T, st Store) *fixture {
	t.Helper()
	mem := store.NewMemory()
	if st == nil {
		st = mem
	}

	provider := secret.New("flow-test-secret")
	issuer, err := token.NewIssuer(token.Config{}, provider)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	verifier, err := token.NewVerifier(token.Config{}, provider)
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}

	hasher := &countingHasher{Hasher: password.NewHasher(password.Config{BcryptCost: 4})}
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	svc, err := New(Config{MaxConcurrentHashes: 2}, st, hasher, issuer, nil, WithMeter(mp.Meter("test")))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return &fixture{svc: svc, store: mem, hasher: hasher, verifier: verifier, reader: reader}
}

func TestRegisterThenLogin(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	rec, err := f.svc.Register(ctx, RegisterInput{
		Username: "alice",
		Password: "s3cret",
		Profile:  map[string]any{"email": "alice@example.com", "password": "leak", "id": "forged"},
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if rec.ID == "" || rec.ID == "forged" {
		t.Errorf("unexpected record ID %q", rec.ID)
	}
	if rec.PasswordHash == "s3cret" || !strings.HasPrefix(rec.PasswordHash, "$2") {
		t.Errorf("PasswordHash = %q, want a bcrypt hash", rec.PasswordHash)
	}
	if rec.Profile["email"] != "alice@example.com" {
		t.Errorf("profile email = %v", rec.Profile["email"])
	}
	if _, ok := rec.Profile["password"]; ok {
		t.Error("reserved profile key password was stored")
	}

	res, err := f.svc.Login(ctx, "alice", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Message != "Welcome alice!" {
		t.Errorf("Message = %q", res.Message)
	}
	claims, err := f.verifier.Verify(res.Token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Username != "alice" {
		t.Errorf("claims.Username = %q, want alice", claims.Username)
	}
	if len(claims.Attributes) != 0 {
		t.Errorf("expected no attributes without an allow-list, got %v", claims.Attributes)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	if _, err := f.svc.Register(ctx, RegisterInput{Username: "alice", Password: "s3cret"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, wrongErr := f.svc.Login(ctx, "alice", "wrong")
	before := f.hasher.verifies.Load()
	_, unknownErr := f.svc.Login(ctx, "bob", "x")

	for name, err := range map[string]error{"wrong password": wrongErr, "unknown user": unknownErr} {
		if !stderrors.Is(err, ErrInvalidCredentials) {
			t.Errorf("%s: err = %v, want ErrInvalidCredentials", name, err)
		}
	}
	if f.hasher.verifies.Load() != before+1 {
		t.Error("expected a dummy comparison for an unknown user")
	}

	a, b := AppError(wrongErr), AppError(unknownErr)
	if a.Message != "Invalid Credentials" || a.Message != b.Message {
		t.Errorf("messages differ: %q vs %q", a.Message, b.Message)
	}
	if a.HTTPStatus != http.StatusUnauthorized || b.HTTPStatus != http.StatusUnauthorized {
		t.Errorf("statuses = %d, %d, want 401", a.HTTPStatus, b.HTTPStatus)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	in := RegisterInput{Username: "alice", Password: "s3cret"}

	if _, err := f.svc.Register(ctx, in); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	_, err := f.svc.Register(ctx, RegisterInput{Username: "alice", Password: "other"})
	if !stderrors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	if got := AppError(err); got.HTTPStatus != http.StatusConflict || got.Code != errors.ErrCodeConflict {
		t.Errorf("AppError = %+v", got)
	}

	// The first registration still logs in.
	if _, err := f.svc.Login(ctx, "alice", "s3cret"); err != nil {
		t.Errorf("Login after duplicate: %v", err)
	}
}

func TestRegisterInvalidInput(t *testing.T) {
	tests := []struct {
		name      string
		in        RegisterInput
		wantField string
	}{
		{"missing username", RegisterInput{Password: "x"}, "username"},
		{"missing password", RegisterInput{Username: "alice"}, "password"},
		{"bad username characters", RegisterInput{Username: "al ice", Password: "x"}, "username"},
		{"password too long", RegisterInput{Username: "alice", Password: strings.Repeat("a", 73)}, "password"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, nil)
			_, err := f.svc.Register(context.Background(), tc.in)
			if !stderrors.Is(err, ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
			appErr := AppError(err)
			if appErr.HTTPStatus != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", appErr.HTTPStatus)
			}
			if got := fmt.Sprint(appErr.Message, appErr.Details); !strings.Contains(got, tc.wantField) {
				t.Errorf("error %q does not mention %q", got, tc.wantField)
			}
			if recs, _ := f.store.List(context.Background()); len(recs) != 0 {
				t.Errorf("expected nothing stored, got %d records", len(recs))
			}
		})
	}
}

func TestLoginMissingFields(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.svc.Login(context.Background(), "", "")
	if !stderrors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

// stubStore returns fixed results.
type stubStore struct {
	rec    *store.Record
	err    error
	addErr error
	adds   int
}

func (s *stubStore) FindByUsername(context.Context, string) (*store.Record, error) {
	return s.rec, s.err
}

func (s *stubStore) Add(_ context.Context, rec store.Record) (*store.Record, error) {
	s.adds++
	if s.addErr != nil {
		return nil, s.addErr
	}
	return &rec, nil
}

func TestLoginMalformedStoredHash(t *testing.T) {
	st := &stubStore{rec: &store.Record{Username: "alice", PasswordHash: "plaintext-by-mistake"}}
	f := newFixture(t, st)

	_, err := f.svc.Login(context.Background(), "alice", "s3cret")
	if !stderrors.Is(err, ErrStorage) {
		t.Fatalf("err = %v, want ErrStorage", err)
	}
	appErr := AppError(err)
	if appErr.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", appErr.HTTPStatus)
	}
	if strings.Contains(appErr.Message, "plaintext-by-mistake") {
		t.Error("client message leaks the stored hash")
	}
}

func TestStorageFailures(t *testing.T) {
	boom := stderrors.New("disk on fire")

	t.Run("lookup", func(t *testing.T) {
		f := newFixture(t, &stubStore{err: boom})
		_, err := f.svc.Login(context.Background(), "alice", "s3cret")
		if !stderrors.Is(err, ErrStorage) || !stderrors.Is(err, boom) {
			t.Fatalf("err = %v, want ErrStorage wrapping cause", err)
		}
	})

	t.Run("add", func(t *testing.T) {
		f := newFixture(t, &stubStore{addErr: boom})
		_, err := f.svc.Register(context.Background(), RegisterInput{Username: "alice", Password: "s3cret"})
		if !stderrors.Is(err, ErrStorage) {
			t.Fatalf("err = %v, want ErrStorage", err)
		}
		if AppError(err).Code != errors.ErrCodeStorage {
			t.Errorf("code = %s, want %s", AppError(err).Code, errors.ErrCodeStorage)
		}
	})
}

func TestRegisterCanceledNeverWrites(t *testing.T) {
	st := &stubStore{}
	f := newFixture(t, st)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.Register(ctx, RegisterInput{Username: "alice", Password: "s3cret"})
	if !stderrors.Is(err, ErrStorage) || !stderrors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want ErrStorage wrapping context.Canceled", err)
	}
	if st.adds != 0 {
		t.Errorf("Add called %d times after cancellation", st.adds)
	}
}

func TestMetricsRecordOutcomes(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, _ = f.svc.Register(ctx, RegisterInput{Username: "alice", Password: "s3cret"})
	_, _ = f.svc.Login(ctx, "alice", "s3cret")
	_, _ = f.svc.Login(ctx, "alice", "wrong")
	_, _ = f.svc.Login(ctx, "bob", "x")

	var rm metricdata.ResourceMetrics
	if err := f.reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}

	logins := map[string]int64{}
	var registers int64
	var hashSamples uint64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch m.Name {
			case "authgate.login.total":
				for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
					v, _ := dp.Attributes.Value(attribute.Key("outcome"))
					logins[v.AsString()] += dp.Value
				}
			case "authgate.register.total":
				for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
					registers += dp.Value
				}
			case "authgate.hash.duration":
				for _, dp := range m.Data.(metricdata.Histogram[float64]).DataPoints {
					hashSamples += dp.Count
				}
			}
		}
	}

	if logins["success"] != 1 || logins["invalid_credentials"] != 2 {
		t.Errorf("login outcomes = %v", logins)
	}
	if registers != 1 {
		t.Errorf("register total = %d, want 1", registers)
	}
	// One hash plus three verifications, the last against the dummy hash.
	if hashSamples != 4 {
		t.Errorf("hash samples = %d, want 4", hashSamples)
	}
}

func TestAppErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   errors.ErrorCode
	}{
		{ErrInvalidInput, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{ErrConflict, http.StatusConflict, errors.ErrCodeConflict},
		{ErrInvalidCredentials, http.StatusUnauthorized, errors.ErrCodeInvalidCredentials},
		{ErrStorage, http.StatusInternalServerError, errors.ErrCodeStorage},
		{ErrInternal, http.StatusInternalServerError, errors.ErrCodeInternal},
		{stderrors.New("unknown"), http.StatusInternalServerError, errors.ErrCodeInternal},
	}
	for _, tc := range tests {
		got := AppError(tc.err)
		if got.HTTPStatus != tc.status || got.Code != tc.code {
			t.Errorf("AppError(%v) = %d %s, want %d %s", tc.err, got.HTTPStatus, got.Code, tc.status, tc.code)
		}
	}
	if AppError(nil) != nil {
		t.Error("AppError(nil) should be nil")
	}
}

func TestConfig(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.MaxConcurrentHashes < 1 {
		t.Errorf("MaxConcurrentHashes = %d after defaults", cfg.MaxConcurrentHashes)
	}
	if err := (&Config{MaxConcurrentHashes: -1}).Validate(); err == nil {
		t.Error("expected error for negative slot count")
	}
}

func TestDummyHashFollowsConfiguredAlgorithm(t *testing.T) {
	tests := []struct {
		name   string
		cfg    password.Config
		prefix string
	}{
		{"bcrypt", password.Config{BcryptCost: 4}, "$2a$04$"},
		{"argon2id", password.Config{
			Algorithm:     password.AlgorithmArgon2id,
			Argon2Memory:  1024,
			Argon2Threads: 1,
		}, "$argon2id$v=19$m=1024,t=1,p=1$"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			issuer, err := token.NewIssuer(token.Config{}, secret.New("flow-test-secret"))
			if err != nil {
				t.Fatal(err)
			}
			svc, err := New(Config{}, store.NewMemory(), password.NewHasher(tc.cfg), issuer, nil)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if !strings.HasPrefix(svc.dummy, tc.prefix) {
				t.Errorf("dummy hash %q, want prefix %q", svc.dummy, tc.prefix)
			}
			if _, err := svc.Login(context.Background(), "nobody", "pw"); !stderrors.Is(err, ErrInvalidCredentials) {
				t.Errorf("unknown user err = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}
