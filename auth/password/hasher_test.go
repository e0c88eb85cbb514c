package password

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_RoundTrip(t *testing.T) {
	h := NewBcryptHasher(WithCost(bcrypt.MinCost))

	hash, err := h.Hash("s3cret")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "s3cret" || !strings.HasPrefix(hash, "$2a$") {
		t.Fatalf("unexpected hash format: %q", hash)
	}

	ok, err := h.Verify("s3cret", hash)
	if err != nil || !ok {
		t.Fatalf("Verify(correct) = %v, %v; want true, nil", ok, err)
	}
	ok, err = h.Verify("wrong", hash)
	if err != nil || ok {
		t.Fatalf("Verify(wrong) = %v, %v; want false, nil", ok, err)
	}
}

func TestBcryptHasher_SaltedHashesDiffer(t *testing.T) {
	h := NewBcryptHasher(WithCost(bcrypt.MinCost))
	a, _ := h.Hash("same")
	b, _ := h.Hash("same")
	if a == b {
		t.Fatal("two hashes of the same plaintext should differ")
	}
}

func TestBcryptHasher_DefaultCost(t *testing.T) {
	if got := NewBcryptHasher().Cost(); got != 10 {
		t.Fatalf("default cost = %d, want 10", got)
	}
	if got := NewBcryptHasher(WithCost(99)).Cost(); got != 10 {
		t.Fatalf("out-of-range cost should be ignored, got %d", got)
	}
}

func TestBcryptHasher_InvalidInput(t *testing.T) {
	h := NewBcryptHasher(WithCost(bcrypt.MinCost))
	tests := []struct {
		name      string
		plaintext string
	}{
		{"empty", ""},
		{"too long", strings.Repeat("a", BcryptMaxLength+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := h.Hash(tt.plaintext); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("Hash error = %v, want ErrInvalidInput", err)
			}
		})
	}

	if _, err := h.Hash(strings.Repeat("a", BcryptMaxLength)); err != nil {
		t.Fatalf("72 bytes should be accepted: %v", err)
	}
	if _, err := h.HashWithCost("x", 3); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("cost 3 error = %v, want ErrInvalidInput", err)
	}
}

func TestBcryptHasher_MalformedHash(t *testing.T) {
	h := NewBcryptHasher()
	for _, hash := range []string{"", "plaintext", "$2a$xx$short", "$argon2id$v=19$m=1,t=1,p=1$aa$bb"} {
		t.Run(hash, func(t *testing.T) {
			if _, err := h.Verify("x", hash); !errors.Is(err, ErrMalformedHash) {
				t.Fatalf("Verify error = %v, want ErrMalformedHash", err)
			}
		})
	}
}

func TestBcryptHasher_HashWithCostAndRehash(t *testing.T) {
	h := NewBcryptHasher(WithCost(bcrypt.MinCost))

	hash, err := h.HashWithCost("s3cret", bcrypt.MinCost+1)
	if err != nil {
		t.Fatalf("HashWithCost: %v", err)
	}
	if cost, _ := bcrypt.Cost([]byte(hash)); cost != bcrypt.MinCost+1 {
		t.Fatalf("embedded cost = %d, want %d", cost, bcrypt.MinCost+1)
	}
	if ok, _ := h.Verify("s3cret", hash); !ok {
		t.Fatal("hash at a different cost should still verify")
	}
	if !h.NeedsRehash(hash) {
		t.Fatal("hash with different cost should need rehash")
	}

	current, _ := h.Hash("s3cret")
	if h.NeedsRehash(current) {
		t.Fatal("hash with current cost should not need rehash")
	}
}

func TestArgon2Hasher_RoundTrip(t *testing.T) {
	h := NewArgon2Hasher(WithArgon2Memory(1024), WithArgon2Threads(1))

	hash, err := h.Hash("s3cret")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$") {
		t.Fatalf("unexpected hash format: %q", hash)
	}
	if ok, err := h.Verify("s3cret", hash); err != nil || !ok {
		t.Fatalf("Verify(correct) = %v, %v", ok, err)
	}
	if ok, err := h.Verify("wrong", hash); err != nil || ok {
		t.Fatalf("Verify(wrong) = %v, %v", ok, err)
	}
	if h.NeedsRehash(hash) {
		t.Fatal("fresh hash should not need rehash")
	}
	if !NewArgon2Hasher(WithArgon2Memory(2048), WithArgon2Threads(1)).NeedsRehash(hash) {
		t.Fatal("different memory parameter should need rehash")
	}
}

func TestArgon2Hasher_MalformedHash(t *testing.T) {
	h := NewArgon2Hasher()
	tests := []string{
		"$argon2id$v=19$m=1024,t=1,p=1$salt",
		"$argon2i$v=19$m=1024,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=16$m=1024,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$garbage$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=1024,t=1,p=1$!!!$aGFzaA",
	}
	for _, hash := range tests {
		if _, err := h.Verify("x", hash); !errors.Is(err, ErrMalformedHash) {
			t.Errorf("Verify(%q) error = %v, want ErrMalformedHash", hash, err)
		}
	}
}

func TestMultiHasher_VerifiesBothFormats(t *testing.T) {
	bc := NewHasher(Config{BcryptCost: bcrypt.MinCost})
	ar := NewHasher(Config{Algorithm: AlgorithmArgon2id, Argon2Memory: 1024, Argon2Threads: 1})

	bHash, err := bc.Hash("s3cret")
	if err != nil {
		t.Fatalf("bcrypt Hash: %v", err)
	}
	aHash, err := ar.Hash("s3cret")
	if err != nil {
		t.Fatalf("argon2 Hash: %v", err)
	}

	for _, h := range []*MultiHasher{bc, ar} {
		for _, hash := range []string{bHash, aHash} {
			if ok, err := h.Verify("s3cret", hash); err != nil || !ok {
				t.Errorf("%s Verify(%.10s...) = %v, %v", h.Algorithm(), hash, ok, err)
			}
		}
	}

	if !bc.NeedsRehash(aHash) {
		t.Error("bcrypt hasher should want to rehash an argon2 hash")
	}
	if bc.NeedsRehash(bHash) {
		t.Error("bcrypt hasher should keep its own hash")
	}
	if _, err := bc.Verify("s3cret", "not-a-hash"); !errors.Is(err, ErrMalformedHash) {
		t.Errorf("Verify(unknown format) error = %v, want ErrMalformedHash", err)
	}
}

func TestConfig_DefaultsAndValidate(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Algorithm != AlgorithmBcrypt || cfg.BcryptCost != 10 || cfg.MinLength != 1 || cfg.MaxLength != 72 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown algorithm", func(c *Config) { c.Algorithm = "md5" }},
		{"cost too low", func(c *Config) { c.BcryptCost = 3 }},
		{"cost too high", func(c *Config) { c.BcryptCost = 32 }},
		{"max below min", func(c *Config) { c.MinLength = 10; c.MaxLength = 5 }},
		{"bcrypt above 72", func(c *Config) { c.MaxLength = 100 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cfg
			tt.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
