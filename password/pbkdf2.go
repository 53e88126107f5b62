package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"io"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	minIterations = 1000
	minSaltLength = 16
	minKeyLength  = 16
)

// Config defines the PBKDF2 derivation parameters. Instances are configured
// during initialization and then treated as immutable.
type Config struct {
	Iterations int
	SaltLength int
	KeyLength  int
}

// DefaultConfig returns the derivation parameters used when callers do not
// override them: PBKDF2-SHA256, 10000 iterations, 16-byte salt, 32-byte key.
func DefaultConfig() Config {
	return Config{
		Iterations: 10000,
		SaltLength: 16,
		KeyLength:  32,
	}
}

// Codec hashes and verifies passwords. Records are encoded as
// "hex(salt):hex(derivedKey)"; the iteration count is fixed by the codec
// configuration and is identical for every record it produces.
type Codec struct {
	config Config
}

// NewCodec validates cfg and returns a password codec.
func NewCodec(cfg Config) (*Codec, error) {
	if cfg.Iterations < minIterations {
		return nil, errors.New("password iterations must be >= 1000")
	}
	if cfg.SaltLength < minSaltLength {
		return nil, errors.New("password salt length must be >= 16")
	}
	if cfg.KeyLength < minKeyLength {
		return nil, errors.New("password key length must be >= 16")
	}

	return &Codec{config: cfg}, nil
}

// Hash derives a credential record from password with a fresh random salt.
// The call is intentionally slow; callers must not hold unrelated locks
// across it.
func (c *Codec) Hash(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}

	salt := make([]byte, c.config.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	return c.hashWithSalt(password, salt), nil
}

// HashWithSalt derives a record from password and a caller-supplied salt.
// Intended for deterministic fixtures; production callers use [Codec.Hash].
func (c *Codec) HashWithSalt(password string, salt []byte) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	if len(salt) < minSaltLength {
		return "", errors.New("salt too short")
	}
	return c.hashWithSalt(password, salt), nil
}

func (c *Codec) hashWithSalt(password string, salt []byte) string {
	key := pbkdf2.Key([]byte(password), salt, c.config.Iterations, c.config.KeyLength, sha256.New)
	return hex.EncodeToString(salt) + ":" + hex.EncodeToString(key)
}

// Verify re-derives the key with the stored salt and compares it to the
// stored hash in constant time. A malformed record reports false with an
// error; the comparison itself never short-circuits on a mismatching byte.
func (c *Codec) Verify(password, record string) (bool, error) {
	salt, stored, err := parseRecord(record)
	if err != nil {
		return false, err
	}

	// Derive at the stored hash length so records written under a different
	// key-length configuration still verify.
	computed := pbkdf2.Key([]byte(password), salt, c.config.Iterations, len(stored), sha256.New)

	return subtle.ConstantTimeCompare(computed, stored) == 1, nil
}

func parseRecord(record string) (salt, hash []byte, err error) {
	parts := strings.SplitN(record, ":", 2)
	if len(parts) != 2 {
		return nil, nil, errors.New("invalid credential record format")
	}

	salt, err = hex.DecodeString(parts[0])
	if err != nil {
		return nil, nil, errors.New("invalid salt encoding")
	}
	if len(salt) < minSaltLength {
		return nil, nil, errors.New("invalid salt length")
	}

	hash, err = hex.DecodeString(parts[1])
	if err != nil {
		return nil, nil, errors.New("invalid hash encoding")
	}
	if len(hash) < minKeyLength {
		return nil, nil, errors.New("invalid hash length")
	}

	return salt, hash, nil
}
