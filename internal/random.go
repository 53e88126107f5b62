package internal

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

// SessionToken is the opaque 128-bit identifier under which a session is
// persisted. It is owned exclusively by the session store and never derived
// from principal data.
type SessionToken [16]byte

const csrfTokenLength = 32

const csrfAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

func NewSessionToken() (SessionToken, error) {
	var t SessionToken
	_, err := rand.Read(t[:])
	return t, err
}

func (t SessionToken) String() string {
	// base64url, no padding, compact
	return base64.RawURLEncoding.EncodeToString(t[:])
}

func ParseSessionToken(token string) (SessionToken, error) {
	var t SessionToken

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return t, err
	}
	if len(raw) != len(t) {
		return t, errors.New("invalid session token size")
	}

	copy(t[:], raw)
	return t, nil
}

// NewCSRFToken returns a fresh 32-character alphanumeric anti-forgery token.
// Each character is drawn independently from crypto/rand.
func NewCSRFToken() (string, error) {
	var b strings.Builder
	b.Grow(csrfTokenLength)

	max := big.NewInt(int64(len(csrfAlphabet)))
	for i := 0; i < csrfTokenLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(csrfAlphabet[n.Int64()])
	}

	return b.String(), nil
}

// ConstantTimeEquals reports whether a and b are equal without leaking the
// position of the first differing byte. Unequal lengths still burn a full
// comparison so length is the only observable signal.
func ConstantTimeEquals(a, b string) bool {
	if len(a) != len(b) {
		subtle.ConstantTimeCompare([]byte(a), []byte(a))
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// ConstantTimeEqualBytes is the byte-slice form of [ConstantTimeEquals].
func ConstantTimeEqualBytes(a, b []byte) bool {
	if len(a) != len(b) {
		subtle.ConstantTimeCompare(a, a)
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}

// HashBindingValue hashes a client binding value (IP, user agent) so the raw
// value is never stored alongside the session.
func HashBindingValue(v string) [32]byte {
	return sha256.Sum256([]byte(v))
}

// NewDeviceID returns a long-lived opaque device correlation token. It is a
// fraud signal, not a security boundary.
func NewDeviceID() string {
	return uuid.NewString()
}
