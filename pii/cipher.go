package pii

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize   = 16
	nonceSize  = 12
	keySize    = 32
	iterations = 10000

	minMasterSecret = 16
)

var (
	// ErrDecrypt is returned for any failure while decrypting an encoded
	// field: bad encoding, truncated envelope, wrong key, or a failed
	// authentication tag. The cause is deliberately not distinguished.
	ErrDecrypt = errors.New("pii: decryption failed")

	// ErrEmptyPlaintext is returned when an empty string is encrypted.
	ErrEmptyPlaintext = errors.New("pii: empty plaintext")
)

// Cipher encrypts and decrypts sensitive fields with AES-256-GCM. Every
// encryption call draws a fresh random salt and nonce and derives a per-call
// key from the master secret, so identical plaintexts never produce
// identical ciphertexts.
type Cipher struct {
	master []byte
}

// NewCipher creates a field cipher from a master secret of at least 16 bytes.
func NewCipher(master []byte) (*Cipher, error) {
	if len(master) < minMasterSecret {
		return nil, errors.New("pii: master secret must be at least 16 bytes")
	}

	c := &Cipher{master: make([]byte, len(master))}
	copy(c.master, master)
	return c, nil
}

// Encrypt seals plaintext and returns the base64 envelope
// salt ‖ nonce ‖ ciphertext+tag. The key derivation is intentionally slow;
// callers must not hold unrelated locks across the call.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPlaintext
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	aead, err := c.aead(salt)
	if err != nil {
		return "", err
	}

	sealed := aead.Seal(nil, nonce, []byte(plaintext), nil)

	envelope := make([]byte, 0, saltSize+nonceSize+len(sealed))
	envelope = append(envelope, salt...)
	envelope = append(envelope, nonce...)
	envelope = append(envelope, sealed...)

	return base64.StdEncoding.EncodeToString(envelope), nil
}

// Decrypt opens an envelope produced by [Cipher.Encrypt]. It fails closed:
// any parse or authentication failure yields [ErrDecrypt], never the raw
// ciphertext.
func (c *Cipher) Decrypt(encoded string) (string, error) {
	envelope, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	if len(envelope) < saltSize+nonceSize+1 {
		return "", ErrDecrypt
	}

	salt := envelope[:saltSize]
	nonce := envelope[saltSize : saltSize+nonceSize]
	sealed := envelope[saltSize+nonceSize:]

	aead, err := c.aead(salt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}

	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrDecrypt
	}

	return string(plaintext), nil
}

// aead derives the per-call key from the master secret and salt. The nonce
// is passed explicitly to Seal/Open so it is always an enforced parameter of
// the cipher, never implied by the key.
func (c *Cipher) aead(salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key(c.master, salt, iterations, keySize, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	return cipher.NewGCM(block)
}
