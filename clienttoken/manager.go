package clienttoken

import (
	"crypto/ed25519"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SigningMethod selects the JWT signature algorithm.
type SigningMethod string

const (
	MethodEd25519 SigningMethod = "ed25519"
	MethodHS256   SigningMethod = "hs256"
)

var (
	// ErrTokenInvalid is returned for any parse or signature failure.
	ErrTokenInvalid = errors.New("invalid client token")
)

// Config holds signing parameters. Instances are configured during
// initialization and then treated as immutable.
type Config struct {
	TTL           time.Duration
	SigningMethod SigningMethod
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Leeway        time.Duration
}

// Claims is the sanitized session projection carried in a client token.
// The opaque session token and binding hashes never appear here.
type Claims struct {
	Email           string `json:"email,omitempty"`
	Role            string `json:"role"`
	Verified        bool   `json:"verified,omitempty"`
	ProfileComplete bool   `json:"profile_complete,omitempty"`
	jwt.RegisteredClaims
}

// View is the input to Issue: the fields of a session that are safe to show
// to a client.
type View struct {
	PrincipalID     string
	Email           string
	Role            string
	Verified        bool
	ProfileComplete bool
}

// Manager signs and parses short-lived client tokens: a downstream
// collaborator can hand one to a frontend or sibling service as proof of an
// authenticated principal without ever seeing the session token.
type Manager struct {
	config Config
}

// NewManager validates cfg and returns a token manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.TTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}

	switch cfg.SigningMethod {
	case MethodHS256:
		if len(cfg.PrivateKey) == 0 {
			return nil, errors.New("hs256 requires private key")
		}
	case MethodEd25519:
		if len(cfg.PrivateKey) != ed25519.SeedSize && len(cfg.PrivateKey) != ed25519.PrivateKeySize {
			return nil, errors.New("ed25519 requires a 32- or 64-byte private key")
		}
		if len(cfg.PublicKey) != 0 && len(cfg.PublicKey) != ed25519.PublicKeySize {
			return nil, errors.New("invalid ed25519 public key")
		}
	default:
		return nil, errors.New("unsupported signing method")
	}

	return &Manager{config: cfg}, nil
}

// Issue signs a token carrying the given sanitized view.
func (m *Manager) Issue(view View) (string, error) {
	now := time.Now()
	claims := Claims{
		Email:           view.Email,
		Role:            view.Role,
		Verified:        view.Verified,
		ProfileComplete: view.ProfileComplete,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   view.PrincipalID,
			Issuer:    m.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.TTL)),
		},
	}

	switch m.config.SigningMethod {
	case MethodHS256:
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		return token.SignedString(m.config.PrivateKey)
	case MethodEd25519:
		token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
		return token.SignedString(m.privateKey())
	default:
		return "", errors.New("unsupported signing method")
	}
}

// Parse verifies the signature and registered claims of a client token.
func (m *Manager) Parse(tokenStr string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(m.config.Leeway),
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}
	switch m.config.SigningMethod {
	case MethodHS256:
		options = append(options, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	case MethodEd25519:
		options = append(options, jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, m.verifyKey, options...)
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

func (m *Manager) verifyKey(*jwt.Token) (any, error) {
	switch m.config.SigningMethod {
	case MethodHS256:
		return m.config.PrivateKey, nil
	case MethodEd25519:
		if len(m.config.PublicKey) == ed25519.PublicKeySize {
			return ed25519.PublicKey(m.config.PublicKey), nil
		}
		return m.privateKey().Public(), nil
	default:
		return nil, errors.New("unsupported signing method")
	}
}

func (m *Manager) privateKey() ed25519.PrivateKey {
	if len(m.config.PrivateKey) == ed25519.SeedSize {
		return ed25519.NewKeyFromSeed(m.config.PrivateKey)
	}
	return ed25519.PrivateKey(m.config.PrivateKey)
}
