package authcore

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/veriport/authcore/clienttoken"
)

// FromEnv builds a Config from AUTHCORE_* environment variables, loading a
// .env file first when one is present. Unset variables keep their defaults.
//
// Secrets (AUTHCORE_PII_MASTER_SECRET, AUTHCORE_CLIENT_TOKEN_KEY) are
// expected base64-encoded so binary key material survives shell quoting.
func FromEnv() (Config, error) {
	// Missing .env is not an error; real deployments inject the
	// environment directly.
	_ = godotenv.Load()

	cfg := defaultConfig()

	var err error
	if cfg.Session.TTL, err = envDuration("AUTHCORE_SESSION_TTL", cfg.Session.TTL); err != nil {
		return Config{}, err
	}
	if cfg.Session.RememberMeTTL, err = envDuration("AUTHCORE_SESSION_REMEMBER_ME_TTL", cfg.Session.RememberMeTTL); err != nil {
		return Config{}, err
	}
	if cfg.Session.IdleTimeout, err = envDuration("AUTHCORE_SESSION_IDLE_TIMEOUT", cfg.Session.IdleTimeout); err != nil {
		return Config{}, err
	}
	if v := os.Getenv("AUTHCORE_SESSION_REDIS_PREFIX"); v != "" {
		cfg.Session.RedisPrefix = v
	}

	if cfg.Lockout.Threshold, err = envInt("AUTHCORE_LOCKOUT_THRESHOLD", cfg.Lockout.Threshold); err != nil {
		return Config{}, err
	}
	if cfg.Lockout.Window, err = envDuration("AUTHCORE_LOCKOUT_WINDOW", cfg.Lockout.Window); err != nil {
		return Config{}, err
	}
	if cfg.Lockout.LockDuration, err = envDuration("AUTHCORE_LOCKOUT_DURATION", cfg.Lockout.LockDuration); err != nil {
		return Config{}, err
	}

	if cfg.Password.Iterations, err = envInt("AUTHCORE_PASSWORD_ITERATIONS", cfg.Password.Iterations); err != nil {
		return Config{}, err
	}

	if cfg.PII.MasterSecret, err = envSecret("AUTHCORE_PII_MASTER_SECRET"); err != nil {
		return Config{}, err
	}

	if cfg.Security.EnforceIPBinding, err = envBool("AUTHCORE_ENFORCE_IP_BINDING", cfg.Security.EnforceIPBinding); err != nil {
		return Config{}, err
	}
	if cfg.Security.EnforceUABinding, err = envBool("AUTHCORE_ENFORCE_UA_BINDING", cfg.Security.EnforceUABinding); err != nil {
		return Config{}, err
	}

	if cfg.ClientToken.PrivateKey, err = envSecret("AUTHCORE_CLIENT_TOKEN_KEY"); err != nil {
		return Config{}, err
	}
	if v := os.Getenv("AUTHCORE_CLIENT_TOKEN_METHOD"); v != "" {
		cfg.ClientToken.SigningMethod = clienttoken.SigningMethod(v)
	}
	if cfg.ClientToken.TTL, err = envDuration("AUTHCORE_CLIENT_TOKEN_TTL", cfg.ClientToken.TTL); err != nil {
		return Config{}, err
	}
	if v := os.Getenv("AUTHCORE_CLIENT_TOKEN_ISSUER"); v != "" {
		cfg.ClientToken.Issuer = v
	}

	if cfg.Audit.Enabled, err = envBool("AUTHCORE_AUDIT_ENABLED", cfg.Audit.Enabled); err != nil {
		return Config{}, err
	}
	if cfg.Metrics.Enabled, err = envBool("AUTHCORE_METRICS_ENABLED", cfg.Metrics.Enabled); err != nil {
		return Config{}, err
	}
	if cfg.Metrics.EnableLatencyHistograms, err = envBool("AUTHCORE_METRICS_LATENCY", cfg.Metrics.EnableLatencyHistograms); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func envSecret(key string) ([]byte, error) {
	v := os.Getenv(key)
	if v == "" {
		return nil, nil
	}
	raw, err := base64.StdEncoding.DecodeString(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return raw, nil
}
