package authcore

import (
	"context"
	"errors"
	"fmt"

	"github.com/veriport/authcore/pii"
)

// EncryptField encrypts a sensitive value with fresh per-call randomness.
// Two calls on the same plaintext never produce the same output.
func (e *Engine) EncryptField(ctx context.Context, plaintext string) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}
	if e.piiCipher == nil {
		return "", ErrPIIDisabled
	}
	encoded, err := e.piiCipher.Encrypt(plaintext)
	if err != nil {
		return "", err
	}
	e.metricInc(MetricFieldEncrypted)
	return encoded, nil
}

// DecryptField reverses EncryptField. Any parse, key, or tag failure
// surfaces as [ErrDecryption]; the field must then be treated as missing,
// never echoed back as ciphertext.
func (e *Engine) DecryptField(ctx context.Context, encoded string) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}
	if e.piiCipher == nil {
		return "", ErrPIIDisabled
	}
	plaintext, err := e.piiCipher.Decrypt(encoded)
	if err != nil {
		e.metricInc(MetricDecryptFailure)
		e.auditEmit(ctx, AuditEvent{
			EventType: "pii_decrypt_failed",
			Error:     errString(err),
		})
		if errors.Is(err, pii.ErrDecrypt) {
			return "", fmt.Errorf("%w: %v", ErrDecryption, err)
		}
		return "", err
	}
	return plaintext, nil
}

// MaskForDisplay returns value with its middle replaced by asterisks, for
// logs and UI. Not a security boundary.
func (e *Engine) MaskForDisplay(value string) string {
	visible := 2
	if e != nil && e.config.PII.MaskVisibleChars > 0 {
		visible = e.config.PII.MaskVisibleChars
	}
	return pii.Mask(value, visible)
}
