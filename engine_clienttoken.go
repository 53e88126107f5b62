package authcore

import (
	"context"
	"fmt"

	"github.com/veriport/authcore/clienttoken"
)

// IssueClientToken signs a short-lived sanitized projection of the session
// for stateless edge checks. The signed claims never include the session
// token, CSRF token, or client bindings; full trust decisions still require
// ValidateSession.
func (e *Engine) IssueClientToken(ctx context.Context, sessionToken string, client ClientContext) (string, error) {
	if e == nil || e.sessionStore == nil {
		return "", ErrEngineNotReady
	}
	if e.clientTokens == nil {
		return "", ErrClientTokensDisabled
	}

	info, err := e.ValidateSession(ctx, sessionToken, client)
	if err != nil {
		return "", err
	}

	signed, err := e.clientTokens.Issue(clienttoken.View{
		PrincipalID:     info.PrincipalID,
		Email:           info.Email,
		Role:            string(info.Role),
		Verified:        info.Verified,
		ProfileComplete: info.ProfileComplete,
	})
	if err != nil {
		return "", fmt.Errorf("sign client token: %w", err)
	}
	return signed, nil
}

// ParseClientToken verifies a signed projection and returns the sanitized
// view it carries. It performs no Redis round-trip and cannot observe
// session destruction; treat the result as a hint, not an authentication.
func (e *Engine) ParseClientToken(signed string) (ClientSession, error) {
	if e == nil {
		return ClientSession{}, ErrEngineNotReady
	}
	if e.clientTokens == nil {
		return ClientSession{}, ErrClientTokensDisabled
	}

	claims, err := e.clientTokens.Parse(signed)
	if err != nil {
		return ClientSession{}, err
	}
	return ClientSession{
		IsLoggedIn:      true,
		UserID:          claims.Subject,
		Email:           claims.Email,
		Role:            Role(claims.Role),
		Verified:        claims.Verified,
		ProfileComplete: claims.ProfileComplete,
	}, nil
}
