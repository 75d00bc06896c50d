package service

import (
	"context"
	"time"

	"github.com/noah-isme/mms-api/internal/token"
	appErrors "github.com/noah-isme/mms-api/pkg/errors"
)

type revocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// TokenValidator is the single gate every serialized token passes through:
// the gateway for access tokens, the auth service for refresh tokens. No
// caller may skip the revocation lookup.
type TokenValidator struct {
	codec       *token.Codec
	revocations revocationChecker
}

// NewTokenValidator composes the codec with the shared revocation store.
func NewTokenValidator(codec *token.Codec, revocations revocationChecker) *TokenValidator {
	return &TokenValidator{codec: codec, revocations: revocations}
}

// Validate parses and fully checks a token, returning its claims or a typed
// error. Checks run in a fixed order and short-circuit: missing, malformed,
// expired, type mismatch, revoked. A revocation-store failure surfaces as
// INTERNAL_ERROR, never as a pass.
func (v *TokenValidator) Validate(ctx context.Context, signed string, expectedType token.Type) (*token.Claims, error) {
	if signed == "" {
		return nil, appErrors.ErrTokenMissing
	}

	claims, err := v.codec.Parse(signed)
	if err != nil {
		return nil, err
	}

	if claims.ExpiresAt == nil || claims.ExpiresAt.Time.Before(time.Now()) {
		return nil, appErrors.ErrTokenExpired
	}

	if expectedType != "" && claims.TokenType != expectedType {
		return nil, appErrors.ErrTokenTypeMismatch
	}

	revoked, err := v.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "revocation lookup failed")
	}
	if revoked {
		return nil, appErrors.ErrTokenRevoked
	}

	return claims, nil
}
