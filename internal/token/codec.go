package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	appErrors "github.com/noah-isme/mms-api/pkg/errors"
)

// Type distinguishes short-lived access tokens from long-lived refresh tokens.
// The claim is embedded in every token so the two can never be swapped.
type Type string

const (
	TypeAccess  Type = "ACCESS"
	TypeRefresh Type = "REFRESH"
)

// Claims is the signed token payload. The jti (RegisteredClaims.ID) keys both
// the revocation blacklist and the active-session pointer.
type Claims struct {
	Username  string `json:"username"`
	TokenType Type   `json:"token_type"`
	jwt.RegisteredClaims
}

// Subject returns the username the token was issued to.
func (c *Claims) Subject() string {
	return c.Username
}

// ExpiresAtMillis returns the expiry as epoch milliseconds, the unit used in
// the propagation headers and the revocation store.
func (c *Claims) ExpiresAtMillis() int64 {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Time.UnixMilli()
}

// Issued bundles everything a caller needs after issuing a token, so the
// session and revocation stores can be updated without re-parsing the string.
type Issued struct {
	Signed    string
	JTI       string
	ExpiresAt time.Time
}

// Codec signs and parses tokens with a shared HS256 secret. It is pure: all
// shared state (revocation, sessions) lives behind the stores.
type Codec struct {
	secret []byte
}

// NewCodec creates a codec for the given shared secret.
func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Issue signs a fresh token of the given type with a new unique jti.
func (c *Codec) Issue(subject string, tokenType Type, ttl time.Duration) (*Issued, error) {
	issuedAt := time.Now().UTC()
	expiresAt := issuedAt.Add(ttl)
	jti := uuid.NewString()

	claims := &Claims{
		Username:  subject,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}

	return &Issued{Signed: signed, JTI: jti, ExpiresAt: expiresAt}, nil
}

// Parse verifies the signature and returns the claims. Expiry is checked by
// the validator, not here, so expired tokens still parse; that distinction
// keeps TOKEN_EXPIRED separate from TOKEN_MALFORMED.
func (c *Codec) Parse(signed string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(signed, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return c.secret, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrTokenMalformed.Code, appErrors.ErrTokenMalformed.Status, appErrors.ErrTokenMalformed.Message)
	}

	return claims, nil
}
