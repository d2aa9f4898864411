package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Cookie names expected by the better-auth browser client.
const (
	// SessionCookieName carries the opaque server-session id (httpOnly).
	SessionCookieName = "better-auth.session_token"
	// TokenCookieName carries the signed token, readable by frontend JS.
	TokenCookieName = "auth-token"
)

// ErrInvalidToken is returned when a token fails signature or structural checks.
var ErrInvalidToken = errors.New("invalid token")

// Claims represents the signed token payload: a subject id and an expiry.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenCodec mints and verifies compact signed tokens (HS256).
type TokenCodec struct {
	secret []byte
}

// NewTokenCodec creates a codec with the given signing key.
func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{secret: []byte(secret)}
}

// Mint encodes a signed token carrying the subject id and expiry.
func (c *TokenCodec) Mint(subjectID string, expiresAt time.Time) (string, error) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Decode verifies a signed token and returns its claims. Expired tokens fail
// validation here, so callers never see claims they must reject anyway.
func (c *TokenCodec) Decode(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// IsCompact reports whether a credential is structurally a signed token
// (three dot-separated segments). Opaque session ids fail this check.
func IsCompact(token string) bool {
	return strings.Count(token, ".") == 2
}
