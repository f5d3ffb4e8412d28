// Package token issues and verifies the signed bearer tokens returned by the
// login flow. Tokens are JWTs signed with HMAC-SHA256; validity is determined
// purely by signature and expiry, so verification is stateless.
package token

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/authvault/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the fixed claim shape carried by every access token: the
// registered subject/iat/exp claims plus the account email and the granted
// scope.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Scope string `json:"scope"`
}

// Issue builds and signs a token for the given subject. The expiry is
// now + lifetime; the lifetime is a fixed configuration value, never
// request-controlled.
func Issue(subject, email, scope string, secret []byte, lifetime time.Duration) (string, error) {
	now := time.Now()

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
		Email: email,
		Scope: scope,
	})

	return t.SignedString(secret)
}

// Verify recomputes the MAC and checks expiry. No clock skew is tolerated:
// a token is invalid the moment now passes its expiry. Expired tokens yield
// common.ErrTokenExpired; any other defect yields common.ErrInvalidToken.
func Verify(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}

	t, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !t.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
