// Package auth issues and checks the bearer tokens that guard the admin
// surface. Tokens are HS256 JWTs signed with the shared server secret.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/enigma/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// AdminScope is the only scope the server accepts.
const AdminScope = "admin"

// Claims are the registered claims plus the granted scope.
type Claims struct {
	jwt.RegisteredClaims
	Scope string `json:"scope"`
}

// GenerateAdminToken signs a token for subject valid for validity from now.
func GenerateAdminToken(subject string, secretKey []byte, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		Scope: AdminScope,
	})

	return token.SignedString(secretKey)
}

// ParseAdminToken validates tokenString and returns its subject. Tokens whose
// lifetime exceeds maxLifetime are refused when maxLifetime is positive.
func ParseAdminToken(tokenString string, secretKey []byte, maxLifetime time.Duration) (string, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if claims.Scope != AdminScope {
		return "", fmt.Errorf("%w: scope %q", common.ErrInvalidToken, claims.Scope)
	}

	if maxLifetime > 0 {
		if claims.IssuedAt == nil || claims.ExpiresAt.Sub(claims.IssuedAt.Time) > maxLifetime {
			return "", fmt.Errorf("%w: lifetime too long", common.ErrInvalidToken)
		}
	}

	return claims.Subject, nil
}
