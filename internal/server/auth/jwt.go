// Package auth signs and verifies the short-lived caller credentials that
// identify who issued a command on the command channel.
package auth

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/mediagate/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the registered claims plus the caller identity.
type Claims struct {
	jwt.RegisteredClaims
	CallerID string `json:"caller_id"`
}

func GenerateToken(callerID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		CallerID: callerID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetCallerIDFromToken verifies tokenString and returns its caller id. Any
// failure, including expiry, wraps common.ErrInvalidToken.
func GetCallerIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.CallerID == "" {
		return "", common.ErrInvalidToken
	}

	return claims.CallerID, nil
}
