// Package auth holds the credential primitives of the server: HS256 token
// signing and parsing, and bcrypt password hashing.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token audiences. Access and refresh tokens are signed with different
// secrets, the audience additionally keeps one from being accepted as the other.
const (
	AudienceAccess  = "access"
	AudienceRefresh = "refresh"
)

// Claims is the token payload. Refresh tokens only carry UserID; access
// tokens also carry the public identity of the account.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string
	Username string `json:",omitempty"`
	Email    string `json:",omitempty"`
	FullName string `json:",omitempty"`
}

// GenerateToken signs claims with secretKey. Expiry, audience and a random
// token id (jti) are filled in here, so two tokens minted in the same second
// never compare equal.
func GenerateToken(claims Claims, audience string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   claims.UserID,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies signature, expiry and audience and returns the claims.
// Expired tokens yield common.ErrTokenExpired, anything else that fails
// verification yields common.ErrInvalidToken.
func ParseToken(tokenString, audience string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// GetUserIDFromToken is ParseToken reduced to the account id.
func GetUserIDFromToken(tokenString, audience string, secretKey []byte) (string, error) {
	claims, err := ParseToken(tokenString, audience, secretKey)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}
