package utils

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var jwtSecret []byte

func init() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		// development fallback, override in production
		secret = "visitor-app-dev-secret"
	}
	jwtSecret = []byte(secret)
}

// CustomClaims carries the request identity. OrganizationID scopes every
// tenant query; IsAdmin gates the admin-only handlers.
type CustomClaims struct {
	UserID         uint `json:"user_id"`
	OrganizationID uint `json:"organization_id"`
	IsAdmin        bool `json:"is_admin"`
	jwt.RegisteredClaims
}

func GenerateToken(userID, organizationID uint, isAdmin bool) (string, error) {
	claims := &CustomClaims{
		UserID:         userID,
		OrganizationID: organizationID,
		IsAdmin:        isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "visitor-app",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

func ParseToken(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

type resetClaims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// GeneratePasswordResetToken issues a short-lived token that is only valid
// for the reset-password endpoint.
func GeneratePasswordResetToken(userID uint, expiresIn time.Duration) (string, error) {
	claims := &resetClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "password_reset",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "visitor-app",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// VerifyPasswordResetToken returns the user id embedded in a reset token.
func VerifyPasswordResetToken(tokenString string) (uint, error) {
	token, err := jwt.ParseWithClaims(tokenString, &resetClaims{}, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return 0, errors.New("invalid or expired reset token")
	}

	claims, ok := token.Claims.(*resetClaims)
	if !ok || claims.Subject != "password_reset" {
		return 0, errors.New("invalid reset token")
	}
	return claims.UserID, nil
}
