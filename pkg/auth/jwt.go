package auth

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalid = errors.New("invalid token")

const (
	AccessTTL  = time.Hour
	RefreshTTL = 7 * 24 * time.Hour

	kindAccess  = "access"
	kindRefresh = "refresh"
)

type Claims struct {
	UserID   uint   `json:"uid"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Kind     string `json:"kind"`
	jwt.RegisteredClaims
}

func secret() []byte {
	s := os.Getenv("JWT_SECRET")
	if s == "" {
		s = "change-me-secret"
	}
	return []byte(s)
}

func generate(userID uint, username, role, kind string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   userID,
		Username: username,
		Role:     role,
		Kind:     kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret())
}

// GeneratePair issues the access/refresh token pair returned by login.
func GeneratePair(userID uint, username, role string) (access, refresh string, err error) {
	access, err = generate(userID, username, role, kindAccess, AccessTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err = generate(userID, username, role, kindRefresh, RefreshTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func parse(tokenStr, kind string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return secret(), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalid
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Kind != kind {
		return nil, ErrInvalid
	}
	return claims, nil
}

// ParseAccess validates a bearer access token.
func ParseAccess(tokenStr string) (*Claims, error) {
	return parse(tokenStr, kindAccess)
}

// ParseRefresh validates a refresh token for the token-refresh endpoint.
func ParseRefresh(tokenStr string) (*Claims, error) {
	return parse(tokenStr, kindRefresh)
}
