package server

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang-jwt/jwt/v5"
)

const tokenTTL = 30 * 24 * time.Hour

// devJWTSecret signs tokens when AUTH_JWT_SECRET is unset. Fine for
// local development, never for production.
const devJWTSecret = "brewpass-dev-insecure"

type tokenManager struct {
	secret []byte
}

func newTokenManager(secret string) *tokenManager {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		secret = devJWTSecret
	}
	return &tokenManager{secret: []byte(secret)}
}

type tokenClaims struct {
	Role     string `json:"role"`
	ShopCode string `json:"shop_code,omitempty"`
	jwt.RegisteredClaims
}

func (m *tokenManager) Issue(memberID snowflake.ID, role, shopCode string, now time.Time) (string, error) {
	claims := tokenClaims{
		Role:     role,
		ShopCode: shopCode,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   memberID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *tokenManager) Parse(raw string) (snowflake.ID, *tokenClaims, error) {
	var claims tokenClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnauthorized
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, nil, ErrUnauthorized
	}

	memberID, err := snowflake.ParseString(claims.Subject)
	if err != nil || memberID == 0 {
		return 0, nil, ErrUnauthorized
	}
	return memberID, &claims, nil
}
