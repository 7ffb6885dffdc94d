package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/hospital-admin/internal"
	"github.com/golang-jwt/jwt/v5"
)

const issuer = "hospital-admin"

type JWTTokenGenerator struct {
	Secret         []byte
	AccessTokenTTL time.Duration
}

func NewJWTTokenGenerator(secret string, accessTTL time.Duration) *JWTTokenGenerator {
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	return &JWTTokenGenerator{
		Secret:         []byte(secret),
		AccessTokenTTL: accessTTL,
	}
}

func (j *JWTTokenGenerator) TTL() time.Duration {
	return j.AccessTokenTTL
}

// GenerateAccessToken creates a new access token
func (j *JWTTokenGenerator) GenerateAccessToken(userID string, email string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.AccessTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

// ValidateToken validates a JWT token and returns claims
func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.Secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, internal.ErrInvalidToken
}
