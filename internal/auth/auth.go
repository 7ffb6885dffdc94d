package auth

import (
	"context"
	"time"

	"github.com/frahmantamala/hospital-admin/internal"
	"github.com/golang-jwt/jwt/v5"
)

// Credentials is what login needs from storage.
type Credentials struct {
	UserID       int64
	PasswordHash string
}

type AuthTokens struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Claims represents JWT token claims
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenGenerator creates and validates access tokens.
type TokenGenerator interface {
	GenerateAccessToken(userID string, email string) (token string, err error)
	ValidateToken(tokenString string) (*Claims, error)
	TTL() time.Duration
}

type RepositoryAPI interface {
	GetCredentials(ctx context.Context, email string) (*Credentials, error)
	GetActor(ctx context.Context, userID int64) (*internal.Actor, error)
}

// PermissionStore answers the two binding lookups behind HasPermission.
type PermissionStore interface {
	HasDirectPermission(ctx context.Context, userID int64, permission string) (bool, error)
	HasRolePermission(ctx context.Context, roleName string, permission string) (bool, error)
}
