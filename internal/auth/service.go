package auth

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/frahmantamala/hospital-admin/internal"
)

type Service struct {
	repo           RepositoryAPI
	tokenGenerator TokenGenerator
	logger         *slog.Logger
}

func NewService(repo RepositoryAPI, tokenGen TokenGenerator, logger *slog.Logger) *Service {
	return &Service{
		repo:           repo,
		tokenGenerator: tokenGen,
		logger:         logger,
	}
}

// Authenticate validates credentials and returns an access token
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	creds, err := s.repo.GetCredentials(ctx, dto.Email)
	if err != nil {
		s.logger.Error("failed to load credentials", "error", err)
		return AuthTokens{}, internal.NewInternalError("failed to authenticate", err)
	}
	if creds == nil {
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	if err := VerifyPassword(creds.PasswordHash, dto.Password); err != nil {
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	accessToken, err := s.tokenGenerator.GenerateAccessToken(strconv.FormatInt(creds.UserID, 10), dto.Email)
	if err != nil {
		s.logger.Error("failed to sign access token", "user_id", creds.UserID, "error", err)
		return AuthTokens{}, internal.NewInternalError("failed to authenticate", err)
	}

	s.logger.Info("user authenticated", "user_id", creds.UserID)

	return AuthTokens{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokenGenerator.TTL().Seconds()),
	}, nil
}

// ValidateAccessToken validates access token and returns claims
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateToken(tokenString)
}

// ResolveActor loads the caller named by the token. A deleted account resolves to
// ErrInvalidToken so its outstanding tokens stop working.
func (s *Service) ResolveActor(ctx context.Context, claims *Claims) (*internal.Actor, error) {
	uid, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || uid <= 0 {
		return nil, internal.ErrInvalidToken
	}

	actor, err := s.repo.GetActor(ctx, uid)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if actor == nil {
		return nil, internal.ErrInvalidToken
	}
	if !actor.Role.IsValid() {
		s.logger.Warn("user has an unknown role", "user_id", actor.ID, "role", actor.Role)
	}
	return actor, nil
}
