package user

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/hospital-admin/internal"
	"github.com/frahmantamala/hospital-admin/internal/core/common/dberr"
	userDatamodel "github.com/frahmantamala/hospital-admin/internal/core/datamodel/user"
	"github.com/frahmantamala/hospital-admin/internal/core/events"
	"github.com/frahmantamala/hospital-admin/internal/core/role"
)

// Actions named in denial messages.
const (
	AddAction    = "add users"
	ViewAction   = "view users"
	DeleteAction = "delete users"
)

type RepositoryAPI interface {
	Create(ctx context.Context, u *userDatamodel.User) error
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	ListByRole(ctx context.Context, roleName string) ([]*userDatamodel.User, error)
	// Delete removes the user and the user's direct permission grants.
	Delete(ctx context.Context, id int64) error
}

type Authorizer interface {
	Authorize(ctx context.Context, actor *internal.Actor, action string) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
}

// CodeDispatcher sends the email verification code to a freshly created account.
type CodeDispatcher interface {
	Send(ctx context.Context, userID int64, email string) error
}

type Service struct {
	repo      RepositoryAPI
	authz     Authorizer
	hasher    PasswordHasher
	codes     CodeDispatcher
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo RepositoryAPI, authz Authorizer, hasher PasswordHasher, codes CodeDispatcher, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		authz:     authz,
		hasher:    hasher,
		codes:     codes,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock replaces the time source used for hospital ids.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// AddUser creates the account and then dispatches its verification code. A failed
// dispatch is logged and does not undo the account.
func (s *Service) AddUser(ctx context.Context, actor *internal.Actor, dto AddUserDTO) (*User, error) {
	if err := s.authz.Authorize(ctx, actor, AddAction); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(dto.Password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, internal.NewInternalError("failed to create user", err)
	}

	u := NewUser(dto.Name, dto.Email, role.Role(dto.Role), NewHospitalID(s.now()))
	row := ToDataModel(u, hash)
	if err := s.repo.Create(ctx, row); err != nil {
		if dberr.IsDuplicateKey(err) {
			return nil, internal.NewValidationFieldError("email", "email has already been taken", internal.ErrCodeEmailTaken)
		}
		s.logger.Error("failed to create user", "email", dto.Email, "error", err)
		return nil, internal.NewInternalError("failed to create user", err)
	}

	s.logger.Info("user created", "user_id", row.ID, "role", row.Role, "actor_id", actor.ID)
	events.Publish(ctx, s.publisher, events.NewUserCreatedEvent(actor.ID, row.ID, row.Email, row.Role))

	if s.codes != nil {
		if err := s.codes.Send(ctx, row.ID, row.Email); err != nil {
			s.logger.Error("failed to send verification code", "user_id", row.ID, "error", err)
		}
	}

	return FromDataModel(row), nil
}

func (s *Service) ListUsersByRole(ctx context.Context, actor *internal.Actor, roleName string) ([]Summary, error) {
	if err := s.authz.Authorize(ctx, actor, ViewAction); err != nil {
		return nil, err
	}

	if !role.Role(roleName).IsOperational() {
		return nil, internal.ErrInvalidRole
	}

	rows, err := s.repo.ListByRole(ctx, roleName)
	if err != nil {
		s.logger.Error("failed to list users", "role", roleName, "error", err)
		return nil, internal.NewInternalError("failed to list users", err)
	}
	if len(rows) == 0 {
		return nil, internal.ErrNoUsersForRole
	}

	users := make([]Summary, len(rows))
	for i, row := range rows {
		users[i] = ToSummary(row)
	}
	return users, nil
}

func (s *Service) DeleteUser(ctx context.Context, actor *internal.Actor, id int64) error {
	if err := s.authz.Authorize(ctx, actor, DeleteAction); err != nil {
		return err
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to load user", "user_id", id, "error", err)
		return internal.NewInternalError("failed to load user", err)
	}
	if row == nil {
		return internal.ErrUserNotFound
	}
	if row.ID == actor.ID {
		return internal.ErrSelfDelete
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete user", "user_id", id, "error", err)
		return internal.NewInternalError("failed to delete user", err)
	}

	s.logger.Info("user deleted", "user_id", id, "actor_id", actor.ID)
	events.Publish(ctx, s.publisher, events.NewUserDeletedEvent(actor.ID, row.ID, row.Email))
	return nil
}
