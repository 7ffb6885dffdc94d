package verification

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"time"

	"github.com/frahmantamala/hospital-admin/internal"
	userDatamodel "github.com/frahmantamala/hospital-admin/internal/core/datamodel/user"
	"github.com/frahmantamala/hospital-admin/pkg/mailer"
)

const (
	codeMin = 1000
	codeMax = 9999

	DefaultCodeTTL = 5 * time.Minute

	subject = "Your OTP Code"
	tag     = "otp"
)

type RepositoryAPI interface {
	GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	SaveCode(ctx context.Context, userID int64, code string, expiresAt time.Time) error
	MarkVerified(ctx context.Context, userID int64, at time.Time) error
}

type Dispatcher struct {
	repo     RepositoryAPI
	sender   mailer.Sender
	ttl      time.Duration
	logger   *slog.Logger
	now      func() time.Time
	generate func() (string, error)
}

func NewDispatcher(repo RepositoryAPI, sender mailer.Sender, ttl time.Duration, logger *slog.Logger) *Dispatcher {
	if ttl <= 0 {
		ttl = DefaultCodeTTL
	}
	return &Dispatcher{
		repo:     repo,
		sender:   sender,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
		generate: GenerateCode,
	}
}

// WithClock replaces the time source; used by tests.
func (d *Dispatcher) WithClock(now func() time.Time) *Dispatcher {
	d.now = now
	return d
}

// WithGenerator replaces the code generator; used by tests.
func (d *Dispatcher) WithGenerator(gen func() (string, error)) *Dispatcher {
	d.generate = gen
	return d
}

// GenerateCode returns a uniformly distributed four digit code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}
	return strconv.FormatInt(n.Int64()+codeMin, 10), nil
}

// Send stores a fresh code on the user and mails it. The previous code, if any, stops
// being valid as soon as the new one is stored.
func (d *Dispatcher) Send(ctx context.Context, userID int64, email string) error {
	code, err := d.generate()
	if err != nil {
		return err
	}

	expiresAt := d.now().Add(d.ttl)
	if err := d.repo.SaveCode(ctx, userID, code, expiresAt); err != nil {
		return fmt.Errorf("store verification code: %w", err)
	}

	msg := mailer.Message{
		To:       email,
		Subject:  subject,
		TextBody: "Your OTP is " + code,
		Tag:      tag,
	}
	if err := d.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send verification code: %w", err)
	}

	d.logger.Info("verification code sent", "user_id", userID, "expires_at", expiresAt)
	return nil
}

func (d *Dispatcher) Resend(ctx context.Context, dto ResendDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	u, err := d.repo.GetByEmail(ctx, dto.Email)
	if err != nil {
		d.logger.Error("failed to look up user for resend", "error", err)
		return internal.NewInternalError("failed to resend OTP", err)
	}
	if u == nil {
		return internal.ErrUserNotFound
	}
	if u.EmailVerifiedAt != nil {
		return internal.NewValidationError("Email already verified.", internal.ErrCodeValidationFailed)
	}

	if err := d.Send(ctx, u.ID, u.Email); err != nil {
		d.logger.Error("failed to resend verification code", "user_id", u.ID, "error", err)
		return internal.NewInternalError("failed to resend OTP", err)
	}
	return nil
}

func (d *Dispatcher) Verify(ctx context.Context, dto VerifyDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	u, err := d.repo.GetByEmail(ctx, dto.Email)
	if err != nil {
		d.logger.Error("failed to look up user for verification", "error", err)
		return internal.NewInternalError("failed to verify OTP", err)
	}
	if u == nil || u.OTP == nil || u.OTPExpiresAt == nil {
		return internal.ErrInvalidOTP
	}

	now := d.now()
	if !now.Before(*u.OTPExpiresAt) {
		return internal.ErrInvalidOTP
	}
	if subtle.ConstantTimeCompare([]byte(*u.OTP), []byte(dto.OTP)) != 1 {
		return internal.ErrInvalidOTP
	}

	if err := d.repo.MarkVerified(ctx, u.ID, now); err != nil {
		d.logger.Error("failed to mark user verified", "user_id", u.ID, "error", err)
		return internal.NewInternalError("failed to verify OTP", err)
	}

	d.logger.Info("email verified", "user_id", u.ID)
	return nil
}
