package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	userDatamodel "github.com/frahmantamala/hospital-admin/internal/core/datamodel/user"
	"github.com/frahmantamala/hospital-admin/internal/verification"
	"gorm.io/gorm"
)

type VerificationRepository struct {
	db *gorm.DB
}

func NewVerificationRepository(db *gorm.DB) verification.RepositoryAPI {
	return &VerificationRepository{db: db}
}

func (r *VerificationRepository) GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &u, nil
}

func (r *VerificationRepository) SaveCode(ctx context.Context, userID int64, code string, expiresAt time.Time) error {
	res := r.db.WithContext(ctx).Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{"otp": code, "otp_expires_at": expiresAt})
	if res.Error != nil {
		return fmt.Errorf("save verification code: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("save verification code: user %d: %w", userID, gorm.ErrRecordNotFound)
	}
	return nil
}

// MarkVerified clears the code so it cannot be replayed.
func (r *VerificationRepository) MarkVerified(ctx context.Context, userID int64, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{"otp": nil, "otp_expires_at": nil, "email_verified_at": at}).Error
	if err != nil {
		return fmt.Errorf("mark user verified: %w", err)
	}
	return nil
}

// NewExpiredCodeStore exposes the sweep query for the background worker.
func NewExpiredCodeStore(db *gorm.DB) verification.ExpiredCodeStore {
	return &VerificationRepository{db: db}
}

func (r *VerificationRepository) ClearExpiredCodes(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&userDatamodel.User{}).
		Where("otp IS NOT NULL AND otp_expires_at <= ?", before).
		Updates(map[string]interface{}{"otp": nil, "otp_expires_at": nil})
	if res.Error != nil {
		return 0, fmt.Errorf("clear expired codes: %w", res.Error)
	}
	return res.RowsAffected, nil
}
