package user

import "time"

type User struct {
	ID              int64      `gorm:"primaryKey"`
	Name            string     `gorm:"column:name;size:255;not null"`
	Email           string     `gorm:"column:email;size:255;uniqueIndex;not null"`
	Password        string     `gorm:"column:password;not null"`
	Role            string     `gorm:"column:role;size:32;not null;index"`
	HospitalID      string     `gorm:"column:hospital_id;size:32;not null"`
	OTP             *string    `gorm:"column:otp;size:8"`
	OTPExpiresAt    *time.Time `gorm:"column:otp_expires_at"`
	EmailVerifiedAt *time.Time `gorm:"column:email_verified_at"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
