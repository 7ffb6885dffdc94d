package user

import (
	"strconv"
	"time"

	userDatamodel "github.com/frahmantamala/hospital-admin/internal/core/datamodel/user"
	"github.com/frahmantamala/hospital-admin/internal/core/role"
)

// User is a staff account as returned to admins. Password and verification code never
// leave the repository layer.
type User struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Role            role.Role  `json:"role"`
	HospitalID      string     `json:"hospital_id"`
	EmailVerifiedAt *time.Time `json:"email_verified_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Summary is the projection used when listing users by role.
type Summary struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       role.Role `json:"role"`
	HospitalID string    `json:"hospital_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewHospitalID derives the staff identifier from the creation time. Two accounts
// created in the same second share it.
func NewHospitalID(at time.Time) string {
	return "H" + strconv.FormatInt(at.Unix(), 10)
}

func NewUser(name, email string, r role.Role, hospitalID string) *User {
	return &User{
		Name:       name,
		Email:      email,
		Role:       r,
		HospitalID: hospitalID,
	}
}

// ToDataModel carries the already hashed password into the row.
func ToDataModel(u *User, passwordHash string) *userDatamodel.User {
	return &userDatamodel.User{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		Password:        passwordHash,
		Role:            u.Role.String(),
		HospitalID:      u.HospitalID,
		EmailVerifiedAt: u.EmailVerifiedAt,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		Role:            role.Role(u.Role),
		HospitalID:      u.HospitalID,
		EmailVerifiedAt: u.EmailVerifiedAt,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func ToSummary(u *userDatamodel.User) Summary {
	return Summary{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       role.Role(u.Role),
		HospitalID: u.HospitalID,
		CreatedAt:  u.CreatedAt,
	}
}
