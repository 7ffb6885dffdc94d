package role

import (
	"errors"
	"fmt"
)

// Role is the closed set of hospital staff roles. Roles are not stored in their own table;
// bindings and users reference them by their string value.
type Role string

const (
	Admin        Role = "admin"
	Accountant   Role = "accountant"
	Doctor       Role = "doctor"
	Nurse        Role = "nurse"
	Pathologist  Role = "pathologist"
	Radiologist  Role = "radiologist"
	Receptionist Role = "receptionist"
)

var ErrInvalidRole = errors.New("invalid role")

var all = []Role{Admin, Accountant, Doctor, Nurse, Pathologist, Radiologist, Receptionist}

// All returns every role, admin first.
func All() []Role {
	out := make([]Role, len(all))
	copy(out, all)
	return out
}

// Operational returns the roles an admin may assign to a new account.
func Operational() []Role {
	return All()[1:]
}

// Parse matches exactly; "Doctor" or " doctor" are not roles.
func Parse(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}

func (r Role) IsValid() bool {
	for _, candidate := range all {
		if r == candidate {
			return true
		}
	}
	return false
}

func (r Role) IsOperational() bool {
	return r.IsValid() && r != Admin
}

func (r Role) String() string {
	return string(r)
}
