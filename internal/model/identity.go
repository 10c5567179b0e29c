package model

import "time"

// Role is the account type of an identity.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleStaff   Role = "STAFF"
	RoleAdmin   Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// IdentityStatus tells whether an account may log in.
type IdentityStatus string

const (
	IdentityActive   IdentityStatus = "ACTIVE"
	IdentityInactive IdentityStatus = "INACTIVE"
)

func (s IdentityStatus) Valid() bool {
	return s == IdentityActive || s == IdentityInactive
}

// Identity is a user account as returned by the booking backend.
type Identity struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone"`
	Role      Role           `json:"role"`
	Status    IdentityStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
}

// IdentityInput is the write shape for creating or fully replacing an identity.
// An empty Password keeps the current one on update.
type IdentityInput struct {
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Phone    string         `json:"phone"`
	Password string         `json:"password,omitempty"`
	Role     Role           `json:"role"`
	Status   IdentityStatus `json:"status"`
}

// InputFrom returns the write shape of an existing identity, without password.
func InputFrom(i Identity) IdentityInput {
	return IdentityInput{
		Name:   i.Name,
		Email:  i.Email,
		Phone:  i.Phone,
		Role:   i.Role,
		Status: i.Status,
	}
}
