package model

import "time"

// SessionRecord maps an opaque console token to the identity cached at login.
type SessionRecord struct {
	Token      string         `gorm:"primaryKey;size:64"`
	IdentityID int64          `gorm:"index;not null"`
	Name       string         `gorm:"size:255;not null"`
	Email      string         `gorm:"size:255;not null"`
	Phone      string         `gorm:"size:32"`
	Role       Role           `gorm:"size:16;not null"`
	Status     IdentityStatus `gorm:"size:16;not null"`
	CreatedAt  time.Time      `gorm:"not null"`
	ExpiresAt  time.Time      `gorm:"index;not null"`
}

// Identity rebuilds the cached identity. CreatedAt is the session's, not the account's.
func (r SessionRecord) Identity() Identity {
	return Identity{
		ID:     r.IdentityID,
		Name:   r.Name,
		Email:  r.Email,
		Phone:  r.Phone,
		Role:   r.Role,
		Status: r.Status,
	}
}

// SetIdentity copies the identity fields into the record.
func (r *SessionRecord) SetIdentity(i Identity) {
	r.IdentityID = i.ID
	r.Name = i.Name
	r.Email = i.Email
	r.Phone = i.Phone
	r.Role = i.Role
	r.Status = i.Status
}
