package model

import "time"

// PushSubscription holds a browser push endpoint registered by a logged-in identity.
type PushSubscription struct {
	Endpoint   string    `gorm:"primaryKey"`
	IdentityID int64     `gorm:"index;not null"`
	P256DH     string    `gorm:"column:p256dh;not null"`
	Auth       string    `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null"`
}
