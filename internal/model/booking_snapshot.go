package model

import "time"

// BookingSnapshot is the last observed status of an upcoming booking.
type BookingSnapshot struct {
	BookingID    int64         `gorm:"primaryKey;autoIncrement:false"`
	UserID       int64         `gorm:"index;not null"`
	ResourceName string        `gorm:"size:255"`
	BookingDate  string        `gorm:"size:10;not null"`
	TimeSlot     string        `gorm:"size:32;not null"`
	Status       BookingStatus `gorm:"size:16;not null"`
	ObservedAt   time.Time     `gorm:"not null"`
}

// SnapshotOf captures the fields the status watcher tracks.
func SnapshotOf(b Booking, observedAt time.Time) BookingSnapshot {
	return BookingSnapshot{
		BookingID:    b.ID,
		UserID:       b.UserID,
		ResourceName: b.ResourceName,
		BookingDate:  b.BookingDate,
		TimeSlot:     b.TimeSlot,
		Status:       b.Status,
		ObservedAt:   observedAt,
	}
}
