package model

import "time"

// BookingStatus is the moderation state of a booking.
type BookingStatus string

const (
	BookingPending  BookingStatus = "PENDING"
	BookingApproved BookingStatus = "APPROVED"
	BookingRejected BookingStatus = "REJECTED"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingApproved, BookingRejected:
		return true
	}
	return false
}

// Booking reserves one resource for one identity on one date and time slot.
// BookingDate is a calendar date in YYYY-MM-DD form.
type Booking struct {
	ID           int64         `json:"id"`
	UserID       int64         `json:"user"`
	UserName     string        `json:"user_name,omitempty"`
	ResourceID   int64         `json:"resource"`
	ResourceName string        `json:"resource_name,omitempty"`
	ResourceType ResourceType  `json:"resource_type,omitempty"`
	BookingDate  string        `json:"booking_date"`
	TimeSlot     string        `json:"time_slot"`
	Status       BookingStatus `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
}

// BookingInput is the write shape of a booking. Status is only sent on full
// replacement updates.
type BookingInput struct {
	UserID      int64         `json:"user"`
	ResourceID  int64         `json:"resource"`
	BookingDate string        `json:"booking_date"`
	TimeSlot    string        `json:"time_slot"`
	Status      BookingStatus `json:"status,omitempty"`
}
