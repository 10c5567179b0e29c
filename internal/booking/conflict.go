package booking

import (
	"errors"

	"campus-rms-console/internal/model"
)

// The messages match the classifier's fixed conflict texts so the user sees the
// same wording whether the clash is caught here or by the backend.
var (
	ErrResourceConflict = errors.New("This resource is already booked for the selected date and time slot. Please choose a different time or resource.")
	ErrUserConflict     = errors.New("You already have a booking at this time slot. One user cannot make two bookings at the same time.")
)

// FindConflict checks in against known bookings for the two uniqueness rules the
// backend enforces: one booking per resource and one per user for a given date
// and slot. Rejected bookings do not hold their slot. The booking with ID
// excludeID (the one being edited) is ignored; pass 0 for new bookings.
func FindConflict(in model.BookingInput, existing []model.Booking, excludeID int64) error {
	var userClash bool
	for _, b := range existing {
		if excludeID != 0 && b.ID == excludeID {
			continue
		}
		if b.Status == model.BookingRejected {
			continue
		}
		if b.BookingDate != in.BookingDate || b.TimeSlot != in.TimeSlot {
			continue
		}
		if b.ResourceID == in.ResourceID {
			return ErrResourceConflict
		}
		if b.UserID == in.UserID {
			userClash = true
		}
	}
	if userClash {
		return ErrUserConflict
	}
	return nil
}
