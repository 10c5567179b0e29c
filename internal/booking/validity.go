// Package booking holds the client-side booking rules: date and time-slot
// acceptance, conflict detection against known bookings and dashboard
// statistics.
package booking

import (
	"errors"
	"time"

	"campus-rms-console/internal/model"
	"campus-rms-console/internal/parse"
)

var (
	ErrPastDate     = errors.New("Cannot book for previous days. Please select today or a future date.")
	ErrPastTimeSlot = errors.New("Cannot book a past time slot. Please select a future time slot.")

	ErrInvalidDate     = errors.New("Please select a valid booking date.")
	ErrInvalidTimeSlot = errors.New("Please select one of the available time slots.")
)

// Candidate is the date and slot part of a booking form.
type Candidate struct {
	BookingDate string
	TimeSlot    string
}

// CandidateOf extracts the candidate from a booking input.
func CandidateOf(in model.BookingInput) Candidate {
	return Candidate{BookingDate: in.BookingDate, TimeSlot: in.TimeSlot}
}

// Validate decides whether c may still be booked at now. The calendar day and
// time of day are taken in now's location. The date is checked first, so a
// past date is reported as such whatever the slot. A slot counts as past as
// soon as its start time has arrived.
func Validate(c Candidate, now time.Time) error {
	date, err := parse.ParseDate(c.BookingDate, now.Location())
	if err != nil {
		return ErrInvalidDate
	}
	today := parse.Today(now)
	if date.Before(today) {
		return ErrPastDate
	}

	if !model.IsTimeSlot(c.TimeSlot) {
		return ErrInvalidTimeSlot
	}
	slot, err := parse.ParseTimeSlot(c.TimeSlot)
	if err != nil {
		return ErrInvalidTimeSlot
	}
	if date.Equal(today) && !parse.ClockOf(now).Before(slot.Start) {
		return ErrPastTimeSlot
	}
	return nil
}

// IsRejection reports whether err is one of the local validity rejections.
func IsRejection(err error) bool {
	return errors.Is(err, ErrPastDate) ||
		errors.Is(err, ErrPastTimeSlot) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidTimeSlot)
}

// Reason is a short machine-readable label for a rejection, used in metrics.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrPastDate):
		return "past_date"
	case errors.Is(err, ErrPastTimeSlot):
		return "past_time_slot"
	case errors.Is(err, ErrInvalidDate):
		return "invalid_date"
	case errors.Is(err, ErrInvalidTimeSlot):
		return "invalid_time_slot"
	case errors.Is(err, ErrResourceConflict):
		return "resource_conflict"
	case errors.Is(err, ErrUserConflict):
		return "user_conflict"
	}
	return "other"
}
