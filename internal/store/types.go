package store

import (
	"errors"
	"time"

	"campus-rms-console/internal/model"
)

// ErrNotFound is returned when a keyed record does not exist.
var ErrNotFound = errors.New("record not found")

// Transition is a booking whose observed status moved to a decision.
type Transition struct {
	Booking model.Booking
	From    model.BookingStatus
}

// decided reports whether status is a moderation outcome worth notifying.
func decided(status model.BookingStatus) bool {
	return status == model.BookingApproved || status == model.BookingRejected
}

// stale reports whether observing b at now must not overwrite old: old was
// recorded after now, or old is decided and b reverts it to PENDING.
func stale(old model.BookingSnapshot, b model.Booking, now time.Time) bool {
	if old.ObservedAt.After(now) {
		return true
	}
	return decided(old.Status) && b.Status == model.BookingPending
}
