// Package watcher polls the booking backend for moderation decisions taken
// outside the console and hands them to the notification pool.
package watcher

import (
	"context"
	"time"

	"go.uber.org/zap"

	"campus-rms-console/internal/model"
	"campus-rms-console/internal/notification"
	"campus-rms-console/internal/parse"
	"campus-rms-console/internal/store"
)

// BookingSource lists every booking known to the backend.
type BookingSource interface {
	ListBookings(ctx context.Context) ([]model.Booking, error)
}

// SnapshotStore diffs observed bookings against the last observation.
type SnapshotStore interface {
	SyncBookingStatuses(ctx context.Context, now time.Time, bookings []model.Booking) ([]store.Transition, error)
}

// Notifier queues a decision for delivery.
type Notifier interface {
	Dispatch(d notification.Decision) bool
}

// Service runs the poll loop.
type Service struct {
	source   BookingSource
	store    SnapshotStore
	notifier Notifier
	interval time.Duration
	loc      *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// NewService creates a watcher. Dates are interpreted in loc.
func NewService(source BookingSource, st SnapshotStore, notifier Notifier, interval time.Duration, loc *time.Location, logger *zap.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		source:   source,
		store:    st,
		notifier: notifier,
		interval: interval,
		loc:      loc,
		now:      time.Now,
		logger:   logger,
	}
}

// Run polls until ctx is done.
func (s *Service) Run(ctx context.Context) {
	s.logger.Info("starting booking watcher", zap.Duration("interval", s.interval))

	s.PollOnce(ctx)

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("booking watcher shutting down")
			return
		case <-timer.C:
			s.PollOnce(ctx)
			timer.Reset(s.interval)
		}
	}
}

// PollOnce performs a single poll cycle and returns how many decisions were
// dispatched.
func (s *Service) PollOnce(ctx context.Context) int {
	now := s.now().In(s.loc)

	all, err := s.source.ListBookings(ctx)
	if err != nil {
		// Snapshots stay untouched so nothing is reported twice or lost.
		s.logger.Warn("poll cycle aborted, bookings could not be fetched", zap.Error(err))
		return 0
	}

	upcoming := Upcoming(all, now)
	transitions, err := s.store.SyncBookingStatuses(ctx, now, upcoming)
	if err != nil {
		s.logger.Error("failed to sync booking snapshots", zap.Error(err))
		return 0
	}

	dispatched := 0
	for _, tr := range transitions {
		if s.notifier.Dispatch(notification.DecisionOf(tr.Booking)) {
			dispatched++
		}
	}
	s.logger.Debug("poll cycle finished",
		zap.Int("observed", len(upcoming)),
		zap.Int("decisions", len(transitions)),
		zap.Int("dispatched", dispatched),
	)
	return dispatched
}

// Upcoming keeps the bookings dated today or later in now's location,
// whatever their status. Unparseable dates are skipped.
func Upcoming(bookings []model.Booking, now time.Time) []model.Booking {
	today := parse.Today(now)
	out := make([]model.Booking, 0, len(bookings))
	for _, b := range bookings {
		date, err := parse.ParseDate(b.BookingDate, now.Location())
		if err != nil || date.Before(today) {
			continue
		}
		out = append(out, b)
	}
	return out
}
