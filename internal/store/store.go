package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"campus-rms-console/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	SaveSession(ctx context.Context, rec *model.SessionRecord) error
	GetSession(ctx context.Context, token string) (*model.SessionRecord, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)

	PutSubscription(ctx context.Context, sub *model.PushSubscription) error
	GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
	SubscriptionsFor(ctx context.Context, identityID int64) ([]model.PushSubscription, error)

	SyncBookingStatuses(ctx context.Context, now time.Time, bookings []model.Booking) ([]Transition, error)
	RecordBookingStatus(ctx context.Context, now time.Time, b model.Booking) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// SaveSession inserts or replaces a session record.
func (s *gormStore) SaveSession(ctx context.Context, rec *model.SessionRecord) error {
	if err := s.db.WithContext(ctx).Save(rec).Error; err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *gormStore) GetSession(ctx context.Context, token string) (*model.SessionRecord, error) {
	var rec model.SessionRecord
	err := s.db.WithContext(ctx).Where("token = ?", token).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return &rec, nil
}

func (s *gormStore) DeleteSession(ctx context.Context, token string) error {
	if err := s.db.WithContext(ctx).Where("token = ?", token).Delete(&model.SessionRecord{}).Error; err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes every session that expired at or before now.
func (s *gormStore) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&model.SessionRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// PutSubscription upserts a push subscription. Re-subscribing an endpoint
// moves it to the new identity and keys.
func (s *gormStore) PutSubscription(ctx context.Context, sub *model.PushSubscription) error {
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now()
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"identity_id", "p256dh", "auth"}),
	}).Create(sub).Error
	if err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}
	return nil
}

func (s *gormStore) GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	err := s.db.WithContext(ctx).Where("endpoint = ?", endpoint).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	return &sub, nil
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	if err := s.db.WithContext(ctx).Where("endpoint = ?", endpoint).Delete(&model.PushSubscription{}).Error; err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	return nil
}

func (s *gormStore) SubscriptionsFor(ctx context.Context, identityID int64) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Where("identity_id = ?", identityID).Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch subscriptions for identity %d: %w", identityID, err)
	}
	return subs, nil
}

// SyncBookingStatuses diffs the observed bookings against the stored
// snapshots in one transaction. now is when the bookings were fetched.
// Bookings seen for the first time are only recorded; a changed status into
// APPROVED or REJECTED is reported. Snapshots whose booking is no longer
// observed are dropped. A snapshot written after now (a decision recorded by
// the console while the fetch was in flight) is newer than the observation
// and is left alone, as is any decided snapshot observed back as PENDING.
func (s *gormStore) SyncBookingStatuses(ctx context.Context, now time.Time, bookings []model.Booking) ([]Transition, error) {
	var transitions []Transition
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := fetchAllSnapshots(tx)
		if err != nil {
			return fmt.Errorf("failed to fetch booking snapshots: %w", err)
		}

		for _, b := range bookings {
			old, exists := current[b.ID]
			if !exists {
				snap := model.SnapshotOf(b, now)
				if err := tx.Create(&snap).Error; err != nil {
					return fmt.Errorf("failed to create snapshot for booking %d: %w", b.ID, err)
				}
				continue
			}
			delete(current, b.ID)

			if old.Status == b.Status || stale(old, b, now) {
				continue
			}
			snap := model.SnapshotOf(b, now)
			if err := tx.Save(&snap).Error; err != nil {
				return fmt.Errorf("failed to update snapshot for booking %d: %w", b.ID, err)
			}
			if decided(b.Status) {
				transitions = append(transitions, Transition{Booking: b, From: old.Status})
			}
		}

		for id, old := range current {
			if old.ObservedAt.After(now) {
				continue
			}
			if err := tx.Delete(&model.BookingSnapshot{}, id).Error; err != nil {
				return fmt.Errorf("failed to delete snapshot for booking %d: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return transitions, nil
}

// RecordBookingStatus upserts the snapshot of one booking, so a decision
// taken through the console is not reported again by the next sync.
func (s *gormStore) RecordBookingStatus(ctx context.Context, now time.Time, b model.Booking) error {
	snap := model.SnapshotOf(b, now)
	if err := s.db.WithContext(ctx).Save(&snap).Error; err != nil {
		return fmt.Errorf("failed to record status of booking %d: %w", b.ID, err)
	}
	return nil
}

func fetchAllSnapshots(tx *gorm.DB) (map[int64]model.BookingSnapshot, error) {
	var snaps []model.BookingSnapshot
	if err := tx.Find(&snaps).Error; err != nil {
		return nil, err
	}
	snapMap := make(map[int64]model.BookingSnapshot, len(snaps))
	for _, snap := range snaps {
		snapMap[snap.BookingID] = snap
	}
	return snapMap, nil
}
