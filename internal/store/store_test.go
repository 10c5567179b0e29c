package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"campus-rms-console/internal/model"
)

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// newSQLiteStore opens a private in-memory database with the console schema.
func newSQLiteStore(t *testing.T) Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, gormDB.AutoMigrate(&model.SessionRecord{}, &model.PushSubscription{}, &model.BookingSnapshot{}))

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	return NewGormStore(gormDB)
}

func booking(id, user int64, status model.BookingStatus) model.Booking {
	return model.Booking{
		ID:           id,
		UserID:       user,
		ResourceName: "Physics Lab",
		BookingDate:  "2030-05-01",
		TimeSlot:     "10:00 - 11:00",
		Status:       status,
	}
}

func TestGormStore_SyncBookingStatuses_SQL(t *testing.T) {
	now := time.Now()

	testCases := []struct {
		name             string
		bookings         []model.Booking
		mockExpectations func(mock sqlmock.Sqlmock)
		expectedErr      bool
	}{
		{
			name:     "No status change, should do nothing",
			bookings: []model.Booking{booking(1, 7, model.BookingPending)},
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "booking_snapshots"`)).
					WillReturnRows(sqlmock.NewRows([]string{"booking_id", "user_id", "status", "observed_at"}).
						AddRow(1, 7, "PENDING", now.Add(-time.Minute)))
				// No database writes expected
				mock.ExpectCommit()
			},
		},
		{
			name:     "Booking disappears from feed, should drop snapshot",
			bookings: nil,
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "booking_snapshots"`)).
					WillReturnRows(sqlmock.NewRows([]string{"booking_id", "user_id", "status", "observed_at"}).
						AddRow(2, 7, "APPROVED", now.Add(-time.Minute)))
				mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "booking_snapshots"`)).
					WithArgs(Any{}).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name:     "Snapshot query fails, should return error",
			bookings: []model.Booking{booking(3, 7, model.BookingApproved)},
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "booking_snapshots"`)).
					WillReturnError(errors.New("connection reset"))
				mock.ExpectRollback()
			},
			expectedErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gormDB, mock := newTestDB(t)
			store := NewGormStore(gormDB)

			tc.mockExpectations(mock)

			transitions, err := store.SyncBookingStatuses(context.Background(), now, tc.bookings)

			if tc.expectedErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Empty(t, transitions)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGormStore_SyncBookingStatuses(t *testing.T) {
	ctx := context.Background()
	st := newSQLiteStore(t)
	now := time.Date(2030, 4, 30, 9, 0, 0, 0, time.UTC)

	// First observation only records.
	transitions, err := st.SyncBookingStatuses(ctx, now, []model.Booking{
		booking(1, 7, model.BookingPending),
		booking(2, 8, model.BookingPending),
		booking(3, 9, model.BookingApproved),
	})
	require.NoError(t, err)
	assert.Empty(t, transitions)

	// 1 approved, 2 rejected, 3 gone.
	transitions, err = st.SyncBookingStatuses(ctx, now.Add(time.Minute), []model.Booking{
		booking(1, 7, model.BookingApproved),
		booking(2, 8, model.BookingRejected),
	})
	require.NoError(t, err)
	require.Len(t, transitions, 2)

	byID := map[int64]Transition{}
	for _, tr := range transitions {
		byID[tr.Booking.ID] = tr
	}
	assert.Equal(t, model.BookingPending, byID[1].From)
	assert.Equal(t, model.BookingApproved, byID[1].Booking.Status)
	assert.Equal(t, model.BookingRejected, byID[2].Booking.Status)

	// Same statuses again: nothing new.
	transitions, err = st.SyncBookingStatuses(ctx, now.Add(2*time.Minute), []model.Booking{
		booking(1, 7, model.BookingApproved),
		booking(2, 8, model.BookingRejected),
	})
	require.NoError(t, err)
	assert.Empty(t, transitions)

	// Booking 3 was dropped, so it reappears as a first observation.
	transitions, err = st.SyncBookingStatuses(ctx, now.Add(3*time.Minute), []model.Booking{
		booking(3, 9, model.BookingRejected),
	})
	require.NoError(t, err)
	assert.Empty(t, transitions)
}

func TestGormStore_RecordBookingStatusSuppressesTransition(t *testing.T) {
	ctx := context.Background()
	st := newSQLiteStore(t)
	now := time.Now()

	_, err := st.SyncBookingStatuses(ctx, now, []model.Booking{booking(5, 7, model.BookingPending)})
	require.NoError(t, err)

	require.NoError(t, st.RecordBookingStatus(ctx, now, booking(5, 7, model.BookingApproved)))

	transitions, err := st.SyncBookingStatuses(ctx, now, []model.Booking{booking(5, 7, model.BookingApproved)})
	require.NoError(t, err)
	assert.Empty(t, transitions)

	// Back to pending is not a decision.
	transitions, err = st.SyncBookingStatuses(ctx, now, []model.Booking{booking(5, 7, model.BookingPending)})
	require.NoError(t, err)
	assert.Empty(t, transitions)
}

func TestGormStore_ConsoleDecisionDuringPoll(t *testing.T) {
	ctx := context.Background()
	st := newSQLiteStore(t)
	t0 := time.Date(2030, 4, 30, 9, 0, 0, 0, time.UTC)

	_, err := st.SyncBookingStatuses(ctx, t0, []model.Booking{booking(6, 7, model.BookingPending)})
	require.NoError(t, err)

	// A poll fetches at t1 and still sees PENDING; the console approves at
	// t2 before that poll writes.
	t1 := t0.Add(time.Minute)
	t2 := t1.Add(time.Second)
	require.NoError(t, st.RecordBookingStatus(ctx, t2, booking(6, 7, model.BookingApproved)))

	transitions, err := st.SyncBookingStatuses(ctx, t1, []model.Booking{booking(6, 7, model.BookingPending)})
	require.NoError(t, err)
	assert.Empty(t, transitions)

	// The next poll sees the approval the console already announced.
	transitions, err = st.SyncBookingStatuses(ctx, t2.Add(time.Minute), []model.Booking{booking(6, 7, model.BookingApproved)})
	require.NoError(t, err)
	assert.Empty(t, transitions)
}

func TestGormStore_DecidedSnapshotIsNotRevertedToPending(t *testing.T) {
	ctx := context.Background()
	st := newSQLiteStore(t)
	t0 := time.Date(2030, 4, 30, 9, 0, 0, 0, time.UTC)

	require.NoError(t, st.RecordBookingStatus(ctx, t0, booking(8, 7, model.BookingApproved)))

	transitions, err := st.SyncBookingStatuses(ctx, t0.Add(time.Minute), []model.Booking{booking(8, 7, model.BookingPending)})
	require.NoError(t, err)
	assert.Empty(t, transitions)

	transitions, err = st.SyncBookingStatuses(ctx, t0.Add(2*time.Minute), []model.Booking{booking(8, 7, model.BookingApproved)})
	require.NoError(t, err)
	assert.Empty(t, transitions)
}

func TestGormStore_RecentSnapshotSurvivesStaleDisappearance(t *testing.T) {
	ctx := context.Background()
	st := newSQLiteStore(t)
	t0 := time.Date(2030, 4, 30, 9, 0, 0, 0, time.UTC)

	require.NoError(t, st.RecordBookingStatus(ctx, t0.Add(time.Second), booking(9, 7, model.BookingApproved)))

	// A poll fetched at t0, before the booking was decided, did not list it.
	_, err := st.SyncBookingStatuses(ctx, t0, nil)
	require.NoError(t, err)

	transitions, err := st.SyncBookingStatuses(ctx, t0.Add(time.Minute), []model.Booking{booking(9, 7, model.BookingApproved)})
	require.NoError(t, err)
	assert.Empty(t, transitions)
}

func TestGormStore_Sessions(t *testing.T) {
	ctx := context.Background()
	st := newSQLiteStore(t)
	now := time.Now()

	rec := &model.SessionRecord{Token: "tok-1", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	rec.SetIdentity(model.Identity{ID: 4, Name: "Ada", Email: "ada@campus.edu", Role: model.RoleAdmin, Status: model.IdentityActive})
	require.NoError(t, st.SaveSession(ctx, rec))

	expired := &model.SessionRecord{Token: "tok-2", IdentityID: 5, Name: "Bo", Email: "bo@campus.edu",
		Role: model.RoleStudent, Status: model.IdentityActive, CreatedAt: now, ExpiresAt: now.Add(-time.Minute)}
	require.NoError(t, st.SaveSession(ctx, expired))

	got, err := st.GetSession(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, model.RoleAdmin, got.Identity().Role)

	// Save replaces.
	rec.Name = "Ada L."
	require.NoError(t, st.SaveSession(ctx, rec))
	got, err = st.GetSession(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", got.Name)

	n, err := st.DeleteExpiredSessions(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = st.GetSession(ctx, "tok-2")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, st.DeleteSession(ctx, "tok-1"))
	_, err = st.GetSession(ctx, "tok-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormStore_Subscriptions(t *testing.T) {
	ctx := context.Background()
	st := newSQLiteStore(t)

	sub := &model.PushSubscription{Endpoint: "https://push.example/a", IdentityID: 7, P256DH: "k1", Auth: "a1"}
	require.NoError(t, st.PutSubscription(ctx, sub))
	require.NoError(t, st.PutSubscription(ctx, &model.PushSubscription{Endpoint: "https://push.example/b", IdentityID: 7, P256DH: "k2", Auth: "a2"}))

	subs, err := st.SubscriptionsFor(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, subs, 2)

	// Re-subscribing moves the endpoint.
	require.NoError(t, st.PutSubscription(ctx, &model.PushSubscription{Endpoint: "https://push.example/a", IdentityID: 8, P256DH: "k3", Auth: "a3"}))
	got, err := st.GetSubscription(ctx, "https://push.example/a")
	require.NoError(t, err)
	assert.Equal(t, int64(8), got.IdentityID)
	assert.Equal(t, "k3", got.P256DH)

	require.NoError(t, st.DeleteSubscription(ctx, "https://push.example/b"))
	subs, err = st.SubscriptionsFor(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, subs)

	_, err = st.GetSubscription(ctx, "https://push.example/b")
	assert.ErrorIs(t, err, ErrNotFound)
}

// Any is a helper for sqlmock to match any argument.
type Any struct{}

// Match satisfies the sqlmock.Argument interface
func (a Any) Match(v driver.Value) bool {
	return true
}
