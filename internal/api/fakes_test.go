package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"campus-rms-console/internal/apierr"
	"campus-rms-console/internal/model"
	"campus-rms-console/internal/notification"
	"campus-rms-console/internal/session"
	"campus-rms-console/internal/store"
)

// fakeBackend is an in-memory booking backend with the real one's uniqueness
// rules and error shapes.
type fakeBackend struct {
	mu        sync.Mutex
	nextID    int64
	users     map[int64]model.Identity
	resources map[int64]model.Resource
	bookings  map[int64]model.Booking
	down      bool
	calls     []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		nextID:    100,
		users:     map[int64]model.Identity{},
		resources: map[int64]model.Resource{},
		bookings:  map[int64]model.Booking{},
	}
}

func (f *fakeBackend) call(op string) error {
	f.calls = append(f.calls, op)
	if f.down {
		return &apierr.NetworkError{BaseURL: "http://backend.test/api", Err: context.DeadlineExceeded}
	}
	return nil
}

func statusErr(status int, body any) error {
	raw, _ := json.Marshal(body)
	return &apierr.StatusError{Status: status, Body: raw}
}

var notFound = statusErr(http.StatusNotFound, map[string]string{"detail": "Not found."})

func (f *fakeBackend) id() int64 {
	f.nextID++
	return f.nextID
}

func sortedValues[T any](m map[int64]T) []T {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] > keys[j] })
	out := make([]T, 0, len(m))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

func (f *fakeBackend) ListUsers(context.Context) ([]model.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("users.list"); err != nil {
		return nil, err
	}
	return sortedValues(f.users), nil
}

func (f *fakeBackend) ListUsersByStatus(_ context.Context, status model.IdentityStatus) ([]model.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("users.by_status"); err != nil {
		return nil, err
	}
	var out []model.Identity
	for _, u := range sortedValues(f.users) {
		if u.Status == status {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeBackend) GetUser(_ context.Context, id int64) (*model.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("users.get"); err != nil {
		return nil, err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, notFound
	}
	return &u, nil
}

func (f *fakeBackend) saveUser(id int64, in model.IdentityInput) (*model.Identity, error) {
	for _, u := range f.users {
		if u.ID != id && u.Email == in.Email {
			return nil, statusErr(http.StatusBadRequest, map[string][]string{"email": {"A user with this email already exists."}})
		}
	}
	u := model.Identity{ID: id, Name: in.Name, Email: in.Email, Phone: in.Phone, Role: in.Role, Status: in.Status, CreatedAt: time.Now()}
	f.users[id] = u
	return &u, nil
}

func (f *fakeBackend) CreateUser(_ context.Context, in model.IdentityInput) (*model.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("users.create"); err != nil {
		return nil, err
	}
	return f.saveUser(f.id(), in)
}

func (f *fakeBackend) UpdateUser(_ context.Context, id int64, in model.IdentityInput) (*model.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("users.update"); err != nil {
		return nil, err
	}
	if _, ok := f.users[id]; !ok {
		return nil, notFound
	}
	return f.saveUser(id, in)
}

func (f *fakeBackend) DeleteUser(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("users.delete"); err != nil {
		return err
	}
	if _, ok := f.users[id]; !ok {
		return notFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeBackend) ListResources(context.Context) ([]model.Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("resources.list"); err != nil {
		return nil, err
	}
	return sortedValues(f.resources), nil
}

func (f *fakeBackend) ListAvailableResources(context.Context) ([]model.Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("resources.available"); err != nil {
		return nil, err
	}
	var out []model.Resource
	for _, r := range sortedValues(f.resources) {
		if r.Status == model.ResourceAvailable {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeBackend) GetResource(_ context.Context, id int64) (*model.Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("resources.get"); err != nil {
		return nil, err
	}
	r, ok := f.resources[id]
	if !ok {
		return nil, notFound
	}
	return &r, nil
}

func (f *fakeBackend) CreateResource(_ context.Context, in model.ResourceInput) (*model.Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("resources.create"); err != nil {
		return nil, err
	}
	r := model.Resource{ID: f.id(), Name: in.Name, Type: in.Type, Capacity: in.Capacity, Location: in.Location, Status: in.Status}
	f.resources[r.ID] = r
	return &r, nil
}

func (f *fakeBackend) UpdateResource(_ context.Context, id int64, in model.ResourceInput) (*model.Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("resources.update"); err != nil {
		return nil, err
	}
	if _, ok := f.resources[id]; !ok {
		return nil, notFound
	}
	r := model.Resource{ID: id, Name: in.Name, Type: in.Type, Capacity: in.Capacity, Location: in.Location, Status: in.Status}
	f.resources[id] = r
	return &r, nil
}

func (f *fakeBackend) DeleteResource(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("resources.delete"); err != nil {
		return err
	}
	if _, ok := f.resources[id]; !ok {
		return notFound
	}
	delete(f.resources, id)
	return nil
}

func (f *fakeBackend) ListBookings(context.Context) ([]model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("bookings.list"); err != nil {
		return nil, err
	}
	return sortedValues(f.bookings), nil
}

func (f *fakeBackend) ListUpcomingBookings(context.Context) ([]model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("bookings.upcoming"); err != nil {
		return nil, err
	}
	var out []model.Booking
	for _, b := range sortedValues(f.bookings) {
		if b.Status != model.BookingRejected {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBackend) GetBooking(_ context.Context, id int64) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("bookings.get"); err != nil {
		return nil, err
	}
	b, ok := f.bookings[id]
	if !ok {
		return nil, notFound
	}
	return &b, nil
}

// saveBooking enforces the backend's two uniqueness rules with its wording.
func (f *fakeBackend) saveBooking(id int64, in model.BookingInput, status model.BookingStatus) (*model.Booking, error) {
	for _, b := range f.bookings {
		if b.ID == id || b.Status == model.BookingRejected || b.BookingDate != in.BookingDate || b.TimeSlot != in.TimeSlot {
			continue
		}
		if b.ResourceID == in.ResourceID {
			return nil, statusErr(http.StatusBadRequest, map[string][]string{"resource": {"This resource is already booked for the selected date and time slot."}})
		}
		if b.UserID == in.UserID {
			return nil, statusErr(http.StatusBadRequest, map[string][]string{"user": {"You already have a booking at this time slot. One user cannot make two bookings at the same time."}})
		}
	}
	r := f.resources[in.ResourceID]
	b := model.Booking{
		ID: id, UserID: in.UserID, ResourceID: in.ResourceID, ResourceName: r.Name, ResourceType: r.Type,
		BookingDate: in.BookingDate, TimeSlot: in.TimeSlot, Status: status, CreatedAt: time.Now(),
	}
	if u, ok := f.users[in.UserID]; ok {
		b.UserName = u.Name
	}
	f.bookings[id] = b
	return &b, nil
}

func (f *fakeBackend) CreateBooking(_ context.Context, in model.BookingInput) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("bookings.create"); err != nil {
		return nil, err
	}
	return f.saveBooking(f.id(), in, model.BookingPending)
}

func (f *fakeBackend) UpdateBooking(_ context.Context, id int64, in model.BookingInput) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("bookings.update"); err != nil {
		return nil, err
	}
	current, ok := f.bookings[id]
	if !ok {
		return nil, notFound
	}
	return f.saveBooking(id, in, current.Status)
}

func (f *fakeBackend) DeleteBooking(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("bookings.delete"); err != nil {
		return err
	}
	if _, ok := f.bookings[id]; !ok {
		return notFound
	}
	delete(f.bookings, id)
	return nil
}

func (f *fakeBackend) setStatus(id int64, status model.BookingStatus) (*model.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, notFound
	}
	b.Status = status
	f.bookings[id] = b
	return &b, nil
}

func (f *fakeBackend) ApproveBooking(_ context.Context, id int64) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("bookings.approve"); err != nil {
		return nil, err
	}
	return f.setStatus(id, model.BookingApproved)
}

func (f *fakeBackend) RejectBooking(_ context.Context, id int64) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("bookings.reject"); err != nil {
		return nil, err
	}
	return f.setStatus(id, model.BookingRejected)
}

// fakeSessions maps fixed tokens to identities.
type fakeSessions struct {
	mu        sync.Mutex
	sessions  map[string]*session.Session
	loginErr  error
	refreshed []model.Identity
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: map[string]*session.Session{}}
}

func (f *fakeSessions) add(token string, identity model.Identity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[token] = &session.Session{Token: token, Identity: identity, ExpiresAt: time.Now().Add(time.Hour)}
}

func (f *fakeSessions) Lookup(_ context.Context, token string) (*session.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if sess, ok := f.sessions[token]; ok {
		return sess, nil
	}
	return nil, session.ErrNoSession
}

func (f *fakeSessions) Login(_ context.Context, email, _ string) (*session.Session, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sess := range f.sessions {
		if sess.Identity.Email == email {
			return sess, nil
		}
	}
	return nil, statusErr(http.StatusUnauthorized, map[string]string{"error": "Invalid email or password"})
}

func (f *fakeSessions) Logout(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[token]; !ok {
		return session.ErrNoSession
	}
	delete(f.sessions, token)
	return nil
}

func (f *fakeSessions) Refresh(_ context.Context, token string, identity model.Identity) (*session.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sess, ok := f.sessions[token]
	if !ok {
		return nil, session.ErrNoSession
	}
	sess.Identity = identity
	f.refreshed = append(f.refreshed, identity)
	return sess, nil
}

// memStore keeps subscriptions and recorded statuses in memory.
type memStore struct {
	mu       sync.Mutex
	subs     map[string]model.PushSubscription
	recorded []model.Booking
}

func newMemStore() *memStore {
	return &memStore{subs: map[string]model.PushSubscription{}}
}

func (m *memStore) PutSubscription(_ context.Context, sub *model.PushSubscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs[sub.Endpoint] = *sub
	return nil
}

func (m *memStore) GetSubscription(_ context.Context, endpoint string) (*model.PushSubscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.subs[endpoint]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &sub, nil
}

func (m *memStore) DeleteSubscription(_ context.Context, endpoint string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subs, endpoint)
	return nil
}

func (m *memStore) RecordBookingStatus(_ context.Context, _ time.Time, b model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recorded = append(m.recorded, b)
	return nil
}

type recordingNotifier struct {
	mu        sync.Mutex
	decisions []notification.Decision
}

func (r *recordingNotifier) Dispatch(d notification.Decision) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decisions = append(r.decisions, d)
	return true
}

type rejectionRecorder struct {
	mu      sync.Mutex
	reasons []string
}

func (r *rejectionRecorder) RecordUpstream(string, int, time.Duration) {}
func (r *rejectionRecorder) RecordUpstreamFailure(string)              {}
func (r *rejectionRecorder) RecordNotification(string)                 {}
func (r *rejectionRecorder) RecordRejection(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reasons = append(r.reasons, reason)
}
