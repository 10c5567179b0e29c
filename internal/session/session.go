// Package session keeps the console's logged-in identities.
//
// A session is an opaque token mapped to the identity the backend returned at
// login. Records are persisted so sessions survive a restart, and cached in
// memory for the hot path.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"campus-rms-console/internal/model"
	"campus-rms-console/internal/store"
)

// ErrNoSession is returned for unknown, expired or logged-out tokens.
var ErrNoSession = errors.New("Please log in to continue")

// Authenticator checks credentials against the booking backend.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*model.Identity, error)
	Logout(ctx context.Context, identityID int64) error
}

// Store is the persistence the manager needs.
type Store interface {
	SaveSession(ctx context.Context, rec *model.SessionRecord) error
	GetSession(ctx context.Context, token string) (*model.SessionRecord, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// Session is one logged-in identity.
type Session struct {
	Token     string         `json:"token"`
	Identity  model.Identity `json:"user"`
	CreatedAt time.Time      `json:"created_at"`
	ExpiresAt time.Time      `json:"expires_at"`
}

func (s *Session) expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Manager creates, resolves and ends sessions.
type Manager struct {
	auth   Authenticator
	store  Store
	cache  *cache.Cache
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// NewManager creates a Manager whose sessions live for ttl.
func NewManager(auth Authenticator, st Store, ttl time.Duration, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		auth:   auth,
		store:  st,
		cache:  cache.New(ttl, 10*time.Minute),
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

// Login authenticates against the backend and opens a session. Backend
// failures are returned unchanged for the error classifier.
func (m *Manager) Login(ctx context.Context, email, password string) (*Session, error) {
	identity, err := m.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	now := m.now()
	rec := &model.SessionRecord{
		Token:     uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	rec.SetIdentity(*identity)
	if err := m.store.SaveSession(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}

	sess := fromRecord(rec)
	m.remember(sess)
	m.logger.Info("session opened",
		zap.Int64("identity_id", identity.ID),
		zap.String("role", string(identity.Role)),
	)
	return sess, nil
}

// Lookup resolves a token to its live session.
func (m *Manager) Lookup(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrNoSession
	}
	now := m.now()

	if cached, found := m.cache.Get(token); found {
		sess := cached.(*Session)
		if !sess.expired(now) {
			return sess, nil
		}
		m.forget(ctx, token)
		return nil, ErrNoSession
	}

	rec, err := m.store.GetSession(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}

	sess := fromRecord(rec)
	if sess.expired(now) {
		m.forget(ctx, token)
		return nil, ErrNoSession
	}
	m.remember(sess)
	return sess, nil
}

// Logout ends the session. The backend is told the identity left, but the
// local session is torn down even when that call fails.
func (m *Manager) Logout(ctx context.Context, token string) error {
	sess, err := m.Lookup(ctx, token)
	if err != nil {
		return err
	}

	if err := m.auth.Logout(ctx, sess.Identity.ID); err != nil {
		m.logger.Warn("backend logout failed, ending session locally",
			zap.Int64("identity_id", sess.Identity.ID), zap.Error(err))
	}
	if err := m.store.DeleteSession(ctx, token); err != nil {
		m.cache.Delete(token)
		return fmt.Errorf("failed to end session: %w", err)
	}
	m.cache.Delete(token)
	m.logger.Info("session closed", zap.Int64("identity_id", sess.Identity.ID))
	return nil
}

// Refresh replaces the identity cached for token, after the identity edited
// its own record.
func (m *Manager) Refresh(ctx context.Context, token string, identity model.Identity) (*Session, error) {
	sess, err := m.Lookup(ctx, token)
	if err != nil {
		return nil, err
	}

	rec := toRecord(sess)
	rec.SetIdentity(identity)
	if err := m.store.SaveSession(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to refresh session: %w", err)
	}
	updated := fromRecord(rec)
	m.remember(updated)
	return updated, nil
}

// Sweep removes the sessions that expired by now.
func (m *Manager) Sweep(ctx context.Context) (int64, error) {
	n, err := m.store.DeleteExpiredSessions(ctx, m.now())
	if err != nil {
		return 0, err
	}
	m.cache.DeleteExpired()
	if n > 0 {
		m.logger.Info("expired sessions removed", zap.Int64("count", n))
	}
	return n, nil
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := m.Sweep(ctx); err != nil {
				m.logger.Error("session sweep failed", zap.Error(err))
			}
		}
	}
}

func (m *Manager) remember(sess *Session) {
	ttl := sess.ExpiresAt.Sub(m.now())
	if ttl <= 0 {
		return
	}
	m.cache.Set(sess.Token, sess, ttl)
}

func (m *Manager) forget(ctx context.Context, token string) {
	m.cache.Delete(token)
	if err := m.store.DeleteSession(ctx, token); err != nil {
		m.logger.Warn("failed to delete expired session", zap.Error(err))
	}
}

func fromRecord(rec *model.SessionRecord) *Session {
	return &Session{
		Token:     rec.Token,
		Identity:  rec.Identity(),
		CreatedAt: rec.CreatedAt,
		ExpiresAt: rec.ExpiresAt,
	}
}

func toRecord(sess *Session) *model.SessionRecord {
	rec := &model.SessionRecord{
		Token:     sess.Token,
		CreatedAt: sess.CreatedAt,
		ExpiresAt: sess.ExpiresAt,
	}
	rec.SetIdentity(sess.Identity)
	return rec
}
