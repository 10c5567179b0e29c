package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campus-rms-console/config"
	"campus-rms-console/internal/metrics"
	"campus-rms-console/internal/model"
	"campus-rms-console/internal/mw"
	"campus-rms-console/internal/notification"
	"campus-rms-console/internal/session"
)

// Backend is the booking backend as the handlers use it.
type Backend interface {
	ListUsers(ctx context.Context) ([]model.Identity, error)
	ListUsersByStatus(ctx context.Context, status model.IdentityStatus) ([]model.Identity, error)
	GetUser(ctx context.Context, id int64) (*model.Identity, error)
	CreateUser(ctx context.Context, in model.IdentityInput) (*model.Identity, error)
	UpdateUser(ctx context.Context, id int64, in model.IdentityInput) (*model.Identity, error)
	DeleteUser(ctx context.Context, id int64) error

	ListResources(ctx context.Context) ([]model.Resource, error)
	ListAvailableResources(ctx context.Context) ([]model.Resource, error)
	GetResource(ctx context.Context, id int64) (*model.Resource, error)
	CreateResource(ctx context.Context, in model.ResourceInput) (*model.Resource, error)
	UpdateResource(ctx context.Context, id int64, in model.ResourceInput) (*model.Resource, error)
	DeleteResource(ctx context.Context, id int64) error

	ListBookings(ctx context.Context) ([]model.Booking, error)
	ListUpcomingBookings(ctx context.Context) ([]model.Booking, error)
	GetBooking(ctx context.Context, id int64) (*model.Booking, error)
	CreateBooking(ctx context.Context, in model.BookingInput) (*model.Booking, error)
	UpdateBooking(ctx context.Context, id int64, in model.BookingInput) (*model.Booking, error)
	DeleteBooking(ctx context.Context, id int64) error
	ApproveBooking(ctx context.Context, id int64) (*model.Booking, error)
	RejectBooking(ctx context.Context, id int64) (*model.Booking, error)
}

// Sessions opens, resolves and ends console sessions.
type Sessions interface {
	mw.SessionResolver
	Login(ctx context.Context, email, password string) (*session.Session, error)
	Logout(ctx context.Context, token string) error
	Refresh(ctx context.Context, token string, identity model.Identity) (*session.Session, error)
}

// Store is the console-local persistence the handlers touch.
type Store interface {
	PutSubscription(ctx context.Context, sub *model.PushSubscription) error
	GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
	RecordBookingStatus(ctx context.Context, now time.Time, b model.Booking) error
}

// Notifier queues decision notifications.
type Notifier interface {
	Dispatch(d notification.Decision) bool
}

type discardNotifier struct{}

func (discardNotifier) Dispatch(notification.Decision) bool { return false }

// Handler holds shared dependencies for API handlers.
type Handler struct {
	backend  Backend
	sessions Sessions
	store    Store
	notifier Notifier
	webpush  *webpush.Options
	booking  config.BookingConfig
	session  config.SessionConfig
	metrics  metrics.Recorder
	logger   *zap.Logger
	now      func() time.Time
}

// Deps are the collaborators of a Handler. Notifier, Metrics and Logger may be nil.
type Deps struct {
	Backend  Backend
	Sessions Sessions
	Store    Store
	Notifier Notifier
	WebPush  *webpush.Options
	Metrics  metrics.Recorder
	Logger   *zap.Logger
}

// NewHandler creates a new API handler.
func NewHandler(cfg *config.Config, deps Deps) *Handler {
	registerValidators()

	h := &Handler{
		backend:  deps.Backend,
		sessions: deps.Sessions,
		store:    deps.Store,
		notifier: deps.Notifier,
		webpush:  deps.WebPush,
		booking:  cfg.Booking,
		session:  cfg.Session,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
		now:      time.Now,
	}
	if h.notifier == nil {
		h.notifier = discardNotifier{}
	}
	if h.metrics == nil {
		h.metrics = metrics.Nop{}
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	if h.booking.Location == nil {
		h.booking.Location = time.Local
	}
	return h
}

// clock is the current time in the booking timezone.
func (h *Handler) clock() time.Time {
	return h.now().In(h.booking.Location)
}

func currentSession(c *gin.Context) *session.Session {
	sess, ok := mw.SessionFrom(c)
	if !ok {
		panic("api: handler mounted without session middleware")
	}
	return sess
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}
