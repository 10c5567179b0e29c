package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	"campus-rms-console/internal/metrics"
	"campus-rms-console/internal/model"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// SubscriptionStore is where the pool finds a booking owner's endpoints.
type SubscriptionStore interface {
	SubscriptionsFor(ctx context.Context, identityID int64) ([]model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
}

// Decision is a moderation outcome to tell the booking's owner about.
type Decision struct {
	BookingID    int64
	OwnerID      int64
	Status       model.BookingStatus
	ResourceName string
	BookingDate  string
	TimeSlot     string
}

// DecisionOf builds the notification job for b.
func DecisionOf(b model.Booking) Decision {
	return Decision{
		BookingID:    b.ID,
		OwnerID:      b.UserID,
		Status:       b.Status,
		ResourceName: b.ResourceName,
		BookingDate:  b.BookingDate,
		TimeSlot:     b.TimeSlot,
	}
}

// Payload is the JSON document the browser's service worker receives.
type Payload struct {
	Title     string              `json:"title"`
	Body      string              `json:"body"`
	BookingID int64               `json:"booking_id"`
	Status    model.BookingStatus `json:"status"`
}

// PayloadFor renders the push message of d.
func PayloadFor(d Decision) Payload {
	verb := strings.ToLower(string(d.Status))
	resource := d.ResourceName
	if resource == "" {
		resource = fmt.Sprintf("booking #%d", d.BookingID)
	}
	return Payload{
		Title:     "Booking " + verb,
		Body:      fmt.Sprintf("Your booking of %s on %s (%s) was %s.", resource, d.BookingDate, d.TimeSlot, verb),
		BookingID: d.BookingID,
		Status:    d.Status,
	}
}

// WorkerPool manages a pool of workers for sending notifications.
type WorkerPool struct {
	size    int
	jobs    chan Decision
	store   SubscriptionStore
	webpush *webpush.Options
	sender  NotificationSender
	metrics metrics.Recorder
	logger  *zap.Logger
}

// NewWorkerPool creates a new worker pool with a queue of queueSize jobs.
func NewWorkerPool(size, queueSize int, st SubscriptionStore, webpushOptions *webpush.Options, rec metrics.Recorder, logger *zap.Logger) *WorkerPool {
	if rec == nil {
		rec = metrics.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if queueSize < size {
		queueSize = size
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Decision, queueSize),
		store:   st,
		webpush: webpushOptions,
		sender:  &WebPushSender{}, // Use the real sender by default
		metrics: rec,
		logger:  logger,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

// worker is the actual worker goroutine.
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log := wp.logger.With(zap.Int("worker", id))
	log.Debug("worker started")
	for {
		select {
		case d := <-wp.jobs:
			log.Debug("processing decision", zap.Int64("booking_id", d.BookingID), zap.String("status", string(d.Status)))
			wp.notifyOwner(ctx, d)
		case <-ctx.Done():
			log.Debug("worker shutting down")
			return
		}
	}
}

// Dispatch queues a decision without blocking. It reports false when the
// queue is full and the decision was dropped.
func (wp *WorkerPool) Dispatch(d Decision) bool {
	select {
	case wp.jobs <- d:
		return true
	default:
		wp.metrics.RecordNotification("dropped")
		wp.logger.Warn("notification queue full, dropping decision", zap.Int64("booking_id", d.BookingID))
		return false
	}
}

// notifyOwner sends the decision to every subscription of the booking's owner.
func (wp *WorkerPool) notifyOwner(ctx context.Context, d Decision) {
	subscriptions, err := wp.store.SubscriptionsFor(ctx, d.OwnerID)
	if err != nil {
		wp.logger.Error("failed to fetch subscriptions", zap.Int64("identity_id", d.OwnerID), zap.Error(err))
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	payload, err := json.Marshal(PayloadFor(d))
	if err != nil {
		wp.logger.Error("failed to encode payload", zap.Int64("booking_id", d.BookingID), zap.Error(err))
		return
	}

	wp.logger.Info("sending decision notifications",
		zap.Int("count", len(subscriptions)),
		zap.Int64("booking_id", d.BookingID),
	)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		wp.metrics.RecordNotification("failed")
		wp.logger.Warn("failed to send notification", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		wp.metrics.RecordNotification("expired")
		wp.logger.Info("subscription expired, deleting", zap.String("endpoint", sub.Endpoint))
		if err := wp.store.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			wp.logger.Error("failed to delete expired subscription", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		}
		return
	}
	if resp.StatusCode >= 400 {
		wp.metrics.RecordNotification("failed")
		wp.logger.Warn("push service refused notification",
			zap.String("endpoint", sub.Endpoint), zap.Int("status", resp.StatusCode))
		return
	}
	wp.metrics.RecordNotification("sent")
}
