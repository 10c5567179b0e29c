package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campus-rms-console/internal/booking"
	"campus-rms-console/internal/model"
	"campus-rms-console/internal/notification"
	"campus-rms-console/internal/policy"
)

const (
	errBookingForbidden = "You do not have permission to change this booking"
	errBookingHidden    = "You do not have permission to view this booking"
	errNotModerator     = "Only staff and administrators can approve or reject bookings"
)

type bookingRequest struct {
	UserID      int64  `json:"user"`
	ResourceID  int64  `json:"resource" binding:"required,gt=0"`
	BookingDate string `json:"booking_date" binding:"required,booking_date"`
	TimeSlot    string `json:"time_slot" binding:"required,timeslot"`
}

// visibleTo narrows bookings to what who may list: students see their own.
func visibleTo(who model.Identity, bookings []model.Booking) []model.Booking {
	if policy.CanModerate(who.Role) {
		return bookings
	}
	return booking.OwnedBy(bookings, who.ID)
}

// ListBookings lists the bookings visible to the session, optionally by status.
func (h *Handler) ListBookings(c *gin.Context) {
	bookings, err := h.backend.ListBookings(c.Request.Context())
	if err != nil {
		h.backendFailed(c, "bookings.list", err, false)
		return
	}
	bookings = visibleTo(currentSession(c).Identity, bookings)

	if raw := c.Query("status"); raw != "" {
		status := model.BookingStatus(strings.ToUpper(raw))
		filtered := make([]model.Booking, 0, len(bookings))
		for _, b := range bookings {
			if b.Status == status {
				filtered = append(filtered, b)
			}
		}
		bookings = filtered
	}
	c.JSON(http.StatusOK, bookings)
}

// ListUpcomingBookings lists the session's visible bookings from today on.
func (h *Handler) ListUpcomingBookings(c *gin.Context) {
	bookings, err := h.backend.ListUpcomingBookings(c.Request.Context())
	if err != nil {
		h.backendFailed(c, "bookings.upcoming", err, false)
		return
	}
	c.JSON(http.StatusOK, visibleTo(currentSession(c).Identity, bookings))
}

func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	b, err := h.backend.GetBooking(c.Request.Context(), id)
	if err != nil {
		h.backendFailed(c, "bookings.get", err, false)
		return
	}
	if !policy.CanViewBooking(currentSession(c).Identity, *b) {
		respondError(c, http.StatusForbidden, errBookingHidden)
		return
	}
	c.JSON(http.StatusOK, b)
}

// CreateBooking books a slot. The date and slot are checked locally, then
// optionally against known bookings, before the backend is asked.
func (h *Handler) CreateBooking(c *gin.Context) {
	var req bookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	who := currentSession(c).Identity
	in := model.BookingInput{
		UserID:      req.UserID,
		ResourceID:  req.ResourceID,
		BookingDate: req.BookingDate,
		TimeSlot:    req.TimeSlot,
	}
	// Students always book as themselves.
	if !policy.CanModerate(who.Role) || in.UserID == 0 {
		in.UserID = who.ID
	}

	if !h.precheck(c, in, 0) {
		return
	}

	created, err := h.backend.CreateBooking(c.Request.Context(), in)
	if err != nil {
		h.backendFailed(c, "bookings.create", err, true)
		return
	}
	h.logger.Info("booking created",
		zap.Int64("booking_id", created.ID),
		zap.Int64("identity_id", who.ID),
		zap.String("date", created.BookingDate),
		zap.String("slot", created.TimeSlot),
	)
	c.JSON(http.StatusCreated, created)
}

// UpdateBooking replaces the date, slot or resource of a booking.
func (h *Handler) UpdateBooking(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req bookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	ctx := c.Request.Context()
	who := currentSession(c).Identity
	current, err := h.backend.GetBooking(ctx, id)
	if err != nil {
		h.backendFailed(c, "bookings.get", err, true)
		return
	}
	if !policy.CanEditBooking(who, *current) {
		respondError(c, http.StatusForbidden, errBookingForbidden)
		return
	}

	in := model.BookingInput{
		UserID:      current.UserID,
		ResourceID:  req.ResourceID,
		BookingDate: req.BookingDate,
		TimeSlot:    req.TimeSlot,
	}
	if policy.CanModerate(who.Role) && req.UserID != 0 {
		in.UserID = req.UserID
	}

	if !h.precheck(c, in, id) {
		return
	}

	updated, err := h.backend.UpdateBooking(ctx, id, in)
	if err != nil {
		h.backendFailed(c, "bookings.update", err, true)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// precheck runs the local booking rules and answers the request when one
// fails. excludeID is the booking being edited, 0 on create.
func (h *Handler) precheck(c *gin.Context, in model.BookingInput, excludeID int64) bool {
	if err := booking.Validate(booking.CandidateOf(in), h.clock()); err != nil {
		h.metrics.RecordRejection(booking.Reason(err))
		respondError(c, http.StatusUnprocessableEntity, err.Error())
		return false
	}
	if !h.booking.PrecheckConflicts {
		return true
	}

	existing, err := h.backend.ListUpcomingBookings(c.Request.Context())
	if err != nil {
		if c.Request.Context().Err() != nil {
			h.backendFailed(c, "bookings.upcoming", err, true)
			return false
		}
		// The backend enforces the same rules, so it still gets the final word.
		h.logger.Warn("conflict pre-check skipped", zap.Error(err))
		return true
	}
	if err := booking.FindConflict(in, existing, excludeID); err != nil {
		h.metrics.RecordRejection(booking.Reason(err))
		respondError(c, http.StatusConflict, err.Error())
		return false
	}
	return true
}

func (h *Handler) DeleteBooking(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	current, err := h.backend.GetBooking(ctx, id)
	if err != nil {
		h.backendFailed(c, "bookings.get", err, false)
		return
	}
	if !policy.CanEditBooking(currentSession(c).Identity, *current) {
		respondError(c, http.StatusForbidden, errBookingForbidden)
		return
	}
	if err := h.backend.DeleteBooking(ctx, id); err != nil {
		h.backendFailed(c, "bookings.delete", err, false)
		return
	}
	c.Status(http.StatusNoContent)
}

// ApproveBooking marks a booking APPROVED and notifies its owner.
func (h *Handler) ApproveBooking(c *gin.Context) {
	h.decide(c, "bookings.approve", h.backend.ApproveBooking)
}

// RejectBooking marks a booking REJECTED and notifies its owner.
func (h *Handler) RejectBooking(c *gin.Context) {
	h.decide(c, "bookings.reject", h.backend.RejectBooking)
}

func (h *Handler) decide(c *gin.Context, op string, call func(ctx context.Context, id int64) (*model.Booking, error)) {
	if !policy.CanModerate(currentSession(c).Identity.Role) {
		respondError(c, http.StatusForbidden, errNotModerator)
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	decided, err := call(ctx, id)
	if err != nil {
		h.backendFailed(c, op, err, false)
		return
	}

	// Recording the status first keeps the watcher from announcing it again.
	if err := h.store.RecordBookingStatus(ctx, h.clock(), *decided); err != nil {
		h.logger.Warn("failed to record booking status", zap.Int64("booking_id", id), zap.Error(err))
	}
	h.notifier.Dispatch(notification.DecisionOf(*decided))

	c.JSON(http.StatusOK, decided)
}
