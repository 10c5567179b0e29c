package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"campus-rms-console/internal/booking"
	"campus-rms-console/internal/model"
	"campus-rms-console/internal/parse"
	"campus-rms-console/internal/password"
	"campus-rms-console/internal/policy"
)

// Navigation returns the menu view model of the session's role.
func (h *Handler) Navigation(c *gin.Context) {
	c.JSON(http.StatusOK, policy.NavigationFor(currentSession(c).Identity.Role))
}

// Dashboard returns the counters and recent bookings of the session.
func (h *Handler) Dashboard(c *gin.Context) {
	sess := currentSession(c)

	var (
		bookings  []model.Booking
		resources []model.Resource
		users     []model.Identity
	)
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() (err error) {
		bookings, err = h.backend.ListBookings(ctx)
		return err
	})
	g.Go(func() (err error) {
		resources, err = h.backend.ListResources(ctx)
		return err
	})
	g.Go(func() (err error) {
		users, err = h.backend.ListUsers(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		h.backendFailed(c, "dashboard", err, false)
		return
	}

	c.JSON(http.StatusOK, booking.Summarize(sess.Identity, bookings, len(resources), len(users)))
}

type optionsResponse struct {
	TimeSlots            []string               `json:"time_slots"`
	DefaultTimeSlot      string                 `json:"default_time_slot"`
	Today                string                 `json:"today"`
	Roles                []model.Role           `json:"roles"`
	RegistrationRoles    []model.Role           `json:"registration_roles"`
	IdentityStatuses     []model.IdentityStatus `json:"identity_statuses"`
	ResourceTypes        []model.ResourceType   `json:"resource_types"`
	ResourceStatuses     []model.ResourceStatus `json:"resource_statuses"`
	BookingStatuses      []model.BookingStatus  `json:"booking_statuses"`
	PasswordRequirements []string               `json:"password_requirements"`
}

// Options returns the values the form pickers offer. Today is the earliest
// selectable booking date.
func (h *Handler) Options(c *gin.Context) {
	c.JSON(http.StatusOK, optionsResponse{
		TimeSlots:            model.TimeSlots,
		DefaultTimeSlot:      model.DefaultTimeSlot,
		Today:                h.clock().Format(parse.DateLayout),
		Roles:                []model.Role{model.RoleStudent, model.RoleStaff, model.RoleAdmin},
		RegistrationRoles:    []model.Role{model.RoleStudent, model.RoleStaff},
		IdentityStatuses:     []model.IdentityStatus{model.IdentityActive, model.IdentityInactive},
		ResourceTypes:        model.ResourceTypes,
		ResourceStatuses:     []model.ResourceStatus{model.ResourceAvailable, model.ResourceUnavailable},
		BookingStatuses:      []model.BookingStatus{model.BookingPending, model.BookingApproved, model.BookingRejected},
		PasswordRequirements: password.Requirements(),
	})
}

// Health reports that the process is serving.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
