package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campus-rms-console/internal/model"
	"campus-rms-console/internal/mw"
	"campus-rms-console/internal/policy"
)

type userRequest struct {
	Name     string               `json:"name" binding:"required"`
	Email    string               `json:"email" binding:"required,email"`
	Phone    string               `json:"phone" binding:"required"`
	Role     model.Role           `json:"role" binding:"required,role"`
	Status   model.IdentityStatus `json:"status" binding:"omitempty,oneof=ACTIVE INACTIVE"`
	Password string               `json:"password"`
}

func (r userRequest) input() model.IdentityInput {
	status := r.Status
	if status == "" {
		status = model.IdentityActive
	}
	return model.IdentityInput{
		Name:     r.Name,
		Email:    r.Email,
		Phone:    r.Phone,
		Password: r.Password,
		Role:     r.Role,
		Status:   status,
	}
}

// ListUsers lists identities, optionally filtered by status, role and a
// case-insensitive search over name, email and phone.
func (h *Handler) ListUsers(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		users []model.Identity
		err   error
	)
	if raw := c.Query("status"); raw != "" {
		status := model.IdentityStatus(strings.ToUpper(raw))
		if !status.Valid() {
			respondError(c, http.StatusUnprocessableEntity, "status must be ACTIVE or INACTIVE")
			return
		}
		users, err = h.backend.ListUsersByStatus(ctx, status)
	} else {
		users, err = h.backend.ListUsers(ctx)
	}
	if err != nil {
		h.backendFailed(c, "users.list", err, false)
		return
	}

	role := model.Role(strings.ToUpper(c.Query("role")))
	search := strings.ToLower(strings.TrimSpace(c.Query("search")))
	out := make([]model.Identity, 0, len(users))
	for _, u := range users {
		if role != "" && u.Role != role {
			continue
		}
		if search != "" && !matchesSearch(search, u.Name, u.Email, u.Phone) {
			continue
		}
		out = append(out, u)
	}
	c.JSON(http.StatusOK, out)
}

func matchesSearch(needle string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// canManageUser reports whether the session may read or edit identity id:
// itself, or anyone when its role opens the users section.
func canManageUser(c *gin.Context, id int64) bool {
	sess := currentSession(c)
	return sess.Identity.ID == id || policy.Allows(sess.Identity.Role, policy.SectionUsers)
}

// GetUser returns one identity.
func (h *Handler) GetUser(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if !canManageUser(c, id) {
		respondError(c, http.StatusForbidden, mw.ErrSectionDenied)
		return
	}

	user, err := h.backend.GetUser(c.Request.Context(), id)
	if err != nil {
		h.backendFailed(c, "users.get", err, false)
		return
	}
	c.JSON(http.StatusOK, user)
}

// CreateUser creates an identity. A password is required.
func (h *Handler) CreateUser(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	if !checkPassword(c, req.Password, true) {
		return
	}

	created, err := h.backend.CreateUser(c.Request.Context(), req.input())
	if err != nil {
		h.backendFailed(c, "users.create", err, false)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateUser replaces an identity. An empty password keeps the current one.
// Identities editing themselves may not change their own role or status, and
// their session picks up the new details.
func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if !canManageUser(c, id) {
		respondError(c, http.StatusForbidden, mw.ErrSectionDenied)
		return
	}

	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	if !checkPassword(c, req.Password, false) {
		return
	}

	sess := currentSession(c)
	self := sess.Identity.ID == id
	in := req.input()
	if self && (in.Role != sess.Identity.Role || in.Status != sess.Identity.Status) {
		respondError(c, http.StatusForbidden, "You cannot change your own role or status")
		return
	}

	updated, err := h.backend.UpdateUser(c.Request.Context(), id, in)
	if err != nil {
		h.backendFailed(c, "users.update", err, false)
		return
	}

	if self {
		if _, err := h.sessions.Refresh(c.Request.Context(), sess.Token, *updated); err != nil {
			h.logger.Warn("failed to refresh session after self edit", zap.Int64("identity_id", id), zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, updated)
}

// DeactivateUser sets an identity's status to INACTIVE.
func (h *Handler) DeactivateUser(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if currentSession(c).Identity.ID == id {
		respondError(c, http.StatusForbidden, "You cannot change your own role or status")
		return
	}

	ctx := c.Request.Context()
	user, err := h.backend.GetUser(ctx, id)
	if err != nil {
		h.backendFailed(c, "users.get", err, false)
		return
	}
	in := model.InputFrom(*user)
	in.Status = model.IdentityInactive
	updated, err := h.backend.UpdateUser(ctx, id, in)
	if err != nil {
		h.backendFailed(c, "users.update", err, false)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteUser removes an identity.
func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.backend.DeleteUser(c.Request.Context(), id); err != nil {
		h.backendFailed(c, "users.delete", err, false)
		return
	}
	c.Status(http.StatusNoContent)
}
