package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"campus-rms-console/internal/model"
	"campus-rms-console/internal/store"
)

type putSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required,url"`
	P256DH   string `json:"p256dh" binding:"required"`
	Auth     string `json:"auth" binding:"required"`
}

// PutSubscription registers the browser endpoint of the session's identity
// for booking decision notifications.
func (h *Handler) PutSubscription(c *gin.Context) {
	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	subscription := model.PushSubscription{
		Endpoint:   req.Endpoint,
		IdentityID: currentSession(c).Identity.ID,
		P256DH:     req.P256DH,
		Auth:       req.Auth,
	}
	if err := h.store.PutSubscription(c.Request.Context(), &subscription); err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.Status(http.StatusCreated)
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeleteSubscription handles the deletion of a subscription.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	if _, ok := h.ownedSubscription(c, req.Endpoint); !ok {
		return
	}

	if err := h.store.DeleteSubscription(c.Request.Context(), req.Endpoint); err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.Status(http.StatusNoContent)
}

// GetSubscription tells whether the endpoint is registered to the session's identity.
func (h *Handler) GetSubscription(c *gin.Context) {
	endpoint := c.Query("endpoint")
	if endpoint == "" {
		respondError(c, http.StatusBadRequest, "endpoint is required")
		return
	}

	subscription, ok := h.ownedSubscription(c, endpoint)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"endpoint":   subscription.Endpoint,
		"created_at": subscription.CreatedAt,
	})
}

// ownedSubscription loads endpoint and answers 404 unless it belongs to the
// session's identity.
func (h *Handler) ownedSubscription(c *gin.Context, endpoint string) (*model.PushSubscription, bool) {
	subscription, err := h.store.GetSubscription(c.Request.Context(), endpoint)
	if errors.Is(err, store.ErrNotFound) || (err == nil && subscription.IdentityID != currentSession(c).Identity.ID) {
		respondError(c, http.StatusNotFound, "subscription not found")
		return nil, false
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return subscription, true
}
