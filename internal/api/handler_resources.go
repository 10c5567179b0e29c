package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"campus-rms-console/internal/model"
)

type resourceRequest struct {
	Name     string               `json:"name" binding:"required"`
	Type     model.ResourceType   `json:"type" binding:"required,resource_type"`
	Capacity int                  `json:"capacity" binding:"required,gt=0"`
	Location string               `json:"location" binding:"required"`
	Status   model.ResourceStatus `json:"status" binding:"omitempty,oneof=AVAILABLE UNAVAILABLE"`
}

func (r resourceRequest) input() model.ResourceInput {
	status := r.Status
	if status == "" {
		status = model.ResourceAvailable
	}
	return model.ResourceInput{
		Name:     r.Name,
		Type:     r.Type,
		Capacity: r.Capacity,
		Location: r.Location,
		Status:   status,
	}
}

// ListResources lists resources, optionally filtered by type and status.
func (h *Handler) ListResources(c *gin.Context) {
	resources, err := h.backend.ListResources(c.Request.Context())
	if err != nil {
		h.backendFailed(c, "resources.list", err, false)
		return
	}

	typ := model.ResourceType(strings.ToUpper(c.Query("type")))
	status := model.ResourceStatus(strings.ToUpper(c.Query("status")))
	out := make([]model.Resource, 0, len(resources))
	for _, r := range resources {
		if typ != "" && r.Type != typ {
			continue
		}
		if status != "" && r.Status != status {
			continue
		}
		out = append(out, r)
	}
	c.JSON(http.StatusOK, out)
}

// ListAvailableResources lists the resources that can be booked.
func (h *Handler) ListAvailableResources(c *gin.Context) {
	resources, err := h.backend.ListAvailableResources(c.Request.Context())
	if err != nil {
		h.backendFailed(c, "resources.available", err, false)
		return
	}
	c.JSON(http.StatusOK, resources)
}

func (h *Handler) GetResource(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	resource, err := h.backend.GetResource(c.Request.Context(), id)
	if err != nil {
		h.backendFailed(c, "resources.get", err, false)
		return
	}
	c.JSON(http.StatusOK, resource)
}

func (h *Handler) CreateResource(c *gin.Context) {
	var req resourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	created, err := h.backend.CreateResource(c.Request.Context(), req.input())
	if err != nil {
		h.backendFailed(c, "resources.create", err, false)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) UpdateResource(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req resourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	updated, err := h.backend.UpdateResource(c.Request.Context(), id, req.input())
	if err != nil {
		h.backendFailed(c, "resources.update", err, false)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteResource(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.backend.DeleteResource(c.Request.Context(), id); err != nil {
		h.backendFailed(c, "resources.delete", err, false)
		return
	}
	c.Status(http.StatusNoContent)
}
