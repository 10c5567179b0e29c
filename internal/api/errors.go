package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campus-rms-console/internal/apierr"
)

func respondError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// bindFailed answers a request body that could not be bound: 400 for
// malformed JSON, 422 for values that fail validation.
func bindFailed(c *gin.Context, err error) {
	msg, invalid := bindingMessage(err)
	if invalid {
		respondError(c, http.StatusUnprocessableEntity, msg)
		return
	}
	respondError(c, http.StatusBadRequest, msg)
}

// backendFailed answers a failed backend call. Booking flows pass classify so
// conflict wording is normalised.
func (h *Handler) backendFailed(c *gin.Context, op string, err error, classify bool) {
	msg := apierr.Message(err)
	if classify {
		msg = apierr.Classify(err)
	}
	status := apierr.HTTPStatus(err)

	if status >= http.StatusInternalServerError {
		h.logger.Error("backend call failed", zap.String("op", op), zap.Int("status", status), zap.Error(err))
	} else {
		h.logger.Debug("backend refused request", zap.String("op", op), zap.Int("status", status), zap.String("message", msg))
	}
	respondError(c, status, msg)
}
