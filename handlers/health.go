package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db      Pinger
	service string
	logger  *zap.Logger
}

func NewHealthHandler(db Pinger, service string, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:      db,
		service: service,
		logger:  logger,
	}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Warn("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"service": h.service, "status": "unhealthy"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"service": h.service, "status": "healthy"})
}
