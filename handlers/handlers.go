package handlers

import (
	"context"
	"net/http"
	"strconv"

	"inventory-svc/models"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "inventory-service"

// ListCache caches list responses. Implementations must swallow their own
// errors; a nil ListCache disables caching. Set only stores value if the key
// was not invalidated after the Get that returned version.
type ListCache interface {
	Get(ctx context.Context, key string, dst any) (version int64, hit bool)
	Set(ctx context.Context, key string, value any, version int64)
	Invalidate(ctx context.Context, keys ...string)
}

// OrderEventPublisher delivers order events. A nil publisher disables
// publishing.
type OrderEventPublisher interface {
	PublishOrderEvent(ctx context.Context, event models.OrderEvent) error
}

func startSpan(c *gin.Context, name string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(c.Request.Context(), name)
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func internalError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
