package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"inventory-svc/middleware"
	"inventory-svc/models"
	"inventory-svc/repository"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type OrderHandler struct {
	store     *repository.Store
	publisher OrderEventPublisher
	logger    *zap.Logger
}

func NewOrderHandler(store *repository.Store, publisher OrderEventPublisher, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

func (h *OrderHandler) GetOrders(c *gin.Context) {
	ctx, span := startSpan(c, "GetOrders")
	defer span.End()

	orders, err := h.store.ListOrders(ctx)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to fetch orders", zap.Error(err))
		internalError(c)
		return
	}

	span.SetAttributes(attribute.Int("orders.count", len(orders)))
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	ctx, span := startSpan(c, "GetOrder")
	defer span.End()

	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}
	span.SetAttributes(attribute.Int64("order.id", int64(id)))

	order, err := h.store.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		span.RecordError(err)
		h.logger.Error("Failed to get order", zap.Error(err))
		internalError(c)
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	ctx, span := startSpan(c, "CreateOrder")
	defer span.End()

	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customerName := *req.CustomerName
	lines := req.Lines()
	span.SetAttributes(
		attribute.String("customer_name", customerName),
		attribute.Int("order.lines", len(lines)),
	)

	order, err := h.store.CreateOrder(ctx, customerName, lines)
	if err != nil {
		var notFound *repository.ProductNotFoundError
		switch {
		case errors.As(err, &notFound):
			span.SetAttributes(attribute.String("missing_product", notFound.Name))
			message := fmt.Sprintf("Product %s not found", notFound.Name)
			if req.SingleProduct() {
				message = "Product not found"
			}
			c.JSON(http.StatusNotFound, models.MessageResponse{Message: message})
		case errors.Is(err, repository.ErrEmptyOrder):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Order must contain at least one product"})
		default:
			span.RecordError(err)
			h.logger.Error("Failed to create order", zap.Error(err))
			internalError(c)
		}
		return
	}

	span.SetAttributes(
		attribute.Int64("order.id", int64(order.ID)),
		attribute.Float64("order.total_price", order.TotalPrice),
	)
	middleware.RecordOrderCreated(order.TotalPrice, len(order.Products))

	if h.publisher != nil {
		if err := h.publisher.PublishOrderEvent(ctx, models.NewOrderCreatedEvent(order)); err != nil {
			// Don't fail the request, but log the error
			h.logger.Error("Failed to publish order_created event", zap.Uint("order_id", order.ID), zap.Error(err))
		}
	}

	h.logger.Info("Order created",
		zap.String("trace_id", middleware.GetTraceID(ctx)),
		zap.Uint("order_id", order.ID),
		zap.Float64("total_price", order.TotalPrice),
	)
	c.JSON(http.StatusCreated, models.CreateOrderResponse{
		Message:    "Order added successfully",
		OrderID:    order.ID,
		TotalPrice: order.TotalPrice,
	})
}
