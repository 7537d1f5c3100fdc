package handlers

import (
	"errors"
	"net/http"

	"inventory-svc/cache"
	"inventory-svc/middleware"
	"inventory-svc/models"
	"inventory-svc/repository"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type ProductHandler struct {
	store  *repository.Store
	cache  ListCache
	logger *zap.Logger
}

func NewProductHandler(store *repository.Store, listCache ListCache, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		store:  store,
		cache:  listCache,
		logger: logger,
	}
}

func (h *ProductHandler) GetProducts(c *gin.Context) {
	ctx, span := startSpan(c, "GetProducts")
	defer span.End()

	var version int64
	if h.cache != nil {
		var cached []models.Product
		var hit bool
		version, hit = h.cache.Get(ctx, cache.KeyProducts, &cached)
		middleware.RecordCacheLookup(cache.KeyProducts, hit)
		span.SetAttributes(attribute.Bool("cache.hit", hit))
		if hit {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	products, err := h.store.ListProducts(ctx)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to fetch products", zap.Error(err))
		internalError(c)
		return
	}

	if h.cache != nil {
		h.cache.Set(ctx, cache.KeyProducts, products, version)
	}

	span.SetAttributes(attribute.Int("products.count", len(products)))
	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	ctx, span := startSpan(c, "GetProduct")
	defer span.End()

	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}
	span.SetAttributes(attribute.Int64("product.id", int64(id)))

	product, err := h.store.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		span.RecordError(err)
		h.logger.Error("Failed to fetch product", zap.Error(err))
		internalError(c)
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	ctx, span := startSpan(c, "CreateProduct")
	defer span.End()

	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	span.SetAttributes(
		attribute.String("product.name", *req.Name),
		attribute.String("product.category", *req.Category),
	)

	product, err := h.store.CreateProduct(ctx, *req.Name, *req.Price, *req.Category, req.Quantity)
	if err != nil {
		if errors.Is(err, repository.ErrProductExists) {
			c.JSON(http.StatusBadRequest, models.MessageResponse{Message: "Product already exists"})
			return
		}
		span.RecordError(err)
		h.logger.Error("Failed to create product", zap.Error(err))
		internalError(c)
		return
	}

	if h.cache != nil {
		h.cache.Invalidate(ctx, cache.KeyProducts, cache.KeyCategories)
	}
	middleware.RecordProductCreated()

	span.SetAttributes(attribute.Int64("product.id", int64(product.ID)))
	h.logger.Info("Product created",
		zap.String("trace_id", middleware.GetTraceID(ctx)),
		zap.Uint("product_id", product.ID),
		zap.String("name", product.Name),
	)
	c.JSON(http.StatusCreated, models.MessageResponse{Message: "Product added successfully"})
}
