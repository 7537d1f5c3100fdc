package handlers

import (
	"net/http"

	"inventory-svc/cache"
	"inventory-svc/middleware"
	"inventory-svc/models"
	"inventory-svc/repository"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type CategoryHandler struct {
	store  *repository.Store
	cache  ListCache
	logger *zap.Logger
}

func NewCategoryHandler(store *repository.Store, listCache ListCache, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		store:  store,
		cache:  listCache,
		logger: logger,
	}
}

func (h *CategoryHandler) GetCategories(c *gin.Context) {
	ctx, span := startSpan(c, "GetCategories")
	defer span.End()

	var version int64
	if h.cache != nil {
		var cached []models.Category
		var hit bool
		version, hit = h.cache.Get(ctx, cache.KeyCategories, &cached)
		middleware.RecordCacheLookup(cache.KeyCategories, hit)
		if hit {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	categories, err := h.store.ListCategories(ctx)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to fetch categories", zap.Error(err))
		internalError(c)
		return
	}

	if h.cache != nil {
		h.cache.Set(ctx, cache.KeyCategories, categories, version)
	}

	span.SetAttributes(attribute.Int("categories.count", len(categories)))
	c.JSON(http.StatusOK, categories)
}
