package api

import (
	"ecommerce_api/internal/domain"  // Importing domain models
	"ecommerce_api/internal/service" // Business rules
	"ecommerce_api/internal/utils"   // Cache helpers
	"net/http"                       // HTTP status codes

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

// CategoryRequest is the payload of POST /categories
type CategoryRequest struct {
	Name        string `json:"name" binding:"required"` // Unique name
	Description string `json:"description"`             // Free text
}

// UpdateCategoryRequest changes only the fields present in the body
type UpdateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// CreateCategoryHandler adds a category
func CreateCategoryHandler(categories *service.CategoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CategoryRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		category, err := categories.Create(c.Request.Context(), req.Name, req.Description)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, category)
	}
}

// ListCategoriesHandler lists categories
func ListCategoriesHandler(categories *service.CategoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := newQuery(c)
		active, page := q.Bool("active"), q.Page()
		if q.err != nil {
			respondError(c, q.err)
			return
		}
		list, err := categories.List(c.Request.Context(), active, page)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// GetCategoryHandler returns one category, served from Redis when cached
func GetCategoryHandler(categories *service.CategoryService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		ctx := c.Request.Context()
		key := categoryKey(id) // Cache key for this category
		var cached domain.Category
		// If cached data found, return it
		if found, err := utils.GetCache(ctx, rdb, key, &cached); err == nil && found {
			c.JSON(http.StatusOK, cached)
			return
		}
		category, err := categories.Get(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}
		_ = utils.SetCache(ctx, rdb, key, category, cacheTTL) // Cache the result
		c.JSON(http.StatusOK, category)
	}
}

// UpdateCategoryHandler renames or redescribes a category
func UpdateCategoryHandler(categories *service.CategoryService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req UpdateCategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		category, err := categories.Update(c.Request.Context(), id, req.Name, req.Description)
		if err != nil {
			respondError(c, err)
			return
		}
		_ = utils.DeleteCache(c.Request.Context(), rdb, categoryKey(id)) // Invalidate cached copy
		c.JSON(http.StatusOK, category)
	}
}

// DeleteCategoryHandler removes a category, or deactivates it when products use it
func DeleteCategoryHandler(categories *service.CategoryService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		soft, err := categories.Delete(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		_ = utils.DeleteCache(c.Request.Context(), rdb, categoryKey(id)) // Invalidate cached copy
		deleted(c, "Category", soft)
	}
}
