package api

import (
	"ecommerce_api/internal/domain"  // Importing domain models
	"ecommerce_api/internal/service" // Business rules
	"ecommerce_api/internal/utils"   // Cache helpers
	"net/http"                       // HTTP status codes
	"time"                           // Expiry dates

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/redis/go-redis/v9"  // Redis client
	"github.com/shopspring/decimal" // Exact money amounts
)

// ImageRequest is an image attached to a new product
type ImageRequest struct {
	URL      string `json:"url" binding:"required"` // Image location
	Position int    `json:"position"`               // Display order
}

// CreateProductRequest is the payload of POST /products
type CreateProductRequest struct {
	Name        string          `json:"name" binding:"required"`        // Product name
	Description string          `json:"description"`                    // Product description
	SalePrice   decimal.Decimal `json:"sale_price"`                     // Price, string or number
	Barcode     string          `json:"barcode"`                        // Optional, unique
	CategoryID  uint            `json:"category_id" binding:"required"` // Owning category
	Stock       int             `json:"stock"`                          // Units on hand
	MinStock    *int            `json:"min_stock"`                      // Low stock threshold
	ExpiryDate  *time.Time      `json:"expiry_date"`                    // RFC3339
	Status      string          `json:"status"`                         // active, inactive or out_of_stock
	Images      []ImageRequest  `json:"images" binding:"dive"`          // Optional images
}

// UpdateProductRequest changes only the fields present in the body
type UpdateProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	SalePrice   *decimal.Decimal `json:"sale_price"`
	Barcode     *string          `json:"barcode"`
	CategoryID  *uint            `json:"category_id"`
	Stock       *int             `json:"stock"`
	MinStock    *int             `json:"min_stock"`
	ExpiryDate  *time.Time       `json:"expiry_date"`
	Status      *string          `json:"status"`
}

// CreateProductHandler adds a product and its images
func CreateProductHandler(products *service.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateProductRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		in := service.CreateProductInput{
			Name:        req.Name,
			Description: req.Description,
			SalePrice:   req.SalePrice,
			Barcode:     req.Barcode,
			CategoryID:  req.CategoryID,
			Stock:       req.Stock,
			MinStock:    req.MinStock,
			ExpiryDate:  req.ExpiryDate,
			Status:      domain.ProductStatus(req.Status),
		}
		for _, img := range req.Images {
			in.Images = append(in.Images, service.ImageInput{URL: img.URL, Position: img.Position})
		}
		product, err := products.Create(c.Request.Context(), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, product)
	}
}

// ListProductsHandler lists products with optional filters
func ListProductsHandler(products *service.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := newQuery(c)
		filter := service.ProductFilter{
			CategoryID: q.ID("category_id"),
			MinPrice:   q.Decimal("min_price"),
			MaxPrice:   q.Decimal("max_price"),
			InStock:    q.Bool("in_stock"),
			Active:     q.Bool("active"),
			Page:       q.Page(),
		}
		if q.err != nil {
			respondError(c, q.err)
			return
		}
		list, err := products.List(c.Request.Context(), filter)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// LowStockHandler lists active products at or below their minimum stock
func LowStockHandler(products *service.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := newQuery(c)
		page := q.Page()
		if q.err != nil {
			respondError(c, q.err)
			return
		}
		list, err := products.LowStock(c.Request.Context(), page)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// GetProductHandler returns one product with its images, served from Redis when cached
func GetProductHandler(products *service.ProductService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		ctx := c.Request.Context()
		key := productKey(id) // Cache key for this product
		var cached domain.Product
		// If cached data found, return it
		if found, err := utils.GetCache(ctx, rdb, key, &cached); err == nil && found {
			c.JSON(http.StatusOK, cached)
			return
		}
		product, err := products.Get(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}
		_ = utils.SetCache(ctx, rdb, key, product, cacheTTL) // Cache the result
		c.JSON(http.StatusOK, product)
	}
}

// UpdateProductHandler edits a product
func UpdateProductHandler(products *service.ProductService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req UpdateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		in := service.UpdateProductInput{
			Name:        req.Name,
			Description: req.Description,
			SalePrice:   req.SalePrice,
			Barcode:     req.Barcode,
			CategoryID:  req.CategoryID,
			Stock:       req.Stock,
			MinStock:    req.MinStock,
			ExpiryDate:  req.ExpiryDate,
		}
		if req.Status != nil {
			status := domain.ProductStatus(*req.Status)
			in.Status = &status
		}
		product, err := products.Update(c.Request.Context(), id, in)
		if err != nil {
			respondError(c, err)
			return
		}
		_ = utils.DeleteCache(c.Request.Context(), rdb, productKey(id)) // Invalidate cached copy
		c.JSON(http.StatusOK, product)
	}
}

// DeleteProductHandler removes a product, or deactivates it when orders reference it
func DeleteProductHandler(products *service.ProductService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		soft, err := products.Delete(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		_ = utils.DeleteCache(c.Request.Context(), rdb, productKey(id)) // Invalidate cached copy
		deleted(c, "Product", soft)
	}
}
