package api

import (
	"ecommerce_api/internal/config"     // Application configuration
	"ecommerce_api/internal/events"     // Order event publishing
	"ecommerce_api/internal/metrics"    // Prometheus collectors
	"ecommerce_api/internal/middleware" // Custom middleware
	"ecommerce_api/internal/service"    // Business rules
	"net/http"                          // HTTP status codes

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// Deps are the shared resources the handlers run on
type Deps struct {
	Config    *config.Config
	DB        *gorm.DB
	Redis     *redis.Client // Optional, nil disables caching and token revocation
	Publisher events.Publisher
	Metrics   *metrics.ServerMetrics
}

// SetupRouter wires the services, middleware and routes
func SetupRouter(d Deps) *gin.Engine {
	if d.Publisher == nil {
		d.Publisher = events.NopPublisher{}
	}
	if d.Metrics == nil {
		d.Metrics = metrics.NewServerMetrics()
	}
	cfg := d.Config

	auth := service.NewAuthService(d.DB, d.Redis, cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	clients := service.NewClientService(d.DB)
	categories := service.NewCategoryService(d.DB)
	products := service.NewProductService(d.DB)
	orders := service.NewOrderService(d.DB, d.Publisher)

	r := gin.New() // Gin router instance
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(), middleware.Metrics(d.Metrics))

	r.GET("/health", HealthHandler(d.DB, d.Redis))    // Liveness and dependency check
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler())) // Prometheus scrape endpoint

	// Auth routes
	authGroup := r.Group("/auth")
	authGroup.POST("/register", RegisterHandler(auth))                                 // Registration endpoint
	authGroup.POST("/login", LoginHandler(auth))                                       // Login endpoint
	authGroup.POST("/refresh", RefreshHandler(auth))                                   // Token refresh endpoint
	authGroup.POST("/logout", middleware.JWTAuthMiddleware(auth), LogoutHandler(auth)) // Token revocation endpoint

	// Everything else requires a valid access token of an active user
	protected := r.Group("")
	protected.Use(middleware.JWTAuthMiddleware(auth), middleware.ActiveUserMiddleware(d.DB))

	protected.POST("/clients", CreateClientHandler(clients))
	protected.GET("/clients", ListClientsHandler(clients))
	protected.GET("/clients/:id", GetClientHandler(clients))
	protected.PUT("/clients/:id", UpdateClientHandler(clients))
	protected.DELETE("/clients/:id", DeleteClientHandler(clients))
	protected.GET("/clients/:id/addresses", ListAddressesHandler(clients))
	protected.POST("/clients/:id/addresses", CreateAddressHandler(clients))
	protected.PUT("/clients/:id/addresses/:address_id", UpdateAddressHandler(clients))
	protected.DELETE("/clients/:id/addresses/:address_id", DeleteAddressHandler(clients))

	protected.POST("/categories", CreateCategoryHandler(categories))
	protected.GET("/categories", ListCategoriesHandler(categories))
	protected.GET("/categories/:id", GetCategoryHandler(categories, d.Redis))
	protected.PUT("/categories/:id", UpdateCategoryHandler(categories, d.Redis))
	protected.DELETE("/categories/:id", DeleteCategoryHandler(categories, d.Redis))

	protected.POST("/products", CreateProductHandler(products))
	protected.GET("/products", ListProductsHandler(products))
	protected.GET("/products/low-stock", LowStockHandler(products))
	protected.GET("/products/:id", GetProductHandler(products, d.Redis))
	protected.PUT("/products/:id", UpdateProductHandler(products, d.Redis))
	protected.DELETE("/products/:id", DeleteProductHandler(products, d.Redis))

	protected.POST("/orders", CreateOrderHandler(orders, d.Redis, d.Metrics))
	protected.GET("/orders", ListOrdersHandler(orders))
	protected.GET("/orders/:id", GetOrderHandler(orders))
	protected.PUT("/orders/:id", UpdateOrderHandler(orders, d.Redis))
	protected.DELETE("/orders/:id", CancelOrderHandler(orders, d.Redis))

	return r
}

// HealthHandler reports whether the database and, when configured, Redis answer
func HealthHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctx).Err(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "redis": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
