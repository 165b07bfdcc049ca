package api

import (
	"context"                           // Cache invalidation
	"ecommerce_api/internal/apperr"     // Application errors
	"ecommerce_api/internal/domain"     // Importing domain models
	"ecommerce_api/internal/metrics"    // Prometheus collectors
	"ecommerce_api/internal/middleware" // Context keys
	"ecommerce_api/internal/service"    // Business rules
	"ecommerce_api/internal/utils"      // Cache helpers
	"net/http"                          // HTTP status codes
	"time"                              // Delivery dates

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/redis/go-redis/v9"  // Redis client
	"github.com/shopspring/decimal" // Exact money amounts
)

// OrderItemRequest is one line of a new order
type OrderItemRequest struct {
	ProductID uint            `json:"product_id" binding:"required"` // Ordered product
	Quantity  int             `json:"quantity"`                      // Units, must be positive
	UnitPrice decimal.Decimal `json:"unit_price"`                    // Price per unit
	Discount  decimal.Decimal `json:"discount"`                      // Line discount
}

// CreateOrderRequest is the payload of POST /orders
type CreateOrderRequest struct {
	ClientID             uint               `json:"client_id" binding:"required"`      // Buying client
	PaymentMethod        string             `json:"payment_method" binding:"required"` // credit_card, debit_card, boleto, pix or cash
	ShippingAddress      string             `json:"shipping_address"`                  // Defaults to the primary address
	Notes                string             `json:"notes"`                             // Free text
	ExpectedDeliveryDate *time.Time         `json:"expected_delivery_date"`            // RFC3339
	Items                []OrderItemRequest `json:"items" binding:"dive"`              // At least one
}

// UpdateOrderRequest changes the status and/or delivery details
type UpdateOrderRequest struct {
	Status          *string `json:"status"`
	PaymentMethod   *string `json:"payment_method"`
	ShippingAddress *string `json:"shipping_address"`
}

// invalidateProducts drops the cached copies of the products an order touched
func invalidateProducts(ctx context.Context, rdb *redis.Client, order *domain.Order) {
	keys := make([]string, 0, len(order.Items))
	for _, it := range order.Items {
		keys = append(keys, productKey(it.ProductID))
	}
	_ = utils.DeleteCache(ctx, rdb, keys...)
}

// CreateOrderHandler places an order for the authenticated user
func CreateOrderHandler(orders *service.OrderService, rdb *redis.Client, m *metrics.ServerMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateOrderRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		in := service.CreateOrderInput{
			ClientID:             req.ClientID,
			UserID:               c.GetUint(middleware.UserIDKey), // Acting user from the token
			PaymentMethod:        domain.PaymentMethod(req.PaymentMethod),
			ShippingAddress:      req.ShippingAddress,
			Notes:                req.Notes,
			ExpectedDeliveryDate: req.ExpectedDeliveryDate,
		}
		for _, it := range req.Items {
			in.Items = append(in.Items, service.OrderItemInput{
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				UnitPrice: it.UnitPrice,
				Discount:  it.Discount,
			})
		}
		order, err := orders.Create(c.Request.Context(), in)
		if err != nil {
			if apperr.Is(err, apperr.KindConflict) {
				m.StockConflicts.Inc() // Only stock shortages conflict on create
			}
			respondError(c, err)
			return
		}
		m.OrdersCreated.Inc()
		invalidateProducts(c.Request.Context(), rdb, order) // Stock changed
		c.JSON(http.StatusCreated, order)
	}
}

// ListOrdersHandler lists orders with optional filters, newest first
func ListOrdersHandler(orders *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := newQuery(c)
		filter := service.OrderFilter{
			OrderID:    q.ID("order_id"),
			ClientID:   q.ID("client_id"),
			UserID:     q.ID("user_id"),
			CategoryID: q.ID("category_id"),
			Status:     domain.OrderStatus(c.Query("status")),
			StartDate:  q.Time("start_date"),
			EndDate:    q.Time("end_date"),
			Page:       q.Page(),
		}
		if q.err != nil {
			respondError(c, q.err)
			return
		}
		if filter.Status != "" && !filter.Status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		list, err := orders.List(c.Request.Context(), filter)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// GetOrderHandler returns one order with its items
func GetOrderHandler(orders *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		order, err := orders.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// UpdateOrderHandler moves an order along its status graph or edits delivery details
func UpdateOrderHandler(orders *service.OrderService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req UpdateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var in service.UpdateOrderInput
		if req.Status != nil {
			status := domain.OrderStatus(*req.Status)
			in.Status = &status
		}
		if req.PaymentMethod != nil {
			method := domain.PaymentMethod(*req.PaymentMethod)
			in.PaymentMethod = &method
		}
		in.ShippingAddress = req.ShippingAddress
		order, err := orders.Update(c.Request.Context(), id, in)
		if err != nil {
			respondError(c, err)
			return
		}
		if order.Status == domain.StatusCancelled {
			invalidateProducts(c.Request.Context(), rdb, order) // Stock restored
		}
		c.JSON(http.StatusOK, order)
	}
}

// CancelOrderHandler cancels an order and restores its stock
func CancelOrderHandler(orders *service.OrderService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		ctx := c.Request.Context()
		if err := orders.Cancel(ctx, id); err != nil {
			respondError(c, err)
			return
		}
		order, err := orders.Get(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}
		invalidateProducts(ctx, rdb, order) // Stock restored
		c.JSON(http.StatusOK, gin.H{"message": "Order cancelled successfully", "order": order})
	}
}
