package service

import (
	"context"
	"ecommerce_api/internal/apperr"
	"ecommerce_api/internal/domain"
	"ecommerce_api/internal/events"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// OrderItemInput is one requested line of an order
type OrderItemInput struct {
	ProductID uint
	Quantity  int
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
}

// CreateOrderInput carries everything needed to place an order
type CreateOrderInput struct {
	ClientID             uint
	UserID               uint
	PaymentMethod        domain.PaymentMethod
	ShippingAddress      string
	Notes                string
	ExpectedDeliveryDate *time.Time
	Items                []OrderItemInput
}

// UpdateOrderInput changes the status and/or delivery details; nil fields are left untouched
type UpdateOrderInput struct {
	Status          *domain.OrderStatus
	PaymentMethod   *domain.PaymentMethod
	ShippingAddress *string
}

// OrderFilter narrows an order listing
type OrderFilter struct {
	OrderID    uint
	ClientID   uint
	UserID     uint
	CategoryID uint
	Status     domain.OrderStatus
	StartDate  *time.Time
	EndDate    *time.Time
	Page
}

// OrderService places, updates and cancels orders
type OrderService struct {
	db     *gorm.DB
	events events.Publisher
}

func NewOrderService(db *gorm.DB, publisher events.Publisher) *OrderService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &OrderService{db: db, events: publisher}
}

// validateItems checks every line on its own and the order total as a whole.
// Amounts must fit a decimal(10,2) column exactly, so that stored item
// totals still add up to the stored order total.
func validateItems(items []OrderItemInput) error {
	if len(items) == 0 {
		return apperr.Validation("Order must have at least one item")
	}
	total := decimal.Zero // Running order total
	for _, it := range items {
		if it.Quantity <= 0 {
			return apperr.Validation("Quantity for product %d must be greater than zero", it.ProductID)
		}
		if it.UnitPrice.IsNegative() {
			return apperr.Validation("Unit price for product %d cannot be negative", it.ProductID)
		}
		if it.Discount.IsNegative() {
			return apperr.Validation("Discount for product %d cannot be negative", it.ProductID)
		}
		if !domain.ValidAmount(it.UnitPrice) || !domain.ValidAmount(it.Discount) {
			return apperr.Validation("Amounts for product %d must have at most two decimal places and not exceed %s", it.ProductID, domain.MaxAmount)
		}
		gross := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))) // Line value before discount
		if it.Discount.GreaterThan(gross) {
			return apperr.Validation("Discount for product %d exceeds the item value", it.ProductID)
		}
		line := gross.Sub(it.Discount)
		if line.GreaterThan(domain.MaxAmount) {
			return apperr.Validation("Total for product %d exceeds %s", it.ProductID, domain.MaxAmount)
		}
		total = total.Add(line) // Order total is the sum of line totals
	}
	if total.GreaterThan(domain.MaxAmount) {
		return apperr.Validation("Order total exceeds %s", domain.MaxAmount)
	}
	return nil
}

// Create validates stock and places an order. Stock is decremented in the
// same transaction that inserts the order and its items.
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	if err := validateItems(in.Items); err != nil { // Reject malformed lines before touching the database
		return nil, err
	}
	if !in.PaymentMethod.Valid() { // Only known payment methods
		return nil, apperr.Validation("Invalid payment method %q", in.PaymentMethod)
	}

	var order domain.Order // Order being built or loaded
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var client domain.Client // Buying client with its addresses
		if err := tx.Preload("Addresses").First(&client, in.ClientID).Error; err != nil {
			return notFound(err, "Client %d not found", in.ClientID)
		}

		// Load each product once and sum the demand of repeated lines
		products := map[uint]*domain.Product{} // Products by id
		demand := map[uint]int{}               // Requested units per product
		var productOrder []uint                // First-seen order keeps decrements deterministic
		for _, it := range in.Items {
			if _, loaded := products[it.ProductID]; !loaded {
				var p domain.Product // Load the product
				if err := tx.First(&p, it.ProductID).Error; err != nil {
					return notFound(err, "Product %d not found", it.ProductID)
				}
				if !p.Active { // Inactive products cannot be sold
					return apperr.Validation("Product %s is inactive", p.Name)
				}
				products[p.ID] = &p
				productOrder = append(productOrder, p.ID)
			}
			// Checking after every add keeps the sum bounded by stock, so it cannot overflow
			if p := products[it.ProductID]; it.Quantity > p.Stock-demand[p.ID] {
				return apperr.Conflict("Insufficient stock for product %s. Available: %d", p.Name, p.Stock)
			}
			demand[it.ProductID] += it.Quantity // Accumulate demand
		}

		total := decimal.Zero                               // Order total
		items := make([]domain.OrderItem, 0, len(in.Items)) // Persisted lines
		for _, it := range in.Items {
			line := domain.LineTotal(it.Quantity, it.UnitPrice, it.Discount) // quantity x unit price - discount
			total = total.Add(line)                                          // Order total is the sum of line totals
			items = append(items, domain.OrderItem{
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				UnitPrice: it.UnitPrice,
				Discount:  it.Discount,
				Total:     line,
			})
		}

		shipping := strings.TrimSpace(in.ShippingAddress) // Requested shipping address
		if shipping == "" {
			if primary, ok := client.PrimaryAddress(); ok {
				shipping = primary.Format() // Default to the primary address
			}
		}

		order = domain.Order{
			ClientID:             client.ID,
			UserID:               in.UserID,
			Status:               domain.StatusPending,
			Total:                total,
			Discount:             decimal.Zero,
			ShippingCost:         decimal.Zero,
			PaymentMethod:        in.PaymentMethod,
			Notes:                in.Notes,
			ShippingAddress:      shipping,
			ExpectedDeliveryDate: in.ExpectedDeliveryDate,
			Items:                items,
		}
		if err := tx.Create(&order).Error; err != nil { // Insert order and items
			return err
		}

		// Conditional decrement: a concurrent order that drained the stock
		// since the check above makes this match no row.
		for _, id := range productOrder {
			res := tx.Model(&domain.Product{}).
				Where("id = ? AND stock >= ?", id, demand[id]).
				Update("stock", gorm.Expr("stock - ?", demand[id]))
			if res.Error != nil {
				return res.Error // Return error to rollback
			}
			if res.RowsAffected == 0 {
				return apperr.Conflict("Insufficient stock for product %s", products[id].Name)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"order_id":  order.ID,
		"client_id": order.ClientID,
		"user_id":   order.UserID,
		"items":     len(order.Items),
		"total":     order.Total.StringFixed(2),
	}).Info("Order created")
	s.publish(ctx, events.NewEvent(events.OrderCreated, order.ID, string(order.Status), map[string]any{
		"client_id": order.ClientID,
		"total":     order.Total.StringFixed(2),
	}))
	return s.Get(ctx, order.ID) // Reload with items and products
}

// Get returns an order with its items and their products
func (s *OrderService) Get(ctx context.Context, id uint) (*domain.Order, error) {
	var order domain.Order // Order being built or loaded
	if err := s.db.WithContext(ctx).Preload("Items.Product").First(&order, id).Error; err != nil {
		return nil, notFound(err, "Order not found")
	}
	return &order, nil
}

// List returns orders matching the filter, newest first
func (s *OrderService) List(ctx context.Context, f OrderFilter) ([]domain.Order, error) {
	db := s.db.WithContext(ctx)
	q := db.Model(&domain.Order{}) // Base query
	if f.OrderID != 0 {
		q = q.Where("id = ?", f.OrderID)
	}
	if f.ClientID != 0 {
		q = q.Where("client_id = ?", f.ClientID)
	}
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.StartDate != nil {
		q = q.Where("created_at >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		q = q.Where("created_at <= ?", *f.EndDate)
	}
	if f.CategoryID != 0 {
		sub := db.Model(&domain.OrderItem{}).
			Select("order_items.order_id").
			Joins("JOIN products ON products.id = order_items.product_id").
			Where("products.category_id = ?", f.CategoryID)
		q = q.Where("id IN (?)", sub)
	}
	var orders []domain.Order // Result set
	err := f.Page.apply(q.Preload("Items").Order("created_at desc").Order("id desc")).Find(&orders).Error
	return orders, err
}

// Update applies a status transition and/or new delivery details. Moving to
// cancelled goes through the cancellation path so stock is restored.
func (s *OrderService) Update(ctx context.Context, id uint, in UpdateOrderInput) (*domain.Order, error) {
	if in.Status != nil && !in.Status.Valid() {
		return nil, apperr.Validation("Invalid status %q", *in.Status)
	}
	if in.PaymentMethod != nil && !in.PaymentMethod.Valid() {
		return nil, apperr.Validation("Invalid payment method %q", *in.PaymentMethod)
	}
	if in.ShippingAddress != nil && strings.TrimSpace(*in.ShippingAddress) == "" {
		return nil, apperr.Validation("Shipping address cannot be empty")
	}

	var previous domain.OrderStatus
	var order domain.Order // Order being built or loaded
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&order, id).Error; err != nil {
			return notFound(err, "Order not found")
		}
		previous = order.Status     // Remembered for the event
		changes := map[string]any{} // Columns to update

		if in.Status != nil {
			next := *in.Status // Requested status
			if !order.Status.CanTransition(next) {
				return apperr.Validation("Invalid status transition from %s to %s", order.Status, next)
			}
			if next == domain.StatusCancelled {
				if err := restoreStock(tx, order.Items); err != nil { // Give the stock back
					return err
				}
			}
			changes["status"] = next
		}
		if in.PaymentMethod != nil {
			changes["payment_method"] = *in.PaymentMethod
		}
		if in.ShippingAddress != nil {
			changes["shipping_address"] = strings.TrimSpace(*in.ShippingAddress)
		}
		if len(changes) == 0 { // Nothing to update
			return nil
		}
		if err := tx.Model(&order).Updates(changes).Error; err != nil {
			return err
		}
		if in.Status != nil {
			order.Status = *in.Status
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if order.Status != previous {
		logrus.WithFields(logrus.Fields{
			"order_id": order.ID,
			"from":     previous,
			"to":       order.Status,
		}).Info("Order status changed")
		eventType := events.OrderStatusChanged
		if order.Status == domain.StatusCancelled { // Cancelling twice would restore stock twice
			eventType = events.OrderCancelled
		}
		s.publish(ctx, events.NewEvent(eventType, order.ID, string(order.Status), map[string]any{
			"previous_status": string(previous),
		}))
	}
	return s.Get(ctx, id) // Reload with items and products
}

// Cancel restores the stock of every item and marks the order cancelled.
// Shipped and delivered orders cannot be cancelled.
func (s *OrderService) Cancel(ctx context.Context, id uint) error {
	var order domain.Order // Order being built or loaded
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&order, id).Error; err != nil {
			return notFound(err, "Order not found")
		}
		if order.Status == domain.StatusCancelled { // Cancelling twice would restore stock twice
			return apperr.Conflict("Order is already cancelled")
		}
		if !order.Status.Cancellable() { // Shipped and delivered orders stay
			return apperr.Validation("Cannot cancel an order that has already been shipped or delivered")
		}
		if err := restoreStock(tx, order.Items); err != nil { // Give the stock back
			return err
		}
		return tx.Model(&order).Update("status", domain.StatusCancelled).Error
	})
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"order_id": order.ID,
		"items":    len(order.Items),
	}).Info("Order cancelled")
	s.publish(ctx, events.NewEvent(events.OrderCancelled, order.ID, string(domain.StatusCancelled), nil))
	return nil
}

// restoreStock gives back the quantity of every item to its product
func restoreStock(tx *gorm.DB, items []domain.OrderItem) error {
	for _, it := range items {
		err := tx.Model(&domain.Product{}).
			Where("id = ?", it.ProductID).
			Update("stock", gorm.Expr("stock + ?", it.Quantity)).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// publish sends an event after commit; failures are logged only
func (s *OrderService) publish(ctx context.Context, e events.Event) {
	if err := s.events.Publish(ctx, e); err != nil {
		logrus.WithFields(logrus.Fields{
			"order_id": e.OrderID,
			"type":     e.Type,
			"error":    err.Error(),
		}).Warn("Failed to publish order event")
	}
}
