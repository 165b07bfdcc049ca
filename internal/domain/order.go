package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// transitions lists the statuses reachable from each status.
// Delivered and cancelled are terminal.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
}

// Valid reports whether s is a known status
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether an order may move from s to next
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Cancellable reports whether an order in status s may still be cancelled
func (s OrderStatus) Cancellable() bool {
	return s != StatusShipped && s != StatusDelivered
}

// PaymentMethod is how the client pays for an order
type PaymentMethod string

const (
	PaymentCreditCard PaymentMethod = "credit_card"
	PaymentDebitCard  PaymentMethod = "debit_card"
	PaymentBoleto     PaymentMethod = "boleto"
	PaymentPix        PaymentMethod = "pix"
	PaymentCash       PaymentMethod = "cash"
)

// Valid reports whether m is a known payment method
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCreditCard, PaymentDebitCard, PaymentBoleto, PaymentPix, PaymentCash:
		return true
	}
	return false
}

// Order Model
type Order struct {
	ID                   uint            `gorm:"primaryKey" json:"id"`
	ClientID             uint            `gorm:"index;not null" json:"client_id"`
	UserID               uint            `gorm:"index;not null" json:"user_id"`
	Status               OrderStatus     `gorm:"size:20;index;not null;default:pending" json:"status"`
	Total                decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`
	Discount             decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"discount"`
	ShippingCost         decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"shipping_cost"`
	PaymentMethod        PaymentMethod   `gorm:"size:20" json:"payment_method"`
	Notes                string          `gorm:"size:500" json:"notes,omitempty"`
	ShippingAddress      string          `gorm:"size:200" json:"shipping_address"`
	ExpectedDeliveryDate *time.Time      `json:"expected_delivery_date,omitempty"`
	Items                []OrderItem     `gorm:"constraint:OnDelete:CASCADE;" json:"items"`
	CreatedAt            time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// OrderItem Model
type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"index;not null" json:"order_id"`
	ProductID uint            `gorm:"index;not null" json:"product_id"`
	Product   *Product        `json:"product,omitempty"`
	Quantity  int             `gorm:"not null;check:quantity > 0" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Discount  decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"discount"`
	Total     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`
}

// MaxAmount is the largest value a decimal(10,2) money column holds
var MaxAmount = decimal.New(9999999999, -2)

// ValidAmount reports whether d is stored exactly by a money column: at most
// two decimal places, not negative, not above MaxAmount
func ValidAmount(d decimal.Decimal) bool {
	return !d.IsNegative() && d.Equal(d.Round(2)) && d.LessThanOrEqual(MaxAmount)
}

// LineTotal computes quantity x unit price - discount
func LineTotal(quantity int, unitPrice, discount decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Sub(discount)
}
