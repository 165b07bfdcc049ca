package service

import (
	"ecommerce_api/internal/apperr"
	"ecommerce_api/internal/domain"
	"ecommerce_api/internal/events"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrderComputesTotalsAndDecrementsStock(t *testing.T) {
	f := newFixture(t)
	cat := f.category(t, "Groceries")
	rice := f.product(t, cat.ID, "Rice", "20.00", 10)
	beans := f.product(t, cat.ID, "Beans", "8.50", 5)
	client := f.client(t, "maria@example.com", "123.456.789-09")

	order, err := f.orders.Create(f.ctx, CreateOrderInput{
		ClientID:      client.ID,
		UserID:        f.user.ID,
		PaymentMethod: domain.PaymentPix,
		Items: []OrderItemInput{
			{ProductID: rice.ID, Quantity: 3, UnitPrice: dec("20.00"), Discount: dec("5.00")},
			{ProductID: beans.ID, Quantity: 2, UnitPrice: dec("8.50")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, order.Status)
	require.Len(t, order.Items, 2)
	assert.True(t, order.Items[0].Total.Equal(dec("55")), order.Items[0].Total.String())
	assert.True(t, order.Items[1].Total.Equal(dec("17")), order.Items[1].Total.String())
	assert.True(t, order.Total.Equal(dec("72")), order.Total.String())
	assert.Equal(t, "Rua das Flores, 100, Recife/PE, 50000000", order.ShippingAddress)
	assert.Equal(t, 7, f.stock(t, rice.ID))
	assert.Equal(t, 3, f.stock(t, beans.ID))
	assert.Equal(t, []string{events.OrderCreated}, f.events.types())
}

func TestCreateOrderInsufficientStockLeavesStockUnchanged(t *testing.T) {
	f := newFixture(t)
	cat := f.category(t, "Groceries")
	rice := f.product(t, cat.ID, "Rice", "20.00", 10)
	beans := f.product(t, cat.ID, "Beans", "8.50", 1)
	client := f.client(t, "maria@example.com", "12345678909")

	_, err := f.orders.Create(f.ctx, CreateOrderInput{
		ClientID:      client.ID,
		UserID:        f.user.ID,
		PaymentMethod: domain.PaymentCash,
		Items: []OrderItemInput{
			{ProductID: rice.ID, Quantity: 2, UnitPrice: dec("20.00")},
			{ProductID: beans.ID, Quantity: 2, UnitPrice: dec("8.50")},
		},
	})
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindConflict, appErr.Kind)
	assert.Contains(t, appErr.Message, "Beans")
	assert.Contains(t, appErr.Message, "Available: 1")

	assert.Equal(t, 10, f.stock(t, rice.ID))
	assert.Equal(t, 1, f.stock(t, beans.ID))
	var count int64
	f.db.Model(&domain.Order{}).Count(&count)
	assert.Zero(t, count)
	assert.Empty(t, f.events.types())
}

func TestCreateOrderSumsRepeatedProductLines(t *testing.T) {
	f := newFixture(t)
	cat := f.category(t, "Groceries")
	rice := f.product(t, cat.ID, "Rice", "20.00", 3)
	client := f.client(t, "maria@example.com", "12345678909")

	_, err := f.orders.Create(f.ctx, CreateOrderInput{
		ClientID:      client.ID,
		UserID:        f.user.ID,
		PaymentMethod: domain.PaymentCash,
		Items: []OrderItemInput{
			{ProductID: rice.ID, Quantity: 2, UnitPrice: dec("20.00")},
			{ProductID: rice.ID, Quantity: 2, UnitPrice: dec("20.00")},
		},
	})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Equal(t, 3, f.stock(t, rice.ID))
}

func TestCreateOrderRejectsHugeRepeatedQuantities(t *testing.T) {
	f := newFixture(t)
	cat := f.category(t, "Groceries")
	rice := f.product(t, cat.ID, "Rice", "20.00", 10)
	client := f.client(t, "maria@example.com", "12345678909")

	// Two lines whose sum would wrap around int
	huge := math.MaxInt/2 + 1
	_, err := f.orders.Create(f.ctx, CreateOrderInput{
		ClientID:      client.ID,
		UserID:        f.user.ID,
		PaymentMethod: domain.PaymentCash,
		Items: []OrderItemInput{
			{ProductID: rice.ID, Quantity: 4, UnitPrice: dec("0")},
			{ProductID: rice.ID, Quantity: huge, UnitPrice: dec("0")},
			{ProductID: rice.ID, Quantity: huge, UnitPrice: dec("0")},
		},
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindConflict), "got %v", err)
	assert.Equal(t, 10, f.stock(t, rice.ID))
	assert.Empty(t, f.events.types())

	var orders int64
	require.NoError(t, f.db.Model(&domain.Order{}).Count(&orders).Error)
	assert.Zero(t, orders)
}

func TestCreateOrderRejectsAmountsAColumnCannotHold(t *testing.T) {
	f := newFixture(t)
	cat := f.category(t, "Groceries")
	rice := f.product(t, cat.ID, "Rice", "20.00", 1000)
	client := f.client(t, "maria@example.com", "12345678909")

	cases := []struct {
		name string
		item OrderItemInput
	}{
		{"unit price with three decimals", OrderItemInput{ProductID: rice.ID, Quantity: 2, UnitPrice: dec("0.335")}},
		{"discount with three decimals", OrderItemInput{ProductID: rice.ID, Quantity: 1, UnitPrice: dec("1"), Discount: dec("0.005")}},
		{"unit price above column range", OrderItemInput{ProductID: rice.ID, Quantity: 1, UnitPrice: dec("100000000")}},
		{"line total above column range", OrderItemInput{ProductID: rice.ID, Quantity: 2, UnitPrice: dec("60000000")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.orders.Create(f.ctx, CreateOrderInput{
				ClientID: client.ID, UserID: f.user.ID, PaymentMethod: domain.PaymentPix,
				Items: []OrderItemInput{tc.item},
			})
			assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)
		})
	}

	// Lines that fit alone but not together
	_, err := f.orders.Create(f.ctx, CreateOrderInput{
		ClientID: client.ID, UserID: f.user.ID, PaymentMethod: domain.PaymentPix,
		Items: []OrderItemInput{
			{ProductID: rice.ID, Quantity: 1, UnitPrice: dec("60000000")},
			{ProductID: rice.ID, Quantity: 1, UnitPrice: dec("60000000")},
		},
	})
	assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)
	assert.Equal(t, 1000, f.stock(t, rice.ID))

	// Trailing zeros are still two-place amounts
	order := placeOrder(t, f, client.ID, OrderItemInput{ProductID: rice.ID, Quantity: 2, UnitPrice: dec("0.3300")})
	assert.True(t, order.Total.Equal(dec("0.66")), order.Total.String())
}

func TestCreateOrderValidation(t *testing.T) {
	f := newFixture(t)
	cat := f.category(t, "Groceries")
	rice := f.product(t, cat.ID, "Rice", "20.00", 3)
	inactive, err := f.products.Create(f.ctx, CreateProductInput{
		Name: "Old", SalePrice: dec("1"), CategoryID: cat.ID, Stock: 10, Status: domain.ProductInactive,
	})
	require.NoError(t, err)
	client := f.client(t, "maria@example.com", "12345678909")

	cases := []struct {
		name string
		in   CreateOrderInput
		kind apperr.Kind
	}{
		{"no items", CreateOrderInput{ClientID: client.ID, PaymentMethod: domain.PaymentPix}, apperr.KindValidation},
		{"zero quantity", CreateOrderInput{ClientID: client.ID, PaymentMethod: domain.PaymentPix,
			Items: []OrderItemInput{{ProductID: rice.ID, Quantity: 0, UnitPrice: dec("1")}}}, apperr.KindValidation},
		{"bad payment", CreateOrderInput{ClientID: client.ID, PaymentMethod: "barter",
			Items: []OrderItemInput{{ProductID: rice.ID, Quantity: 1, UnitPrice: dec("1")}}}, apperr.KindValidation},
		{"missing client", CreateOrderInput{ClientID: 999, PaymentMethod: domain.PaymentPix,
			Items: []OrderItemInput{{ProductID: rice.ID, Quantity: 1, UnitPrice: dec("1")}}}, apperr.KindNotFound},
		{"missing product", CreateOrderInput{ClientID: client.ID, PaymentMethod: domain.PaymentPix,
			Items: []OrderItemInput{{ProductID: 999, Quantity: 1, UnitPrice: dec("1")}}}, apperr.KindNotFound},
		{"inactive product", CreateOrderInput{ClientID: client.ID, PaymentMethod: domain.PaymentPix,
			Items: []OrderItemInput{{ProductID: inactive.ID, Quantity: 1, UnitPrice: dec("1")}}}, apperr.KindValidation},
		{"discount above value", CreateOrderInput{ClientID: client.ID, PaymentMethod: domain.PaymentPix,
			Items: []OrderItemInput{{ProductID: rice.ID, Quantity: 1, UnitPrice: dec("1"), Discount: dec("2")}}}, apperr.KindValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.in.UserID = f.user.ID
			_, err := f.orders.Create(f.ctx, tc.in)
			assert.True(t, apperr.Is(err, tc.kind), "got %v", err)
		})
	}
	assert.Equal(t, 3, f.stock(t, rice.ID))
}

func placeOrder(t *testing.T, f *fixture, clientID uint, items ...OrderItemInput) *domain.Order {
	t.Helper()
	order, err := f.orders.Create(f.ctx, CreateOrderInput{
		ClientID:        clientID,
		UserID:          f.user.ID,
		PaymentMethod:   domain.PaymentCreditCard,
		ShippingAddress: "Av. Boa Viagem, 1000",
		Items:           items,
	})
	require.NoError(t, err)
	return order
}

func status(s domain.OrderStatus) *domain.OrderStatus { return &s }

func TestUpdateOrderStatusTransitions(t *testing.T) {
	f := newFixture(t)
	cat := f.category(t, "Groceries")
	rice := f.product(t, cat.ID, "Rice", "20.00", 10)
	client := f.client(t, "maria@example.com", "12345678909")
	order := placeOrder(t, f, client.ID, OrderItemInput{ProductID: rice.ID, Quantity: 1, UnitPrice: dec("20")})

	updated, err := f.orders.Update(f.ctx, order.ID, UpdateOrderInput{Status: status(domain.StatusProcessing)})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, updated.Status)

	_, err = f.orders.Update(f.ctx, order.ID, UpdateOrderInput{Status: status(domain.StatusPending)})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.orders.Update(f.ctx, order.ID, UpdateOrderInput{Status: status(domain.StatusShipped)})
	require.NoError(t, err)

	_, err = f.orders.Update(f.ctx, order.ID, UpdateOrderInput{Status: status(domain.StatusPending)})
	assert.True(t, apperr.Is(err, apperr.KindValidation), "shipped -> pending must be rejected")

	address := "Rua Nova, 1"
	pm := domain.PaymentBoleto
	updated, err = f.orders.Update(f.ctx, order.ID, UpdateOrderInput{PaymentMethod: &pm, ShippingAddress: &address})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusShipped, updated.Status)
	assert.Equal(t, domain.PaymentBoleto, updated.PaymentMethod)
	assert.Equal(t, "Rua Nova, 1", updated.ShippingAddress)

	_, err = f.orders.Update(f.ctx, order.ID, UpdateOrderInput{Status: status(domain.StatusDelivered)})
	require.NoError(t, err)
	assert.Equal(t, []string{events.OrderCreated, events.OrderStatusChanged, events.OrderStatusChanged, events.OrderStatusChanged}, f.events.types())
}

func TestUpdateToCancelledRestoresStock(t *testing.T) {
	f := newFixture(t)
	cat := f.category(t, "Groceries")
	rice := f.product(t, cat.ID, "Rice", "20.00", 10)
	client := f.client(t, "maria@example.com", "12345678909")
	order := placeOrder(t, f, client.ID, OrderItemInput{ProductID: rice.ID, Quantity: 4, UnitPrice: dec("20")})
	require.Equal(t, 6, f.stock(t, rice.ID))

	updated, err := f.orders.Update(f.ctx, order.ID, UpdateOrderInput{Status: status(domain.StatusCancelled)})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, updated.Status)
	assert.Equal(t, 10, f.stock(t, rice.ID))
}

func TestCancelOrderRestoresStock(t *testing.T) {
	for _, from := range []domain.OrderStatus{domain.StatusPending, domain.StatusProcessing} {
		t.Run(string(from), func(t *testing.T) {
			f := newFixture(t)
			cat := f.category(t, "Groceries")
			rice := f.product(t, cat.ID, "Rice", "20.00", 10)
			beans := f.product(t, cat.ID, "Beans", "8.50", 5)
			client := f.client(t, "maria@example.com", "12345678909")
			order := placeOrder(t, f, client.ID,
				OrderItemInput{ProductID: rice.ID, Quantity: 3, UnitPrice: dec("20")},
				OrderItemInput{ProductID: beans.ID, Quantity: 5, UnitPrice: dec("8.5")},
			)
			if from == domain.StatusProcessing {
				_, err := f.orders.Update(f.ctx, order.ID, UpdateOrderInput{Status: status(from)})
				require.NoError(t, err)
			}

			require.NoError(t, f.orders.Cancel(f.ctx, order.ID))

			assert.Equal(t, 10, f.stock(t, rice.ID))
			assert.Equal(t, 5, f.stock(t, beans.ID))
			got, err := f.orders.Get(f.ctx, order.ID)
			require.NoError(t, err)
			assert.Equal(t, domain.StatusCancelled, got.Status)

			err = f.orders.Cancel(f.ctx, order.ID)
			assert.True(t, apperr.Is(err, apperr.KindConflict), "second cancel must not restore stock twice")
			assert.Equal(t, 10, f.stock(t, rice.ID))
		})
	}
}

func TestCancelShippedOrderIsRejected(t *testing.T) {
	f := newFixture(t)
	cat := f.category(t, "Groceries")
	rice := f.product(t, cat.ID, "Rice", "20.00", 10)
	client := f.client(t, "maria@example.com", "12345678909")
	order := placeOrder(t, f, client.ID, OrderItemInput{ProductID: rice.ID, Quantity: 2, UnitPrice: dec("20")})
	for _, s := range []domain.OrderStatus{domain.StatusProcessing, domain.StatusShipped} {
		_, err := f.orders.Update(f.ctx, order.ID, UpdateOrderInput{Status: status(s)})
		require.NoError(t, err)
	}

	err := f.orders.Cancel(f.ctx, order.ID)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, 8, f.stock(t, rice.ID))

	assert.True(t, apperr.Is(f.orders.Cancel(f.ctx, 999), apperr.KindNotFound))
}

func TestListOrdersFilters(t *testing.T) {
	f := newFixture(t)
	food := f.category(t, "Food")
	toys := f.category(t, "Toys")
	rice := f.product(t, food.ID, "Rice", "20.00", 10)
	ball := f.product(t, toys.ID, "Ball", "15.00", 10)
	maria := f.client(t, "maria@example.com", "12345678909")
	joao := f.client(t, "joao@example.com", "98765432100")

	o1 := placeOrder(t, f, maria.ID, OrderItemInput{ProductID: rice.ID, Quantity: 1, UnitPrice: dec("20")})
	o2 := placeOrder(t, f, joao.ID, OrderItemInput{ProductID: ball.ID, Quantity: 1, UnitPrice: dec("15")})
	_, err := f.orders.Update(f.ctx, o2.ID, UpdateOrderInput{Status: status(domain.StatusProcessing)})
	require.NoError(t, err)

	all, err := f.orders.List(f.ctx, OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byClient, err := f.orders.List(f.ctx, OrderFilter{ClientID: maria.ID})
	require.NoError(t, err)
	require.Len(t, byClient, 1)
	assert.Equal(t, o1.ID, byClient[0].ID)

	byCategory, err := f.orders.List(f.ctx, OrderFilter{CategoryID: toys.ID})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, o2.ID, byCategory[0].ID)

	byStatus, err := f.orders.List(f.ctx, OrderFilter{Status: domain.StatusProcessing})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, o2.ID, byStatus[0].ID)

	paged, err := f.orders.List(f.ctx, OrderFilter{Page: Page{Skip: 1, Limit: 1}})
	require.NoError(t, err)
	assert.Len(t, paged, 1)
}
