package service

import (
	"context"
	"ecommerce_api/internal/db/dbtest"
	"ecommerce_api/internal/domain"
	"ecommerce_api/internal/events"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// recorder keeps published events in memory
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) Close() error { return nil }

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	db         *gorm.DB
	ctx        context.Context
	orders     *OrderService
	clients    *ClientService
	products   *ProductService
	categories *CategoryService
	events     *recorder
	user       domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb := dbtest.New(t)
	rec := &recorder{}
	f := &fixture{
		db:         gdb,
		ctx:        context.Background(),
		orders:     NewOrderService(gdb, rec),
		clients:    NewClientService(gdb),
		products:   NewProductService(gdb),
		categories: NewCategoryService(gdb),
		events:     rec,
		user:       domain.User{Name: "Operator", Email: "op@shop.test", Password: "x", Active: true},
	}
	require.NoError(t, gdb.Create(&f.user).Error)
	return f
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (f *fixture) category(t *testing.T, name string) *domain.Category {
	t.Helper()
	c, err := f.categories.Create(f.ctx, name, "")
	require.NoError(t, err)
	return c
}

func (f *fixture) product(t *testing.T, categoryID uint, name string, price string, stock int) *domain.Product {
	t.Helper()
	p, err := f.products.Create(f.ctx, CreateProductInput{
		Name:        name,
		Description: name + " description",
		SalePrice:   dec(price),
		CategoryID:  categoryID,
		Stock:       stock,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) client(t *testing.T, email, cpf string) *domain.Client {
	t.Helper()
	c, err := f.clients.Create(f.ctx, CreateClientInput{
		Name:     "Maria",
		LastName: "Silva",
		Email:    email,
		CPF:      cpf,
		Addresses: []AddressInput{
			{Street: "Rua das Flores", Number: "100", City: "Recife", State: "PE", ZipCode: "50000-000"},
		},
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) stock(t *testing.T, productID uint) int {
	t.Helper()
	var p domain.Product
	require.NoError(t, f.db.First(&p, productID).Error)
	return p.Stock
}
