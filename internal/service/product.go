package service

import (
	"context"
	"ecommerce_api/internal/apperr"
	"ecommerce_api/internal/domain"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ImageInput is an image attached to a new product
type ImageInput struct {
	URL      string
	Position int
}

// CreateProductInput describes a new product. Nil MinStock means the default threshold.
type CreateProductInput struct {
	Name        string
	Description string
	SalePrice   decimal.Decimal
	Barcode     string
	CategoryID  uint
	Stock       int
	MinStock    *int
	ExpiryDate  *time.Time
	Status      domain.ProductStatus
	Images      []ImageInput
}

// UpdateProductInput holds the editable product fields; nil means unchanged
type UpdateProductInput struct {
	Name        *string
	Description *string
	SalePrice   *decimal.Decimal
	Barcode     *string // Empty clears the barcode
	CategoryID  *uint
	Stock       *int
	MinStock    *int
	ExpiryDate  *time.Time
	Status      *domain.ProductStatus
}

// ProductFilter narrows a product listing
type ProductFilter struct {
	CategoryID uint
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	InStock    *bool
	Active     *bool
	Page
}

// ProductService manages the catalog
type ProductService struct {
	db *gorm.DB
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

func preloadImages(q *gorm.DB) *gorm.DB {
	return q.Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position") })
}

// Create adds a product and its images in one transaction
func (s *ProductService) Create(ctx context.Context, in CreateProductInput) (*domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("Name is required")
	}
	if in.SalePrice.IsNegative() {
		return nil, apperr.Validation("Sale price cannot be negative")
	}
	if !domain.ValidAmount(in.SalePrice) {
		return nil, apperr.Validation("Sale price must have at most two decimal places and not exceed %s", domain.MaxAmount)
	}
	if in.Stock < 0 {
		return nil, apperr.Validation("Stock cannot be negative")
	}
	minStock := domain.DefaultMinStock // Low stock threshold
	if in.MinStock != nil {
		minStock = *in.MinStock
	}
	if minStock < 0 {
		return nil, apperr.Validation("Minimum stock cannot be negative")
	}
	status := in.Status // Requested status
	if status == "" {
		status = domain.ProductActive // Products are active by default
	}
	if !status.Valid() {
		return nil, apperr.Validation("Invalid product status %q", status)
	}

	product := domain.Product{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		SalePrice:   in.SalePrice,
		CategoryID:  in.CategoryID,
		Stock:       in.Stock,
		MinStock:    minStock,
		ExpiryDate:  in.ExpiryDate,
		Active:      status == domain.ProductActive,
	}
	if barcode := strings.TrimSpace(in.Barcode); barcode != "" {
		product.Barcode = &barcode // Empty barcodes are stored as NULL
	}
	for _, img := range in.Images {
		if strings.TrimSpace(img.URL) == "" {
			return nil, apperr.Validation("Image URL is required")
		}
		product.Images = append(product.Images, domain.ProductImage{URL: strings.TrimSpace(img.URL), Position: img.Position})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category domain.Category
		if err := tx.First(&category, in.CategoryID).Error; err != nil {
			return notFound(err, "Category not found")
		}
		if product.Barcode != nil {
			taken, err := exists(tx.Model(&domain.Product{}).Where("barcode = ?", *product.Barcode))
			if err != nil {
				return err
			}
			if taken {
				return apperr.Conflict("Barcode already exists")
			}
		}
		return tx.Create(&product).Error // Insert product and images
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"product_id": product.ID, "stock": product.Stock}).Info("Product created")
	return &product, nil
}

// Get returns a product with its images
func (s *ProductService) Get(ctx context.Context, id uint) (*domain.Product, error) {
	var product domain.Product
	if err := preloadImages(s.db.WithContext(ctx)).First(&product, id).Error; err != nil {
		return nil, notFound(err, "Product not found")
	}
	return &product, nil
}

// List returns products matching the filter
func (s *ProductService) List(ctx context.Context, f ProductFilter) ([]domain.Product, error) {
	q := s.db.WithContext(ctx).Model(&domain.Product{}) // Base query
	if f.CategoryID != 0 {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if f.MinPrice != nil {
		q = q.Where("sale_price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("sale_price <= ?", *f.MaxPrice)
	}
	if f.InStock != nil {
		if *f.InStock {
			q = q.Where("stock > 0")
		} else {
			q = q.Where("stock <= 0")
		}
	}
	if f.Active != nil {
		q = q.Where("active = ?", *f.Active)
	}
	var products []domain.Product
	err := f.Page.apply(preloadImages(q).Order("id")).Find(&products).Error
	return products, err
}

// LowStock returns active products at or below their minimum stock
func (s *ProductService) LowStock(ctx context.Context, page Page) ([]domain.Product, error) {
	var products []domain.Product
	q := s.db.WithContext(ctx).Where("active = ? AND stock <= min_stock", true).Order("stock").Order("id")
	err := page.apply(q).Find(&products).Error
	return products, err
}

// Update changes the given product fields
func (s *ProductService) Update(ctx context.Context, id uint, in UpdateProductInput) (*domain.Product, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product domain.Product
		if err := tx.First(&product, id).Error; err != nil {
			return notFound(err, "Product not found")
		}
		changes := map[string]any{} // Columns to update
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return apperr.Validation("Name cannot be empty")
			}
			changes["name"] = name
		}
		if in.Description != nil {
			changes["description"] = strings.TrimSpace(*in.Description)
		}
		if in.SalePrice != nil {
			if in.SalePrice.IsNegative() {
				return apperr.Validation("Sale price cannot be negative")
			}
			if !domain.ValidAmount(*in.SalePrice) {
				return apperr.Validation("Sale price must have at most two decimal places and not exceed %s", domain.MaxAmount)
			}
			changes["sale_price"] = *in.SalePrice
		}
		if in.Barcode != nil {
			barcode := strings.TrimSpace(*in.Barcode)
			if barcode == "" {
				changes["barcode"] = nil // Barcode removed
			} else {
				taken, err := exists(tx.Model(&domain.Product{}).Where("barcode = ? AND id <> ?", barcode, id))
				if err != nil {
					return err
				}
				if taken {
					return apperr.Conflict("Barcode already exists")
				}
				changes["barcode"] = barcode
			}
		}
		if in.CategoryID != nil {
			var category domain.Category
			if err := tx.First(&category, *in.CategoryID).Error; err != nil {
				return notFound(err, "Category not found")
			}
			changes["category_id"] = *in.CategoryID
		}
		if in.Stock != nil {
			if *in.Stock < 0 {
				return apperr.Validation("Stock cannot be negative")
			}
			changes["stock"] = *in.Stock
		}
		if in.MinStock != nil {
			if *in.MinStock < 0 {
				return apperr.Validation("Minimum stock cannot be negative")
			}
			changes["min_stock"] = *in.MinStock
		}
		if in.ExpiryDate != nil {
			changes["expiry_date"] = *in.ExpiryDate
		}
		if in.Status != nil {
			if !in.Status.Valid() {
				return apperr.Validation("Invalid product status %q", *in.Status)
			}
			changes["active"] = *in.Status == domain.ProductActive
		}
		if len(changes) == 0 {
			return nil
		}
		return tx.Model(&product).Updates(changes).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a product and its images, or deactivates it when an
// order references it
func (s *ProductService) Delete(ctx context.Context, id uint) (bool, error) {
	soft := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product domain.Product
		if err := tx.First(&product, id).Error; err != nil {
			return notFound(err, "Product not found")
		}
		ordered, err := exists(tx.Model(&domain.OrderItem{}).Where("product_id = ?", id)) // Order items keep the product alive
		if err != nil {
			return err
		}
		if ordered {
			soft = true
			return tx.Model(&product).Update("active", false).Error // Soft delete
		}
		if err := tx.Where("product_id = ?", id).Delete(&domain.ProductImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&product).Error // Hard delete
	})
	if err != nil {
		return false, err
	}
	logrus.WithFields(logrus.Fields{"product_id": id, "soft": soft}).Info("Product deleted")
	return soft, nil
}
