package service

import (
	"context"
	"ecommerce_api/internal/apperr"
	"ecommerce_api/internal/domain"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CategoryService manages product categories
type CategoryService struct {
	db *gorm.DB
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

func (s *CategoryService) nameTaken(tx *gorm.DB, name string, exceptID uint) error {
	taken, err := exists(tx.Model(&domain.Category{}).Where("LOWER(name) = ? AND id <> ?", strings.ToLower(name), exceptID))
	if err != nil {
		return err
	}
	if taken {
		return apperr.Conflict("Category %s already exists", name)
	}
	return nil
}

// Create adds an active category with a unique name
func (s *CategoryService) Create(ctx context.Context, name, description string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("Name is required")
	}
	category := domain.Category{Name: name, Description: strings.TrimSpace(description), Active: true} // New categories start active
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.nameTaken(tx, name, 0); err != nil { // Names are unique, case insensitive
			return err
		}
		return tx.Create(&category).Error // Insert category
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// List returns categories, optionally only active or inactive ones
func (s *CategoryService) List(ctx context.Context, active *bool, page Page) ([]domain.Category, error) {
	q := s.db.WithContext(ctx).Model(&domain.Category{})
	if active != nil {
		q = q.Where("active = ?", *active)
	}
	var categories []domain.Category
	err := page.apply(q.Order("id")).Find(&categories).Error
	return categories, err
}

// Get returns one category
func (s *CategoryService) Get(ctx context.Context, id uint) (*domain.Category, error) {
	var category domain.Category
	if err := s.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, notFound(err, "Category not found")
	}
	return &category, nil
}

// Update renames or redescribes a category
func (s *CategoryService) Update(ctx context.Context, id uint, name, description *string) (*domain.Category, error) {
	var category domain.Category
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&category, id).Error; err != nil {
			return notFound(err, "Category not found")
		}
		if name != nil {
			n := strings.TrimSpace(*name)
			if n == "" {
				return apperr.Validation("Name cannot be empty")
			}
			if err := s.nameTaken(tx, n, id); err != nil {
				return err
			}
			category.Name = n
		}
		if description != nil {
			category.Description = strings.TrimSpace(*description)
		}
		return tx.Save(&category).Error // Persist changes
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// Delete removes a category, or deactivates it when products reference it
func (s *CategoryService) Delete(ctx context.Context, id uint) (bool, error) {
	soft := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category domain.Category
		if err := tx.First(&category, id).Error; err != nil {
			return notFound(err, "Category not found")
		}
		hasProducts, err := exists(tx.Model(&domain.Product{}).Where("category_id = ?", id)) // Products keep the category alive
		if err != nil {
			return err
		}
		if hasProducts {
			soft = true
			return tx.Model(&category).Update("active", false).Error // Soft delete
		}
		return tx.Delete(&category).Error // Hard delete
	})
	if err != nil {
		return false, err
	}
	logrus.WithFields(logrus.Fields{"category_id": id, "soft": soft}).Info("Category deleted")
	return soft, nil
}
