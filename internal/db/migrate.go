package db

import (
	"ecommerce_api/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus"
	"gorm.io/gorm" // GORM ORM library
)

// Models lists every table managed by the migration, parents first
func Models() []any {
	return []any{
		&domain.User{},
		&domain.Client{},
		&domain.Address{},
		&domain.Category{},
		&domain.Product{},
		&domain.ProductImage{},
		&domain.Order{},
		&domain.OrderItem{},
	}
}

// Migrate performs automatic migration for the database schema
func Migrate(db *gorm.DB) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}
	logrus.Info("Migration completed.") // Log successful migration
	return nil
}
