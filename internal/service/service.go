// Package service holds the business rules of the shop. Every mutating
// operation runs inside a single database transaction.
package service

import (
	"ecommerce_api/internal/apperr"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Pagination limits shared by every listing
const (
	DefaultLimit = 100
	MaxLimit     = 100
)

// Page is a skip/limit window
type Page struct {
	Skip  int
	Limit int
}

// apply clamps the window and applies it to the query
func (p Page) apply(q *gorm.DB) *gorm.DB {
	limit := p.Limit
	if limit <= 0 || limit > MaxLimit {
		limit = DefaultLimit
	}
	skip := p.Skip
	if skip < 0 {
		skip = 0
	}
	return q.Offset(skip).Limit(limit)
}

// notFound converts gorm's record-not-found into a client facing error
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(format, args...)
	}
	return err
}

// likePattern builds a case-insensitive substring pattern for LOWER(col) LIKE ?
func likePattern(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}

// exists reports whether any row matches the query
func exists(q *gorm.DB) (bool, error) {
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
