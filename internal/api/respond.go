package api

import (
	"ecommerce_api/internal/apperr"  // Application errors
	"ecommerce_api/internal/service" // Pagination
	"net/http"                       // HTTP status codes
	"strconv"                        // String conversion
	"time"                           // Date filters

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Price filters
	"github.com/sirupsen/logrus"    // Logging library
)

// respondError maps application errors to their status; anything else is logged and hidden
func respondError(c *gin.Context, err error) {
	if appErr, ok := apperr.As(err); ok {
		c.JSON(appErr.Status(), gin.H{"error": appErr.Message})
		return
	}
	logrus.WithFields(logrus.Fields{
		"request_id": c.GetString("requestID"), // Request id
		"route":      c.FullPath(),             // Route template
		"error":      err.Error(),              // Error message
	}).Error("Unexpected error")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

// deleted answers a delete that either removed or deactivated the record
func deleted(c *gin.Context, what string, soft bool) {
	msg := what + " deleted successfully"
	if soft {
		msg = what + " has related records and was deactivated"
	}
	c.JSON(http.StatusOK, gin.H{"message": msg, "soft_deleted": soft})
}

// pathID reads a positive numeric path parameter, answering 400 otherwise
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// queryParser reads optional query parameters and keeps the first parse error
type queryParser struct {
	c   *gin.Context
	err error
}

func newQuery(c *gin.Context) *queryParser {
	return &queryParser{c: c}
}

func (q *queryParser) fail(key string) {
	if q.err == nil {
		q.err = apperr.Validation("Invalid value for %s", key)
	}
}

func (q *queryParser) Int(key string, def int) int {
	s := q.c.Query(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		q.fail(key)
		return def
	}
	return v
}

func (q *queryParser) ID(key string) uint {
	s := q.c.Query(key)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		q.fail(key)
		return 0
	}
	return uint(v)
}

func (q *queryParser) Bool(key string) *bool {
	s := q.c.Query(key)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		q.fail(key)
		return nil
	}
	return &v
}

func (q *queryParser) Decimal(key string) *decimal.Decimal {
	s := q.c.Query(key)
	if s == "" {
		return nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		q.fail(key)
		return nil
	}
	return &v
}

// Time accepts RFC3339 timestamps or plain YYYY-MM-DD dates
func (q *queryParser) Time(key string) *time.Time {
	s := q.c.Query(key)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if v, err := time.Parse(layout, s); err == nil {
			return &v
		}
	}
	q.fail(key)
	return nil
}

// Page reads skip and limit
func (q *queryParser) Page() service.Page {
	return service.Page{Skip: q.Int("skip", 0), Limit: q.Int("limit", service.DefaultLimit)}
}
