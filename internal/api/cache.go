package api

import (
	"strconv" // Key formatting
	"time"    // Cache TTL
)

// cacheTTL bounds how stale a cached product or category may get
const cacheTTL = 60 * time.Second

func productKey(id uint) string {
	return "product:" + strconv.FormatUint(uint64(id), 10)
}

func categoryKey(id uint) string {
	return "category:" + strconv.FormatUint(uint64(id), 10)
}
