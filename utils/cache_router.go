package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const CacheNoCache = 0

// CacheControl sets the cache-control header of every response. API answers depend on
// the session, so anything cached is private.
func CacheControl(seconds int) gin.HandlerFunc {
	value := "no-cache"
	if seconds > 0 {
		value = "private, max-age=" + strconv.Itoa(seconds)
	}
	return func(c *gin.Context) {
		c.Header("cache-control", value)
		c.Header("vary", "Cookie")
		c.Next()
	}
}
