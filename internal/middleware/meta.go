package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	responseMetaKey = "response_meta"
	cacheHitKey     = "cache_hit"
)

// WithResponseMeta starts the per-request metadata map and records the handler time in it.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		meta := map[string]interface{}{}
		c.Set(responseMetaKey, meta)
		c.Next()
		if _, exists := meta["processing_time_ms"]; !exists {
			meta["processing_time_ms"] = time.Since(start).Milliseconds()
		}
	}
}

// SetCacheHit marks whether the response body was served from cache.
func SetCacheHit(c *gin.Context, hit bool) {
	metaFor(c)[cacheHitKey] = hit
}

// ExtractMeta returns the metadata gathered so far, or nil when none was recorded.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	value, exists := c.Get(responseMetaKey)
	if !exists {
		return nil
	}
	meta, _ := value.(map[string]interface{})
	return meta
}

func metaFor(c *gin.Context) map[string]interface{} {
	if meta := ExtractMeta(c); meta != nil {
		return meta
	}
	meta := map[string]interface{}{}
	c.Set(responseMetaKey, meta)
	return meta
}
