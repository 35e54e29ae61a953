package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/testwork/bookadmin/caching"
	"github.com/testwork/bookadmin/logger"
	"github.com/testwork/bookadmin/web/entity"
)

// RateLimitConfig configures rate limiting
type RateLimitConfig struct {
	RequestsPerMinute int
	KeyFunc           func(c *gin.Context) string
	// Methods limits throttling to these methods; empty means all.
	Methods []string
}

// DefaultRateLimitConfig throttles credential submissions per client IP.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 30,
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
		Methods: []string{http.MethodPost},
	}
}

func (config RateLimitConfig) applies(method string) bool {
	if len(config.Methods) == 0 {
		return true
	}
	for _, m := range config.Methods {
		if m == method {
			return true
		}
	}
	return false
}

// RateLimitMiddleware counts requests per key and path in counters that
// expire after the window of counters.
func RateLimitMiddleware(config RateLimitConfig, counters *caching.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !config.applies(c.Request.Method) {
			c.Next()
			return
		}

		key := config.KeyFunc(c)
		count := counters.Hit("ratelimit:" + key + ":" + c.FullPath())
		remaining := config.RequestsPerMinute - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(config.RequestsPerMinute))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(counters.Window()).Unix(), 10))

		if count > config.RequestsPerMinute {
			logger.Warningf("Rate limit exceeded for %s on %s (count: %d)", key, c.Request.URL.Path, count)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, entity.Msg{
				Success: false,
				Msg:     "Rate limit exceeded. Please try again later.",
			})
			return
		}

		c.Next()
	}
}
