package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RedirectMiddleware sends legacy admin paths to their current location.
func RedirectMiddleware() gin.HandlerFunc {
	redirects := map[string]string{
		"/admin/index": "/admin/",
		"/panel":       "/admin/",
	}
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for from, to := range redirects {
			if path == from || strings.HasPrefix(path, from+"/") {
				newPath := to + strings.TrimPrefix(path[len(from):], "/")
				if c.Request.URL.RawQuery != "" {
					newPath += "?" + c.Request.URL.RawQuery
				}
				c.Redirect(http.StatusMovedPermanently, newPath)
				c.Abort()
				return
			}
		}

		c.Next()
	}
}
