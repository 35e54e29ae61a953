package middleware

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/testwork/bookadmin/config"
	"github.com/testwork/bookadmin/logger"
	"github.com/testwork/bookadmin/web/access"
	"github.com/testwork/bookadmin/web/entity"
)

// GateMiddleware lets the request through only when gate allows view for the
// current identity.
func GateMiddleware(gate access.Gate, view access.View) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := GetIdentity(c)
		if gate.Accessible(view, identity) {
			c.Next()
			return
		}
		logger.Debugf("%s view %s denied for %q", view, c.Request.URL.Path, identity.Name)
		deny(c, gate.Mode(), identity)
	}
}

// LoginRequired redirects anonymous requests to the login form, remembering
// where they were going.
func LoginRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetIdentity(c).Authenticated {
			c.Next()
			return
		}
		deny(c, config.AuthModeRegister, access.Anonymous())
	}
}

func deny(c *gin.Context, mode config.AuthMode, identity access.Identity) {
	ajax := c.GetHeader("X-Requested-With") == "XMLHttpRequest"
	switch {
	case identity.Authenticated && ajax:
		c.AbortWithStatusJSON(http.StatusForbidden, entity.Msg{Msg: "access denied"})
	case identity.Authenticated:
		c.AbortWithStatus(http.StatusForbidden)
	case ajax:
		c.AbortWithStatusJSON(http.StatusUnauthorized, entity.Msg{Msg: "login required"})
	default:
		c.Redirect(http.StatusFound, LoginURL(mode, c.Request.URL.RequestURI()))
		c.Abort()
	}
}

// LoginURL is the login surface of mode. Register mode carries the original
// target in the next parameter.
func LoginURL(mode config.AuthMode, next string) string {
	if mode != config.AuthModeRegister || next == "" {
		return "/login"
	}
	return "/login?next=" + url.QueryEscape(next)
}

// SafeNext returns next when it is a local absolute path, otherwise fallback.
func SafeNext(next, fallback string) string {
	u, err := url.Parse(next)
	if next == "" || err != nil || u.IsAbs() || u.Host != "" || len(u.Path) == 0 || u.Path[0] != '/' {
		return fallback
	}
	if len(next) > 1 && (next[1] == '/' || next[1] == '\\') {
		return fallback
	}
	return next
}
