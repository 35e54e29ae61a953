package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/testwork/bookadmin/caching"
	"github.com/testwork/bookadmin/config"
	"github.com/testwork/bookadmin/web/access"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func withIdentity(identity access.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(identityKey, identity)
		c.Next()
	}
}

func newGateEngine(mode config.AuthMode, identity access.Identity, view access.View) *gin.Engine {
	engine := gin.New()
	engine.Use(withIdentity(identity))
	engine.GET("/admin/*path", GateMiddleware(access.NewGate(mode), view), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return engine
}

func serve(engine http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestGateRedirectsAnonymous(t *testing.T) {
	w := serve(newGateEngine(config.AuthModeSession, access.Anonymous(), access.IndexView),
		httptest.NewRequest(http.MethodGet, "/admin/", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = serve(newGateEngine(config.AuthModeRegister, access.Anonymous(), access.ModelView),
		httptest.NewRequest(http.MethodGet, "/admin/book/?page=2", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?next=%2Fadmin%2Fbook%2F%3Fpage%3D2", w.Header().Get("Location"))
}

func TestGateForbidsInactiveOnModelView(t *testing.T) {
	inactive := access.Identity{UserId: 2, Authenticated: true}

	w := serve(newGateEngine(config.AuthModeSession, inactive, access.ModelView),
		httptest.NewRequest(http.MethodGet, "/admin/author/", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(newGateEngine(config.AuthModeSession, inactive, access.IndexView),
		httptest.NewRequest(http.MethodGet, "/admin/", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(newGateEngine(config.AuthModeRegister, inactive, access.ModelView),
		httptest.NewRequest(http.MethodGet, "/admin/author/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGateAjaxAnswersJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/admin/author/", nil)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	w := serve(newGateEngine(config.AuthModeSession, access.Anonymous(), access.ModelView), req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "login required")

	req = httptest.NewRequest(http.MethodGet, "/admin/author/", nil)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	w = serve(newGateEngine(config.AuthModeSession, access.Identity{Authenticated: true}, access.ModelView), req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLoginRequired(t *testing.T) {
	engine := gin.New()
	engine.Use(withIdentity(access.Anonymous()))
	engine.GET("/login-user", LoginRequired(), func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := serve(engine, httptest.NewRequest(http.MethodGet, "/login-user", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?next=%2Flogin-user", w.Header().Get("Location"))
}

func TestGetIdentityDefaultsToAnonymous(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, access.Anonymous(), GetIdentity(c))
}

func TestSafeNext(t *testing.T) {
	assert.Equal(t, "/admin/book/", SafeNext("/admin/book/", "/admin/"))
	assert.Equal(t, "/admin/", SafeNext("", "/admin/"))
	assert.Equal(t, "/admin/", SafeNext("https://evil.example/", "/admin/"))
	assert.Equal(t, "/admin/", SafeNext("//evil.example/", "/admin/"))
	assert.Equal(t, "/admin/", SafeNext("admin", "/admin/"))
}

func TestRateLimit(t *testing.T) {
	counters := caching.NewCache(time.Minute)
	defer counters.Flush()
	cfg := DefaultRateLimitConfig()
	cfg.RequestsPerMinute = 2

	engine := gin.New()
	engine.Use(RateLimitMiddleware(cfg, counters))
	engine.POST("/login", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	engine.GET("/login", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	for i := 0; i < 2; i++ {
		w := serve(engine, httptest.NewRequest(http.MethodPost, "/login", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
	w := serve(engine, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	w = serve(engine, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusOK, w.Code, "GET is not throttled")
}

func TestRedirectMiddleware(t *testing.T) {
	engine := gin.New()
	engine.Use(RedirectMiddleware())
	engine.GET("/admin/", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := serve(engine, httptest.NewRequest(http.MethodGet, "/panel/author/?page=2", nil))
	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	assert.Equal(t, "/admin/author/?page=2", w.Header().Get("Location"))

	w = serve(engine, httptest.NewRequest(http.MethodGet, "/admin/index", nil))
	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	assert.Equal(t, "/admin/", w.Header().Get("Location"))
}
