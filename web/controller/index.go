package controller

import (
	"errors"
	"fmt"
	"net/http"
	"text/template"

	"github.com/testwork/bookadmin/config"
	"github.com/testwork/bookadmin/database/model"
	"github.com/testwork/bookadmin/logger"
	"github.com/testwork/bookadmin/web/middleware"
	"github.com/testwork/bookadmin/web/service"
	"github.com/testwork/bookadmin/web/session"

	"github.com/gin-gonic/gin"
)

// LoginForm represents the credential login request.
type LoginForm struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Next     string `json:"next" form:"next"`
}

// RegisterForm represents the registration request.
type RegisterForm struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// IndexController serves the greeting and the login surface of the
// configured auth mode.
type IndexController struct {
	mode config.AuthMode

	settingService service.SettingService
	authService    service.AuthService
}

// NewIndexController registers the routes of mode. throttle guards the
// credential submissions.
func NewIndexController(g *gin.RouterGroup, mode config.AuthMode, throttle gin.HandlerFunc) *IndexController {
	a := &IndexController{mode: mode}
	a.initRouter(g, throttle)
	return a
}

func (a *IndexController) initRouter(g *gin.RouterGroup, throttle gin.HandlerFunc) {
	g.GET("/", a.index)

	switch a.mode {
	case config.AuthModeRegister:
		g.GET("/login", a.loginForm)
		g.POST("/login", throttle, a.login)
		g.GET("/logout", a.logout)
		g.GET("/login-user", middleware.LoginRequired(), a.loginUser)
		g.GET("/logout-user", a.logoutUser)
		g.GET("/register", a.registerForm)
		g.POST("/register", throttle, a.register)
	default:
		g.GET("/login", a.loginDemo)
		g.GET("/logout", a.logoutUser)
	}
}

func (a *IndexController) index(c *gin.Context) {
	c.String(http.StatusOK, "Hello World!")
}

// startSession stores user in the session with the configured lifetime.
func (a *IndexController) startSession(c *gin.Context, user *model.User) error {
	sessionMaxAge, err := a.settingService.GetSessionMaxAge()
	if err != nil {
		logger.Warning("Unable to get session's max age from DB")
	}
	session.SetMaxAge(c, sessionMaxAge*60)
	return session.SetLoginUser(c, user)
}

// loginDemo logs in identity #1 without any credential.
func (a *IndexController) loginDemo(c *gin.Context) {
	user, err := a.authService.LoginDemo()
	if errors.Is(err, service.ErrNoDemoIdentity) {
		c.String(http.StatusNotFound, "no demo identity")
		return
	} else if err != nil {
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}
	if err := a.startSession(c, user); err != nil {
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}
	logger.Infof("%s logged in, Ip Address: %s", user.DisplayName(), getRemoteIp(c))
	c.String(http.StatusOK, fmt.Sprintf("Logged as %s!", user.DisplayName()))
}

func (a *IndexController) loginForm(c *gin.Context) {
	if middleware.GetIdentity(c).Authenticated {
		c.Redirect(http.StatusFound, middleware.SafeNext(c.Query("next"), "/admin/"))
		return
	}
	html(c, "login.html", I18nWeb(c, "pages.login.title"), gin.H{
		"next": middleware.SafeNext(c.Query("next"), ""),
	})
}

func (a *IndexController) login(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	if form.Next == "" {
		form.Next = c.Query("next")
	}
	next := middleware.SafeNext(form.Next, "")

	user, err := a.authService.CheckUser(form.Email, form.Password)
	if err != nil {
		safeUser := template.HTMLEscapeString(form.Email)
		logger.Warningf("login failed for \"%s\", IP: \"%s\": %v", safeUser, getRemoteIp(c), err)
		if isAjax(c) {
			pureJsonMsg(c, http.StatusOK, false, err.Error())
			return
		}
		c.Redirect(http.StatusFound, middleware.LoginURL(a.mode, next))
		return
	}
	if err := a.startSession(c, user); err != nil {
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}

	logger.Infof("%s logged in successfully, Ip Address: %s", user.DisplayName(), getRemoteIp(c))
	if isAjax(c) {
		jsonMsg(c, "login", nil)
		return
	}
	c.Redirect(http.StatusFound, middleware.SafeNext(next, "/admin/"))
}

func (a *IndexController) clearSession(c *gin.Context) {
	if identity := middleware.GetIdentity(c); identity.Authenticated {
		logger.Infof("%s logged out successfully", identity.Name)
	}
	if err := session.ClearSession(c); err != nil {
		logger.Warning("Unable to save session after clearing:", err)
	}
}

func (a *IndexController) logout(c *gin.Context) {
	a.clearSession(c)
	c.Redirect(http.StatusFound, "/")
}

func (a *IndexController) loginUser(c *gin.Context) {
	c.String(http.StatusOK, fmt.Sprintf("Logged as %s!", middleware.GetIdentity(c).Name))
}

func (a *IndexController) logoutUser(c *gin.Context) {
	a.clearSession(c)
	c.String(http.StatusOK, "Logged Out")
}

func (a *IndexController) registerForm(c *gin.Context) {
	html(c, "register.html", I18nWeb(c, "pages.register.title"), nil)
}

// register creates the identity and sends the user to the login form. Any
// failure silently returns to the registration form.
func (a *IndexController) register(c *gin.Context) {
	var form RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		logger.Warning("register: invalid form:", err)
		c.Redirect(http.StatusFound, "/register")
		return
	}
	if _, err := a.authService.Register(form.Email, form.Password); err != nil {
		logger.Warningf("register \"%s\" failed: %v", template.HTMLEscapeString(form.Email), err)
		c.Redirect(http.StatusFound, "/register")
		return
	}
	c.Redirect(http.StatusFound, "/login")
}
