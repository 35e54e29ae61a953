package controller

import (
	"net/http"
	"strconv"

	"github.com/testwork/bookadmin/config"
	"github.com/testwork/bookadmin/web/access"
	"github.com/testwork/bookadmin/web/middleware"
	"github.com/testwork/bookadmin/web/service"

	"github.com/gin-gonic/gin"
)

var logLevels = []string{"DEBUG", "INFO", "NOTICE", "WARNING", "ERROR"}

// AdminController serves the gated administrative surface under /admin.
type AdminController struct {
	gate  access.Gate
	views []service.ModelService

	serverService service.ServerService

	settingController *SettingController
	serverController  *ServerController
	modelViews        []*ModelViewController
}

// ModelServices returns the model views available in mode.
func ModelServices(mode config.AuthMode) []service.ModelService {
	views := []service.ModelService{
		&service.AuthorService{},
		&service.BookService{},
		&service.UserService{},
	}
	if mode == config.AuthModeRegister {
		views = append(views, &service.RoleService{})
	}
	return views
}

func NewAdminController(g *gin.RouterGroup, gate access.Gate) *AdminController {
	a := &AdminController{
		gate:  gate,
		views: ModelServices(gate.Mode()),
	}
	a.initRouter(g)
	return a
}

func (a *AdminController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/admin")

	root := g.Group("", a.gateFor(access.IndexView)...)
	root.GET("/", a.index)

	// settings, status and logs follow the stricter model view rule
	manage := g.Group("", a.gateFor(access.ModelView)...)
	manage.GET("/logs", a.logs)
	a.settingController = NewSettingController(manage)
	a.serverController = NewServerController(manage)

	for _, view := range a.views {
		vg := g.Group("/"+view.Endpoint(), middleware.GateMiddleware(a.gate, access.ModelView))
		a.modelViews = append(a.modelViews, NewModelViewController(vg, view, a))
	}
}

// gateFor returns the middleware chain guarding view.
func (a *AdminController) gateFor(view access.View) []gin.HandlerFunc {
	handlers := []gin.HandlerFunc{}
	if a.gate.Mode() == config.AuthModeRegister {
		handlers = append(handlers, middleware.LoginRequired())
	}
	return append(handlers, middleware.GateMiddleware(a.gate, view))
}

// accessibleViews lists the model views the current identity may open.
func (a *AdminController) accessibleViews(c *gin.Context) []service.ModelService {
	identity := middleware.GetIdentity(c)
	out := make([]service.ModelService, 0, len(a.views))
	for _, view := range a.views {
		if a.gate.Accessible(access.ModelView, identity) {
			out = append(out, view)
		}
	}
	return out
}

func (a *AdminController) index(c *gin.Context) {
	data := gin.H{"views": a.accessibleViews(c)}
	if a.gate.Accessible(access.ModelView, middleware.GetIdentity(c)) {
		data["status"] = a.serverService.GetStatus()
	}
	html(c, "index.html", I18nWeb(c, "pages.index.title"), data)
}

func (a *AdminController) logs(c *gin.Context) {
	count, err := strconv.Atoi(c.DefaultQuery("count", "100"))
	if err != nil || count < 1 || count > 10000 {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	level := c.DefaultQuery("level", "INFO")
	html(c, "logs.html", I18nWeb(c, "pages.logs.title"), gin.H{
		"views":  a.accessibleViews(c),
		"logs":   a.serverService.GetLogs(count, level),
		"levels": logLevels,
		"level":  level,
		"count":  count,
	})
}
