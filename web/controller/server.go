package controller

import (
	"strconv"

	"github.com/testwork/bookadmin/web/service"

	"github.com/gin-gonic/gin"
)

// ServerController exposes the panel status and recent logs.
type ServerController struct {
	serverService service.ServerService
}

func NewServerController(g *gin.RouterGroup) *ServerController {
	a := &ServerController{}
	a.initRouter(g)
	return a
}

func (a *ServerController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/server")

	g.GET("/status", a.status)
	g.POST("/logs/:count", a.getLogs)
}

func (a *ServerController) status(c *gin.Context) {
	jsonObj(c, a.serverService.GetStatus(), nil)
}

func (a *ServerController) getLogs(c *gin.Context) {
	count, _ := strconv.Atoi(c.Param("count"))
	level := c.PostForm("level")
	jsonObj(c, a.serverService.GetLogs(count, level), nil)
}
