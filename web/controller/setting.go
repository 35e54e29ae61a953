package controller

import (
	"time"

	"github.com/testwork/bookadmin/web/entity"
	"github.com/testwork/bookadmin/web/service"

	"github.com/gin-gonic/gin"
)

// SettingController reads and updates the panel settings.
type SettingController struct {
	settingService service.SettingService
	panelService   service.PanelService
}

func NewSettingController(g *gin.RouterGroup) *SettingController {
	a := &SettingController{}
	a.initRouter(g)
	return a
}

func (a *SettingController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/setting")

	g.POST("/all", a.getAllSetting)
	g.POST("/update", a.updateSetting)
	g.POST("/restartPanel", a.restartPanel)
}

func (a *SettingController) getAllSetting(c *gin.Context) {
	allSetting, err := a.settingService.GetAllSetting()
	if err != nil {
		jsonMsg(c, "get settings", err)
		return
	}
	jsonObj(c, allSetting, nil)
}

func (a *SettingController) updateSetting(c *gin.Context) {
	allSetting := &entity.AllSetting{}
	if err := c.ShouldBind(allSetting); err != nil {
		jsonMsg(c, "modify settings", err)
		return
	}
	err := a.settingService.UpdateAllSetting(allSetting)
	jsonMsg(c, "modify settings", err)
}

// restartPanel restarts the web server after a delay so the response gets out.
func (a *SettingController) restartPanel(c *gin.Context) {
	err := a.panelService.RestartPanel(time.Second * 3)
	jsonMsg(c, "restart panel", err)
}
