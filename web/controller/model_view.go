package controller

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/testwork/bookadmin/logger"
	"github.com/testwork/bookadmin/web/entity"
	"github.com/testwork/bookadmin/web/service"

	"github.com/gin-gonic/gin"
)

// ModelViewController is the generic list/create/edit/delete view of one
// model service.
type ModelViewController struct {
	admin   *AdminController
	service service.ModelService

	settingService service.SettingService
}

func NewModelViewController(g *gin.RouterGroup, svc service.ModelService, admin *AdminController) *ModelViewController {
	a := &ModelViewController{admin: admin, service: svc}
	a.initRouter(g)
	return a
}

func (a *ModelViewController) initRouter(g *gin.RouterGroup) {
	g.GET("/", a.list)
	g.GET("/new", a.createForm)
	g.POST("/new", a.create)
	g.GET("/edit", a.editForm)
	g.POST("/edit", a.update)
	g.POST("/delete", a.delete)
	g.GET("/export.json", a.export)
}

func (a *ModelViewController) listURL() string {
	return "/admin/" + a.service.Endpoint() + "/"
}

// fail maps a service error to a response. Store failures are not handled
// beyond logging.
func (a *ModelViewController) fail(c *gin.Context, err error) {
	if errors.Is(err, service.ErrRecordNotFound) {
		abortWithError(c, http.StatusNotFound, err)
		return
	}
	abortWithError(c, http.StatusInternalServerError, err)
}

func (a *ModelViewController) list(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := a.settingService.GetPageSize()
	if err != nil {
		a.fail(c, err)
		return
	}
	rows, total, err := a.service.List(page, size)
	if err != nil {
		a.fail(c, err)
		return
	}
	if isAjax(c) {
		jsonObj(c, entity.NewPage(rows, total, page, size), nil)
		return
	}
	html(c, "list.html", I18nWeb(c, "pages.list.title", "Name=="+a.service.Name()), gin.H{
		"views":    a.admin.accessibleViews(c),
		"endpoint": a.service.Endpoint(),
		"columns":  a.service.Columns(),
		"page":     entity.NewPage(rows, total, page, size),
	})
}

// readForm collects the submitted values of every field. Multi-valued fields
// are joined with commas.
func (a *ModelViewController) readForm(c *gin.Context, fields []entity.Field) entity.Form {
	form := entity.Form{}
	for _, f := range fields {
		switch f.Type {
		case entity.FieldMulti:
			form[f.Name] = strings.Join(c.PostFormArray(f.Name), ",")
		default:
			form[f.Name] = c.PostForm(f.Name)
		}
	}
	return form
}

func (a *ModelViewController) renderForm(c *gin.Context, code int, id int, form entity.Form, errs map[string]string) {
	fields, err := a.service.Fields()
	if err != nil {
		a.fail(c, err)
		return
	}
	title := I18nWeb(c, "pages.form.newTitle", "Name=="+a.service.Name())
	action := "/admin/" + a.service.Endpoint() + "/new"
	if id > 0 {
		title = I18nWeb(c, "pages.form.editTitle", "Name=="+a.service.Name())
		action = "/admin/" + a.service.Endpoint() + "/edit?id=" + strconv.Itoa(id)
	}
	if form == nil {
		form = entity.Form{}
	}
	if errs == nil {
		errs = map[string]string{}
	}
	htmlStatus(c, code, "form.html", title, gin.H{
		"views":    a.admin.accessibleViews(c),
		"endpoint": a.service.Endpoint(),
		"fields":   fields,
		"form":     form,
		"errors":   errs,
		"action":   action,
		"id":       id,
	})
}

// afterWrite answers a create or update. Validation errors re-render the
// form with 400.
func (a *ModelViewController) afterWrite(c *gin.Context, id int, form entity.Form, err error) {
	switch {
	case err == nil:
		if isAjax(c) {
			jsonMsg(c, "save "+a.service.Endpoint(), nil)
			return
		}
		c.Redirect(http.StatusFound, a.listURL())
	case service.IsValidationError(err):
		logger.Debugf("%s form rejected: %v", a.service.Endpoint(), err)
		if isAjax(c) {
			c.JSON(http.StatusBadRequest, entity.Msg{Msg: err.Error(), Obj: service.ValidationMessages(err)})
			return
		}
		delete(form, "password")
		a.renderForm(c, http.StatusBadRequest, id, form, service.ValidationMessages(err))
	default:
		a.fail(c, err)
	}
}

func (a *ModelViewController) createForm(c *gin.Context) {
	a.renderForm(c, http.StatusOK, 0, nil, nil)
}

func (a *ModelViewController) create(c *gin.Context) {
	fields, err := a.service.Fields()
	if err != nil {
		a.fail(c, err)
		return
	}
	form := a.readForm(c, fields)
	a.afterWrite(c, 0, form, a.service.Create(form))
}

func (a *ModelViewController) queryId(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Query("id"))
	if err != nil || id <= 0 {
		abortWithError(c, http.StatusNotFound, errors.New("invalid id "+strconv.Quote(c.Query("id"))))
		return 0, false
	}
	return id, true
}

func (a *ModelViewController) editForm(c *gin.Context) {
	id, ok := a.queryId(c)
	if !ok {
		return
	}
	form, err := a.service.Get(id)
	if err != nil {
		a.fail(c, err)
		return
	}
	a.renderForm(c, http.StatusOK, id, form, nil)
}

func (a *ModelViewController) update(c *gin.Context) {
	id, ok := a.queryId(c)
	if !ok {
		return
	}
	fields, err := a.service.Fields()
	if err != nil {
		a.fail(c, err)
		return
	}
	form := a.readForm(c, fields)
	a.afterWrite(c, id, form, a.service.Update(id, form))
}

func (a *ModelViewController) delete(c *gin.Context) {
	id, err := strconv.Atoi(c.PostForm("id"))
	if err != nil || id <= 0 {
		abortWithError(c, http.StatusNotFound, errors.New("invalid id "+strconv.Quote(c.PostForm("id"))))
		return
	}
	if err := a.service.Delete(id); err != nil {
		a.fail(c, err)
		return
	}
	logger.Infof("%s #%d deleted by %s", a.service.Endpoint(), id, getRemoteIp(c))
	if isAjax(c) {
		jsonMsg(c, "delete "+a.service.Endpoint(), nil)
		return
	}
	c.Redirect(http.StatusFound, a.listURL())
}

// export writes every record as a JSON attachment.
func (a *ModelViewController) export(c *gin.Context) {
	records, err := a.service.Export()
	if err != nil {
		a.fail(c, err)
		return
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		a.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+a.service.Endpoint()+`.json"`)
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}
