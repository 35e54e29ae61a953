// Package controller provides the HTTP handlers of the bookadmin panel: the
// login surfaces, the admin index and the generated model views.
package controller

import (
	"github.com/testwork/bookadmin/web/locale"

	"github.com/gin-gonic/gin"
)

// I18nWeb retrieves an internationalized message for the locale of the request.
func I18nWeb(c *gin.Context, name string, params ...string) string {
	return locale.Localize(locale.GetLocalizer(c), name, params...)
}
