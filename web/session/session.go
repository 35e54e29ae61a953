// Package session stores the logged-in identity in the signed session cookie.
package session

import (
	"net/http"

	"github.com/testwork/bookadmin/database/model"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	CookieName = "bookadmin"

	loginUser  = "LOGIN_USER"
	loginToken = "LOGIN_TOKEN"
)

// SetLoginUser records user as the current requester.
func SetLoginUser(c *gin.Context, user *model.User) error {
	s := sessions.Default(c)
	s.Set(loginUser, user.Id)
	s.Set(loginToken, user.Uniquifier)
	return s.Save()
}

// SetMaxAge sets the cookie lifetime in seconds, applied on the next save.
// Zero keeps the cookie for the browser session.
func SetMaxAge(c *gin.Context, maxAge int) {
	s := sessions.Default(c)
	s.Options(sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// GetLoginUser returns the user id and uniquifier stored in the session.
func GetLoginUser(c *gin.Context) (int, string, bool) {
	s := sessions.Default(c)
	id, ok := s.Get(loginUser).(int)
	if !ok {
		return 0, "", false
	}
	token, ok := s.Get(loginToken).(string)
	if !ok || token == "" {
		return 0, "", false
	}
	return id, token, true
}

func ClearSession(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{
		Path:   "/",
		MaxAge: -1,
	})
	if err := s.Save(); err != nil {
		return err
	}
	c.SetCookie(CookieName, "", -1, "/", "", false, true)
	return nil
}
