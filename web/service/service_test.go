package service

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testwork/bookadmin/config"
	"github.com/testwork/bookadmin/database"
	"github.com/testwork/bookadmin/database/model"
	"github.com/testwork/bookadmin/web/entity"
)

func setupDB(t *testing.T) {
	t.Helper()
	require.NoError(t, database.InitDB(config.NewSQLiteConfig(filepath.Join(t.TempDir(), "test.db"))))
	t.Cleanup(func() {
		_ = database.CloseDB()
	})
}

func countUsers(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, database.GetDB().Model(&model.User{}).Count(&n).Error)
	return n
}

func TestAuthorCreateValidatesInput(t *testing.T) {
	setupDB(t)
	s := &AuthorService{}

	err := s.Create(entity.Form{"name": "", "birthDate": "1828-09-09"})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Contains(t, ValidationMessages(err), "name")

	err = s.Create(entity.Form{"name": "A name that is far too long", "birthDate": "1828-09-09"})
	assert.True(t, IsValidationError(err))

	err = s.Create(entity.Form{"name": "Tolstoy", "birthDate": "09/09/1828"})
	assert.True(t, IsValidationError(err))

	require.NoError(t, s.Create(entity.Form{"name": "Tolstoy", "birthDate": "1828-09-09"}))
	err = s.Create(entity.Form{"name": "Tolstoy", "birthDate": "1828-09-09"})
	require.Error(t, err)
	assert.True(t, IsValidationError(err), "duplicate name is reported on the field")

	rows, total, err := s.List(1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"Tolstoy", "1828-09-09", "0"}, rows[0].Values)
}

func TestAuthorUpdateAndDelete(t *testing.T) {
	setupDB(t)
	s := &AuthorService{}
	books := &BookService{}

	require.NoError(t, s.Create(entity.Form{"name": "Gogol", "birthDate": "1809-04-01"}))
	author, err := s.GetAuthorByName("Gogol")
	require.NoError(t, err)

	require.NoError(t, s.Update(author.Id, entity.Form{"name": "N. Gogol", "birthDate": "1809-04-01"}))
	form, err := s.Get(author.Id)
	require.NoError(t, err)
	assert.Equal(t, "N. Gogol", form["name"])

	require.NoError(t, books.Create(entity.Form{"name": "Dead Souls", "author": "N. Gogol"}))
	err = s.Delete(author.Id)
	require.Error(t, err)
	assert.False(t, IsValidationError(err))

	assert.ErrorIs(t, s.Delete(9999), ErrRecordNotFound)
	_, err = s.Get(9999)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestBookCreateResolvesAuthor(t *testing.T) {
	setupDB(t)
	authors := &AuthorService{}
	s := &BookService{}

	require.NoError(t, authors.Create(entity.Form{"name": "Pushkin", "birthDate": "1799-06-06"}))

	err := s.Create(entity.Form{"name": "Onegin", "author": "Nobody"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownAuthor))
	assert.False(t, IsValidationError(err))

	var count int64
	require.NoError(t, database.GetDB().Model(&model.Book{}).Count(&count).Error)
	assert.Zero(t, count)

	require.NoError(t, s.Create(entity.Form{"name": "Onegin", "author": "Pushkin"}))
	require.NoError(t, s.Create(entity.Form{"name": "Poltava", "author": "Pushkin", "pubDate": "2020-03-01T10:00"}))

	rows, total, err := s.List(1, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, rows, 1)
	assert.Equal(t, "Onegin", rows[0].Values[0])
	assert.Equal(t, "Pushkin", rows[0].Values[1])

	rows, _, err = s.List(2, 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2020-03-01T10:00", rows[0].Values[2])

	fields, err := s.Fields()
	require.NoError(t, err)
	require.Len(t, fields, 3)
	assert.Equal(t, []string{"Pushkin"}, fields[1].Options)

	exported, err := s.Export()
	require.NoError(t, err)
	assert.Len(t, exported, 2)
}

func TestBookValidation(t *testing.T) {
	setupDB(t)
	s := &BookService{}

	err := s.Create(entity.Form{"name": "", "author": ""})
	require.Error(t, err)
	msgs := ValidationMessages(err)
	assert.Contains(t, msgs, "name")
	assert.Contains(t, msgs, "author")
}

func TestUserServiceRotatesUniquifier(t *testing.T) {
	setupDB(t)
	s := &UserService{}

	user, err := s.GetUser(1)
	require.NoError(t, err)
	token := user.Uniquifier

	require.NoError(t, s.Update(1, entity.Form{"name": "admin", "email": "admin@example.com", "active": "on"}))
	user, err = s.GetUser(1)
	require.NoError(t, err)
	assert.Equal(t, token, user.Uniquifier, "plain edits keep sessions")

	require.NoError(t, s.Update(1, entity.Form{"name": "admin", "email": "admin@example.com", "active": "on", "password": "secret1"}))
	user, err = s.GetUser(1)
	require.NoError(t, err)
	assert.NotEqual(t, token, user.Uniquifier, "password change ends sessions")
	token = user.Uniquifier

	require.NoError(t, s.Update(1, entity.Form{"name": "admin", "email": "admin@example.com"}))
	user, err = s.GetUser(1)
	require.NoError(t, err)
	assert.False(t, user.Active)
	assert.NotEqual(t, token, user.Uniquifier, "deactivation ends sessions")
}

func TestUserServiceRolesAndDuplicates(t *testing.T) {
	setupDB(t)
	roles := &RoleService{}
	s := &UserService{}

	require.NoError(t, roles.Create(entity.Form{"name": "editor", "description": "edits books"}))
	require.NoError(t, s.Create(entity.Form{"email": "Reader@Example.com", "password": "secret1", "roles": "editor"}))

	user, err := s.GetUserByEmail("reader@example.com")
	require.NoError(t, err)
	require.Len(t, user.Roles, 0, "GetUserByEmail does not preload")
	user, err = s.GetUser(user.Id)
	require.NoError(t, err)
	require.Len(t, user.Roles, 1)
	assert.Equal(t, "editor", user.Roles[0].Name)
	assert.False(t, user.Active)

	err = s.Create(entity.Form{"email": "reader@example.com", "password": "secret1"})
	assert.True(t, IsValidationError(err))

	err = s.Create(entity.Form{"email": "other@example.com", "password": "secret1", "roles": "ghost"})
	assert.True(t, IsValidationError(err))

	require.NoError(t, s.Update(user.Id, entity.Form{"email": "reader@example.com"}))
	user, err = s.GetUser(user.Id)
	require.NoError(t, err)
	assert.Empty(t, user.Roles)

	require.NoError(t, s.Update(user.Id, entity.Form{"email": "reader@example.com", "roles": "editor"}))
	editor, err := roles.GetRolesByName([]string{"editor"})
	require.NoError(t, err)
	require.NoError(t, roles.Delete(editor[0].Id))
	require.NoError(t, s.Delete(user.Id))
	assert.EqualValues(t, 1, countUsers(t))
}

func TestAuthLoginDemo(t *testing.T) {
	setupDB(t)
	s := &AuthService{}

	user, err := s.LoginDemo()
	require.NoError(t, err)
	assert.Equal(t, 1, user.Id)

	require.NoError(t, (&UserService{}).Delete(1))
	_, err = s.LoginDemo()
	assert.ErrorIs(t, err, ErrNoDemoIdentity)
}

func TestAuthRegisterAndCheckUser(t *testing.T) {
	setupDB(t)
	s := &AuthService{}
	before := countUsers(t)

	user, err := s.Register("new@example.com", "password1")
	require.NoError(t, err)
	assert.True(t, user.Active)
	assert.EqualValues(t, before+1, countUsers(t))

	_, err = s.Register("NEW@example.com", "password2")
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.EqualValues(t, before+1, countUsers(t))

	_, err = s.Register("not-an-email", "password1")
	assert.True(t, IsValidationError(err))
	_, err = s.Register("short@example.com", "123")
	assert.True(t, IsValidationError(err))
	assert.EqualValues(t, before+1, countUsers(t))

	got, err := s.CheckUser("new@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, user.Id, got.Id)

	_, err = s.CheckUser("new@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.CheckUser("missing@example.com", "password1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, database.GetDB().Model(&model.User{}).Where("id = ?", user.Id).Update("active", false).Error)
	_, err = s.CheckUser("new@example.com", "password1")
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestAuthGetIdentityUser(t *testing.T) {
	setupDB(t)
	s := &AuthService{}

	demo, err := s.LoginDemo()
	require.NoError(t, err)

	user, err := s.GetIdentityUser(demo.Id, demo.Uniquifier)
	require.NoError(t, err)
	require.NotNil(t, user)

	user, err = s.GetIdentityUser(demo.Id, "stale")
	require.NoError(t, err)
	assert.Nil(t, user)

	user, err = s.GetIdentityUser(4242, demo.Uniquifier)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestSettingService(t *testing.T) {
	t.Setenv("BOOKADMIN_SECRET", "")
	setupDB(t)
	s := &SettingService{}

	size, err := s.GetPageSize()
	require.NoError(t, err)
	assert.Equal(t, 20, size)

	require.NoError(t, s.SetPageSize(5))
	require.NoError(t, s.SetPort(8080))
	assert.Error(t, s.SetPort(70000))
	assert.Error(t, s.SetTimeLocation("Nowhere/Atlantis"))

	all, err := s.GetAllSetting()
	require.NoError(t, err)
	assert.Equal(t, 5, all.PageSize)
	assert.Equal(t, 8080, all.WebPort)

	secret, err := s.GetSecret()
	require.NoError(t, err)
	again, err := s.GetSecret()
	require.NoError(t, err)
	assert.Equal(t, secret, again, "generated secret is persisted")

	require.NoError(t, s.ResetSettings())
	port, err := s.GetPort()
	require.NoError(t, err)
	assert.Equal(t, 5000, port)
	kept, err := s.GetSecret()
	require.NoError(t, err)
	assert.Equal(t, secret, kept)
}

func TestServerStatus(t *testing.T) {
	setupDB(t)
	s := &ServerService{}

	status := s.GetStatus()
	assert.Equal(t, "sqlite", status.Database)
	assert.EqualValues(t, 1, status.Counts.Users)
	assert.NotZero(t, status.AppStats.Mem)
}
