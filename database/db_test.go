package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testwork/bookadmin/config"
	"github.com/testwork/bookadmin/database/model"
	"github.com/testwork/bookadmin/util/crypto"
)

func setup(t *testing.T) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, InitDB(config.NewSQLiteConfig(dbPath)))
	t.Cleanup(func() {
		_ = CloseDB()
	})
}

func TestInitDBSeedsDemoIdentity(t *testing.T) {
	setup(t)

	user := &model.User{}
	require.NoError(t, GetDB().First(user, 1).Error)
	assert.Equal(t, "admin", user.Name)
	assert.True(t, user.Active)
	assert.NotEmpty(t, user.Uniquifier)
	assert.True(t, crypto.CheckPasswordHash(user.Password, defaultPassword))

	// seeding is idempotent
	require.NoError(t, initUser())
	var count int64
	require.NoError(t, GetDB().Model(&model.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSeedLeavesSequenceUsable(t *testing.T) {
	setup(t)
	db := GetDB()

	email := "reader@example.com"
	user := &model.User{Name: "reader", Email: &email, Active: true}
	require.NoError(t, db.Create(user).Error)
	assert.Equal(t, 2, user.Id)

	seeded := &model.User{}
	require.NoError(t, db.First(seeded, 1).Error)
	assert.Equal(t, defaultName, seeded.Name)
}

func TestBookRequiresExistingAuthor(t *testing.T) {
	setup(t)
	db := GetDB()

	err := db.Create(&model.Book{Name: "Orphan", AuthorId: 42}).Error
	require.Error(t, err)
	assert.True(t, IsForeignKeyViolation(err), "unexpected error: %v", err)

	author := &model.Author{Name: "Tolstoy", BirthDate: time.Date(1828, 9, 9, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, db.Create(author).Error)

	book := &model.Book{Name: "War and Peace", AuthorId: author.Id}
	require.NoError(t, db.Create(book).Error)
	assert.False(t, book.PubDate.IsZero(), "publication date defaults to creation time")
}

func TestAuthorWithBooksCannotBeDeleted(t *testing.T) {
	setup(t)
	db := GetDB()

	author := &model.Author{Name: "Gogol", BirthDate: time.Date(1809, 4, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, db.Create(author).Error)
	require.NoError(t, db.Create(&model.Book{Name: "Dead Souls", AuthorId: author.Id}).Error)

	err := db.Delete(&model.Author{}, author.Id).Error
	assert.Error(t, err)
}

func TestAuthorNameIsUnique(t *testing.T) {
	setup(t)
	db := GetDB()

	birth := time.Date(1799, 6, 6, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&model.Author{Name: "Pushkin", BirthDate: birth}).Error)
	err := db.Create(&model.Author{Name: "Pushkin", BirthDate: birth}).Error
	require.Error(t, err)
	assert.True(t, IsDuplicate(err), "unexpected error: %v", err)
}

func TestCheckpoint(t *testing.T) {
	setup(t)
	assert.True(t, IsSQLite())
	assert.NoError(t, Checkpoint())
}
