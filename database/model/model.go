// Package model contains the GORM models persisted by the bookadmin panel.
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Author struct {
	Id        int       `json:"id" form:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" form:"name" gorm:"size:20;not null;uniqueIndex"`
	BirthDate time.Time `json:"birthDate" form:"birthDate" gorm:"type:date;not null"`
	Books     []Book    `json:"books,omitempty" gorm:"foreignKey:AuthorId;references:Id;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (a Author) String() string {
	return fmt.Sprintf("Author -> %s", a.Name)
}

// Book references its Author by surrogate id.
type Book struct {
	Id       int       `json:"id" form:"id" gorm:"primaryKey;autoIncrement"`
	Name     string    `json:"name" form:"name" gorm:"size:50;not null"`
	AuthorId int       `json:"authorId" form:"authorId" gorm:"not null;index"`
	Author   *Author   `json:"author,omitempty"`
	PubDate  time.Time `json:"pubDate" form:"pubDate" gorm:"not null;autoCreateTime"`
}

func (b Book) String() string {
	return fmt.Sprintf("Book -> %s", b.Name)
}

type User struct {
	Id          int        `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string     `json:"name" gorm:"size:25"`
	Email       *string    `json:"email" gorm:"size:255;uniqueIndex"`
	Password    string     `json:"-" gorm:"size:255"`
	Active      bool       `json:"active" gorm:"not null"`
	Uniquifier  string     `json:"-" gorm:"size:64;not null;uniqueIndex"`
	ConfirmedAt *time.Time `json:"confirmedAt"`
	Roles       []Role     `json:"roles,omitempty" gorm:"many2many:roles_users;"`
}

// BeforeCreate assigns a fresh session uniquifier.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Uniquifier == "" {
		u.Uniquifier = uuid.NewString()
	}
	return nil
}

// DisplayName prefers the name and falls back to the email.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	if u.Email != nil {
		return *u.Email
	}
	return fmt.Sprintf("user #%d", u.Id)
}

type Role struct {
	Id          int    `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string `json:"name" gorm:"size:80;not null;uniqueIndex"`
	Description string `json:"description" gorm:"size:255"`
}

type Setting struct {
	Id    int    `json:"id" form:"id" gorm:"primaryKey;autoIncrement"`
	Key   string `json:"key" form:"key"`
	Value string `json:"value" form:"value"`
}
