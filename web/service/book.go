package service

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/testwork/bookadmin/database"
	"github.com/testwork/bookadmin/database/model"
	"github.com/testwork/bookadmin/web/entity"
)

const dateTimeLayout = "2006-01-02T15:04"

type bookInput struct {
	Name    string `json:"name"`
	Author  string `json:"author"`
	PubDate string `json:"pubDate"`
}

func (in bookInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.RuneLength(1, 50)),
		validation.Field(&in.Author, validation.Required),
		validation.Field(&in.PubDate, validation.Date(dateTimeLayout)),
	)
}

func bookInputOf(form entity.Form) bookInput {
	return bookInput{
		Name:    strings.TrimSpace(form["name"]),
		Author:  strings.TrimSpace(form["author"]),
		PubDate: strings.TrimSpace(form["pubDate"]),
	}
}

type BookService struct {
	authorService AuthorService
}

func (s *BookService) Endpoint() string { return "book" }

func (s *BookService) Name() string { return "Book" }

func (s *BookService) Columns() []string {
	return []string{"Name", "Author", "Published"}
}

func (s *BookService) Fields() ([]entity.Field, error) {
	var names []string
	err := database.GetDB().Model(&model.Author{}).Order("name ASC").Pluck("name", &names).Error
	if err != nil {
		return nil, err
	}
	return []entity.Field{
		{Name: "name", Label: "Name", Type: entity.FieldText, Required: true},
		{Name: "author", Label: "Author", Type: entity.FieldSelect, Required: true, Options: names},
		{Name: "pubDate", Label: "Published", Type: entity.FieldDateTime},
	}, nil
}

func (s *BookService) List(page, size int) ([]entity.Row, int64, error) {
	db := database.GetDB()
	var total int64
	if err := db.Model(&model.Book{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var books []model.Book
	err := paginate(db.Model(&model.Book{}), page, size).
		Preload("Author").
		Order("id ASC").
		Find(&books).Error
	if err != nil {
		return nil, 0, err
	}
	rows := make([]entity.Row, 0, len(books))
	for _, b := range books {
		author := ""
		if b.Author != nil {
			author = b.Author.Name
		}
		rows = append(rows, entity.Row{
			Id:     b.Id,
			Values: []string{b.Name, author, b.PubDate.Format(dateTimeLayout)},
		})
	}
	return rows, total, nil
}

func (s *BookService) Export() (any, error) {
	var books []model.Book
	err := database.GetDB().Preload("Author").Order("id ASC").Find(&books).Error
	return books, err
}

func (s *BookService) GetBook(id int) (*model.Book, error) {
	book := &model.Book{}
	err := database.GetDB().Preload("Author").First(book, id).Error
	if database.IsNotFound(err) {
		return nil, ErrRecordNotFound
	}
	return book, err
}

func (s *BookService) Get(id int) (entity.Form, error) {
	book, err := s.GetBook(id)
	if err != nil {
		return nil, err
	}
	form := entity.Form{
		"name":    book.Name,
		"pubDate": book.PubDate.Format(dateTimeLayout),
	}
	if book.Author != nil {
		form["author"] = book.Author.Name
	}
	return form, nil
}

// apply resolves the author name to its id. An unknown name is a referential
// integrity failure, not an input error.
func (s *BookService) apply(in bookInput, book *model.Book) error {
	author, err := s.authorService.GetAuthorByName(in.Author)
	if err != nil {
		return fmt.Errorf("book %q: %w: %q", in.Name, err, in.Author)
	}
	book.Name = in.Name
	book.AuthorId = author.Id
	book.Author = nil
	if in.PubDate != "" {
		pub, err := time.ParseInLocation(dateTimeLayout, in.PubDate, time.Local)
		if err != nil {
			return err
		}
		book.PubDate = pub
	}
	return nil
}

func (s *BookService) Create(form entity.Form) error {
	in := bookInputOf(form)
	if err := in.Validate(); err != nil {
		return err
	}
	book := &model.Book{}
	if err := s.apply(in, book); err != nil {
		return err
	}
	return database.GetDB().Create(book).Error
}

func (s *BookService) Update(id int, form entity.Form) error {
	in := bookInputOf(form)
	if err := in.Validate(); err != nil {
		return err
	}
	book, err := s.GetBook(id)
	if err != nil {
		return err
	}
	if err := s.apply(in, book); err != nil {
		return err
	}
	return database.GetDB().Save(book).Error
}

func (s *BookService) Delete(id int) error {
	return deleteById(database.GetDB(), &model.Book{}, id)
}
