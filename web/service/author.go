package service

import (
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/testwork/bookadmin/database"
	"github.com/testwork/bookadmin/database/model"
	"github.com/testwork/bookadmin/web/entity"
)

const dateLayout = "2006-01-02"

type authorInput struct {
	Name      string `json:"name"`
	BirthDate string `json:"birthDate"`
}

func (in authorInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.RuneLength(1, 20)),
		validation.Field(&in.BirthDate, validation.Required, validation.Date(dateLayout)),
	)
}

func (in authorInput) apply(a *model.Author) error {
	birth, err := time.Parse(dateLayout, in.BirthDate)
	if err != nil {
		return err
	}
	a.Name = in.Name
	a.BirthDate = birth
	return nil
}

func authorInputOf(form entity.Form) authorInput {
	return authorInput{
		Name:      strings.TrimSpace(form["name"]),
		BirthDate: strings.TrimSpace(form["birthDate"]),
	}
}

type AuthorService struct{}

func (s *AuthorService) Endpoint() string { return "author" }

func (s *AuthorService) Name() string { return "Author" }

func (s *AuthorService) Columns() []string {
	return []string{"Name", "Birth Date", "Books"}
}

func (s *AuthorService) Fields() ([]entity.Field, error) {
	return []entity.Field{
		{Name: "name", Label: "Name", Type: entity.FieldText, Required: true},
		{Name: "birthDate", Label: "Birth Date", Type: entity.FieldDate, Required: true},
	}, nil
}

func (s *AuthorService) List(page, size int) ([]entity.Row, int64, error) {
	db := database.GetDB()
	var total int64
	if err := db.Model(&model.Author{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var authors []model.Author
	err := paginate(db.Model(&model.Author{}), page, size).
		Preload("Books").
		Order("id ASC").
		Find(&authors).Error
	if err != nil {
		return nil, 0, err
	}
	rows := make([]entity.Row, 0, len(authors))
	for _, a := range authors {
		rows = append(rows, entity.Row{
			Id:     a.Id,
			Values: []string{a.Name, a.BirthDate.Format(dateLayout), strconv.Itoa(len(a.Books))},
		})
	}
	return rows, total, nil
}

func (s *AuthorService) Export() (any, error) {
	var authors []model.Author
	err := database.GetDB().Order("id ASC").Find(&authors).Error
	return authors, err
}

func (s *AuthorService) GetAuthor(id int) (*model.Author, error) {
	author := &model.Author{}
	err := database.GetDB().First(author, id).Error
	if database.IsNotFound(err) {
		return nil, ErrRecordNotFound
	}
	return author, err
}

// GetAuthorByName resolves an author by its unique name.
func (s *AuthorService) GetAuthorByName(name string) (*model.Author, error) {
	author := &model.Author{}
	err := database.GetDB().Where("name = ?", name).First(author).Error
	if database.IsNotFound(err) {
		return nil, ErrUnknownAuthor
	}
	return author, err
}

func (s *AuthorService) Get(id int) (entity.Form, error) {
	author, err := s.GetAuthor(id)
	if err != nil {
		return nil, err
	}
	return entity.Form{
		"name":      author.Name,
		"birthDate": author.BirthDate.Format(dateLayout),
	}, nil
}

func (s *AuthorService) Create(form entity.Form) error {
	in := authorInputOf(form)
	if err := in.Validate(); err != nil {
		return err
	}
	author := &model.Author{}
	if err := in.apply(author); err != nil {
		return err
	}
	err := database.GetDB().Create(author).Error
	if database.IsDuplicate(err) {
		return fieldError("name", validation.NewError("unique", "an author with this name already exists"))
	}
	return err
}

func (s *AuthorService) Update(id int, form entity.Form) error {
	in := authorInputOf(form)
	if err := in.Validate(); err != nil {
		return err
	}
	author, err := s.GetAuthor(id)
	if err != nil {
		return err
	}
	if err := in.apply(author); err != nil {
		return err
	}
	err = database.GetDB().Save(author).Error
	if database.IsDuplicate(err) {
		return fieldError("name", validation.NewError("unique", "an author with this name already exists"))
	}
	return err
}

// Delete fails at the store while the author still has books.
func (s *AuthorService) Delete(id int) error {
	return deleteById(database.GetDB(), &model.Author{}, id)
}
