package service

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"github.com/testwork/bookadmin/database"
	"github.com/testwork/bookadmin/database/model"
	"github.com/testwork/bookadmin/util/crypto"
	"github.com/testwork/bookadmin/web/entity"
	"gorm.io/gorm"
)

type userInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Active   bool   `json:"active"`
	Roles    []string
}

func (in userInput) validate(creating bool) error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.RuneLength(0, 25)),
		validation.Field(&in.Email, validation.Required, is.EmailFormat, validation.RuneLength(1, 255)),
		validation.Field(&in.Password,
			validation.When(creating, validation.Required),
			validation.RuneLength(6, 128)),
	)
}

func userInputOf(form entity.Form) userInput {
	return userInput{
		Name:     strings.TrimSpace(form["name"]),
		Email:    normalizeEmail(form["email"]),
		Password: form["password"],
		Active:   parseCheckbox(form["active"]),
		Roles:    splitList(form["roles"]),
	}
}

func parseCheckbox(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "on", "true", "1", "yes", "y":
		return true
	}
	return false
}

func emailTaken() error {
	return fieldError("email", validation.NewError("unique", ErrEmailTaken.Error()))
}

type UserService struct {
	roleService RoleService
}

func (s *UserService) Endpoint() string { return "user" }

func (s *UserService) Name() string { return "User" }

func (s *UserService) Columns() []string {
	return []string{"Name", "Email", "Active", "Roles"}
}

func (s *UserService) Fields() ([]entity.Field, error) {
	roles, err := s.roleService.GetRoleNames()
	if err != nil {
		return nil, err
	}
	return []entity.Field{
		{Name: "name", Label: "Name", Type: entity.FieldText},
		{Name: "email", Label: "Email", Type: entity.FieldEmail, Required: true},
		{Name: "password", Label: "Password", Type: entity.FieldPassword},
		{Name: "active", Label: "Active", Type: entity.FieldCheckbox},
		{Name: "roles", Label: "Roles", Type: entity.FieldMulti, Options: roles},
	}, nil
}

func (s *UserService) List(page, size int) ([]entity.Row, int64, error) {
	db := database.GetDB()
	var total int64
	if err := db.Model(&model.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []model.User
	err := paginate(db.Model(&model.User{}), page, size).
		Preload("Roles").
		Order("id ASC").
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	rows := make([]entity.Row, 0, len(users))
	for _, u := range users {
		email := ""
		if u.Email != nil {
			email = *u.Email
		}
		active := "no"
		if u.Active {
			active = "yes"
		}
		rows = append(rows, entity.Row{
			Id:     u.Id,
			Values: []string{u.Name, email, active, strings.Join(roleNames(u.Roles), ", ")},
		})
	}
	return rows, total, nil
}

func (s *UserService) Export() (any, error) {
	var users []model.User
	err := database.GetDB().Preload("Roles").Order("id ASC").Find(&users).Error
	return users, err
}

func (s *UserService) GetUser(id int) (*model.User, error) {
	user := &model.User{}
	err := database.GetDB().Preload("Roles").First(user, id).Error
	if database.IsNotFound(err) {
		return nil, ErrRecordNotFound
	}
	return user, err
}

func (s *UserService) GetUserByEmail(email string) (*model.User, error) {
	user := &model.User{}
	err := database.GetDB().Where("email = ?", normalizeEmail(email)).First(user).Error
	if database.IsNotFound(err) {
		return nil, ErrRecordNotFound
	}
	return user, err
}

func (s *UserService) HasUserEmail(email string) (bool, error) {
	var count int64
	err := database.GetDB().Model(&model.User{}).
		Where("email = ?", normalizeEmail(email)).
		Count(&count).Error
	return count > 0, err
}

func (s *UserService) Get(id int) (entity.Form, error) {
	user, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}
	form := entity.Form{
		"name":  user.Name,
		"roles": strings.Join(roleNames(user.Roles), ","),
	}
	if user.Email != nil {
		form["email"] = *user.Email
	}
	if user.Active {
		form["active"] = "true"
	}
	return form, nil
}

func (s *UserService) Create(form entity.Form) error {
	in := userInputOf(form)
	if err := in.validate(true); err != nil {
		return err
	}
	hash, err := crypto.HashPasswordAsBcrypt(in.Password)
	if err != nil {
		return err
	}
	roles, err := s.roleService.GetRolesByName(in.Roles)
	if err != nil {
		return err
	}
	email := in.Email
	user := &model.User{
		Name:     in.Name,
		Email:    &email,
		Password: hash,
		Active:   in.Active,
		Roles:    roles,
	}
	err = database.GetDB().Create(user).Error
	if database.IsDuplicate(err) {
		return emailTaken()
	}
	return err
}

// Update rotates the uniquifier when the password changes or the account is
// deactivated, which ends every session held by that user.
func (s *UserService) Update(id int, form entity.Form) error {
	in := userInputOf(form)
	if err := in.validate(false); err != nil {
		return err
	}
	user, err := s.GetUser(id)
	if err != nil {
		return err
	}
	roles, err := s.roleService.GetRolesByName(in.Roles)
	if err != nil {
		return err
	}

	rotate := user.Active && !in.Active
	if in.Password != "" {
		hash, err := crypto.HashPasswordAsBcrypt(in.Password)
		if err != nil {
			return err
		}
		user.Password = hash
		rotate = true
	}
	if rotate {
		user.Uniquifier = uuid.NewString()
	}
	email := in.Email
	user.Name = in.Name
	user.Email = &email
	user.Active = in.Active
	user.Roles = nil

	db := database.GetDB()
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(user).Error; err != nil {
			if database.IsDuplicate(err) {
				return emailTaken()
			}
			return err
		}
		if len(roles) == 0 {
			return tx.Model(user).Association("Roles").Clear()
		}
		return tx.Model(user).Association("Roles").Replace(roles)
	})
}

func (s *UserService) Delete(id int) error {
	db := database.GetDB()
	return db.Transaction(func(tx *gorm.DB) error {
		user := &model.User{Id: id}
		if err := tx.Model(user).Association("Roles").Clear(); err != nil {
			return err
		}
		return deleteById(tx, &model.User{}, id)
	})
}

// AddUser creates an active account from the command line.
func (s *UserService) AddUser(name, email, password string) (*model.User, error) {
	in := userInput{Name: name, Email: normalizeEmail(email), Password: password, Active: true}
	if err := in.validate(true); err != nil {
		return nil, err
	}
	hash, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Name:     in.Name,
		Email:    &in.Email,
		Password: hash,
		Active:   true,
	}
	err = database.GetDB().Create(user).Error
	if database.IsDuplicate(err) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateFirstUser resets the credentials of the demo identity.
func (s *UserService) UpdateFirstUser(email string, password string) error {
	if email == "" {
		return errors.New("email can not be empty")
	} else if password == "" {
		return errors.New("password can not be empty")
	}
	hashedPassword, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		return err
	}
	email = normalizeEmail(email)

	db := database.GetDB()
	user := &model.User{}
	err = db.Model(model.User{}).First(user, 1).Error
	if database.IsNotFound(err) {
		return ErrNoDemoIdentity
	} else if err != nil {
		return err
	}
	user.Email = &email
	user.Password = hashedPassword
	user.Uniquifier = uuid.NewString()
	return db.Save(user).Error
}

func roleNames(roles []model.Role) []string {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Name)
	}
	return names
}
