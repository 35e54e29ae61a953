package service

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/testwork/bookadmin/database"
	"github.com/testwork/bookadmin/database/model"
	"github.com/testwork/bookadmin/web/entity"
	"gorm.io/gorm"
)

type roleInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (in roleInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.RuneLength(1, 80)),
		validation.Field(&in.Description, validation.RuneLength(0, 255)),
	)
}

func roleInputOf(form entity.Form) roleInput {
	return roleInput{
		Name:        strings.TrimSpace(form["name"]),
		Description: strings.TrimSpace(form["description"]),
	}
}

func roleTaken() error {
	return fieldError("name", validation.NewError("unique", "a role with this name already exists"))
}

// RoleService manages roles. Roles are shown and assigned but never consulted
// by the access gate.
type RoleService struct{}

func (s *RoleService) Endpoint() string { return "role" }

func (s *RoleService) Name() string { return "Role" }

func (s *RoleService) Columns() []string {
	return []string{"Name", "Description"}
}

func (s *RoleService) Fields() ([]entity.Field, error) {
	return []entity.Field{
		{Name: "name", Label: "Name", Type: entity.FieldText, Required: true},
		{Name: "description", Label: "Description", Type: entity.FieldText},
	}, nil
}

func (s *RoleService) List(page, size int) ([]entity.Row, int64, error) {
	db := database.GetDB()
	var total int64
	if err := db.Model(&model.Role{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var roles []model.Role
	err := paginate(db.Model(&model.Role{}), page, size).Order("id ASC").Find(&roles).Error
	if err != nil {
		return nil, 0, err
	}
	rows := make([]entity.Row, 0, len(roles))
	for _, r := range roles {
		rows = append(rows, entity.Row{Id: r.Id, Values: []string{r.Name, r.Description}})
	}
	return rows, total, nil
}

func (s *RoleService) Export() (any, error) {
	var roles []model.Role
	err := database.GetDB().Order("id ASC").Find(&roles).Error
	return roles, err
}

func (s *RoleService) GetRole(id int) (*model.Role, error) {
	role := &model.Role{}
	err := database.GetDB().First(role, id).Error
	if database.IsNotFound(err) {
		return nil, ErrRecordNotFound
	}
	return role, err
}

func (s *RoleService) GetRoleNames() ([]string, error) {
	var names []string
	err := database.GetDB().Model(&model.Role{}).Order("name ASC").Pluck("name", &names).Error
	return names, err
}

// GetRolesByName loads the named roles, failing on the first unknown name.
func (s *RoleService) GetRolesByName(names []string) ([]model.Role, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var roles []model.Role
	if err := database.GetDB().Where("name IN ?", names).Find(&roles).Error; err != nil {
		return nil, err
	}
	found := make(map[string]bool, len(roles))
	for _, r := range roles {
		found[r.Name] = true
	}
	for _, name := range names {
		if !found[name] {
			return nil, fieldError("roles", validation.NewError("unknown", fmt.Sprintf("role %q does not exist", name)))
		}
	}
	return roles, nil
}

func (s *RoleService) Get(id int) (entity.Form, error) {
	role, err := s.GetRole(id)
	if err != nil {
		return nil, err
	}
	return entity.Form{"name": role.Name, "description": role.Description}, nil
}

func (s *RoleService) Create(form entity.Form) error {
	in := roleInputOf(form)
	if err := in.Validate(); err != nil {
		return err
	}
	err := database.GetDB().Create(&model.Role{Name: in.Name, Description: in.Description}).Error
	if database.IsDuplicate(err) {
		return roleTaken()
	}
	return err
}

func (s *RoleService) Update(id int, form entity.Form) error {
	in := roleInputOf(form)
	if err := in.Validate(); err != nil {
		return err
	}
	role, err := s.GetRole(id)
	if err != nil {
		return err
	}
	role.Name = in.Name
	role.Description = in.Description
	err = database.GetDB().Save(role).Error
	if database.IsDuplicate(err) {
		return roleTaken()
	}
	return err
}

func (s *RoleService) Delete(id int) error {
	db := database.GetDB()
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM roles_users WHERE role_id = ?", id).Error; err != nil {
			return err
		}
		return deleteById(tx, &model.Role{}, id)
	})
}
