package service

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/testwork/bookadmin/web/entity"
	"gorm.io/gorm"
)

// ModelService backs one generic administrative model view.
type ModelService interface {
	// Endpoint is the URL segment of the view, e.g. "author".
	Endpoint() string
	// Name is the human readable entity name.
	Name() string
	Columns() []string
	Fields() ([]entity.Field, error)
	List(page, size int) ([]entity.Row, int64, error)
	// Export returns every record in its JSON shape.
	Export() (any, error)
	Get(id int) (entity.Form, error)
	Create(form entity.Form) error
	Update(id int, form entity.Form) error
	Delete(id int) error
}

// IsValidationError reports whether err describes invalid form input rather
// than a store failure.
func IsValidationError(err error) bool {
	var verr validation.Errors
	return errors.As(err, &verr)
}

// ValidationMessages flattens validation errors for display, keyed by field.
func ValidationMessages(err error) map[string]string {
	var verr validation.Errors
	if !errors.As(err, &verr) {
		return nil
	}
	out := make(map[string]string, len(verr))
	for field, e := range verr {
		out[field] = e.Error()
	}
	return out
}

func fieldError(field string, err error) error {
	return validation.Errors{field: err}
}

func paginate(db *gorm.DB, page, size int) *gorm.DB {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		return db
	}
	return db.Offset((page - 1) * size).Limit(size)
}

func deleteById(db *gorm.DB, value any, id int) error {
	result := db.Delete(value, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
