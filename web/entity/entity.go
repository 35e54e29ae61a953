// Package entity defines data structures shared by the services and controllers
// of the bookadmin web layer.
package entity

// Msg represents a standard API response message with success status, message text, and optional data object.
type Msg struct {
	Success bool   `json:"success"` // Indicates if the operation was successful
	Msg     string `json:"msg"`     // Response message text
	Obj     any    `json:"obj"`     // Optional data object
}

// AllSetting contains the panel settings stored in the settings table.
type AllSetting struct {
	WebListen      string `json:"webListen" form:"webListen"`           // Web server listen IP address
	WebPort        int    `json:"webPort" form:"webPort"`               // Web server port number
	SessionMaxAge  int    `json:"sessionMaxAge" form:"sessionMaxAge"`   // Session maximum age in minutes, 0 for browser session
	PageSize       int    `json:"pageSize" form:"pageSize"`             // Rows per admin list page
	TimeLocation   string `json:"timeLocation" form:"timeLocation"`     // Time zone used by the scheduler
	CheckpointCron string `json:"checkpointCron" form:"checkpointCron"` // Schedule of the sqlite WAL checkpoint
}

// FieldType tells the form template how to render an input.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldEmail    FieldType = "email"
	FieldPassword FieldType = "password"
	FieldDate     FieldType = "date"
	FieldDateTime FieldType = "datetime-local"
	FieldCheckbox FieldType = "checkbox"
	FieldSelect   FieldType = "select"
	FieldMulti    FieldType = "multiselect"
)

// Field describes one editable column of a model view form.
type Field struct {
	Name     string
	Label    string
	Type     FieldType
	Required bool
	Options  []string
}

// Form carries submitted or stored values keyed by field name. Multi-valued
// fields are joined with commas.
type Form map[string]string

// Row is one record of a model view list.
type Row struct {
	Id     int      `json:"id"`
	Values []string `json:"values"`
}

// Page is a slice of rows plus paging information.
type Page struct {
	Rows    []Row `json:"rows"`
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	Size    int   `json:"size"`
	HasPrev bool  `json:"hasPrev"`
	HasNext bool  `json:"hasNext"`
}

// NewPage fills in the paging flags.
func NewPage(rows []Row, total int64, page, size int) *Page {
	return &Page{
		Rows:    rows,
		Total:   total,
		Page:    page,
		Size:    size,
		HasPrev: page > 1,
		HasNext: int64(page*size) < total,
	}
}
