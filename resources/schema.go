// Package resources describes every entity the console manages as data: its endpoints, form fields,
// validation rules, defaults and list columns. Views are generic over these schemas.
package resources

import (
	"net/url"
	"strings"

	"retailadmin/models"
)

// Kind decides how a field's raw input is parsed and which rules apply to it.
type Kind int

const (
	Text Kind = iota
	Email
	Password
	Number
	Integer
	Enum
	Reference
	Image
)

func (k Kind) String() string {
	switch k {
	case Email:
		return "email"
	case Password:
		return "password"
	case Number:
		return "number"
	case Integer:
		return "integer"
	case Enum:
		return "enum"
	case Reference:
		return "reference"
	case Image:
		return "image"
	default:
		return "text"
	}
}

// Mode distinguishes the create and edit variants of a form.
type Mode int

const (
	Create Mode = iota
	Edit
)

// Field is one form input.
type Field struct {
	Name       string
	Label      string
	Kind       Kind
	Required   bool
	CreateOnly bool
	Default    interface{}
	Options    []string // Enum
	Min        *float64 // Number, Integer
	MinLen     int      // Password
	Ref        string   // Reference: name of the referenced resource
}

// Column is one list column.
type Column struct {
	Field string
	Title string
	Money bool
}

// Schema configures the generic list and form views for one resource.
type Schema struct {
	Name       string // collection name, e.g. "item-groups"
	Title      string
	Singular   string // e.g. "item-group", used in "/new-item-group"
	Endpoint   string // item endpoint, e.g. "/item-groups"
	ListPath   string // list endpoint; differs from Endpoint for items ("/inventory")
	LabelField string // field shown when the resource is offered as a reference option
	Fields     []Field
	Columns    []Column

	// BeforeSubmit derives submitted values from form values.
	BeforeSubmit func(values models.Record) models.Record
	// AfterFetch derives form values from a fetched record.
	AfterFetch func(rec models.Record) models.Record
}

// ItemPath is the endpoint of the record with the given id.
func (s *Schema) ItemPath(id string) string {
	return s.Endpoint + "/" + url.PathEscape(id)
}

// Route is the console location of the resource list, e.g. "/item-groups".
func (s *Schema) Route() string { return "/" + s.Name }

// NewRoute is the console location of the create form, e.g. "/new-item-group".
func (s *Schema) NewRoute() string { return "/new-" + s.Singular }

// EditRoute is the console location of the edit form of a record.
func (s *Schema) EditRoute(id string) string { return s.Route() + "/" + id + "/edit" }

// DetailRoute is the console location of the read-only view of a record.
func (s *Schema) DetailRoute(id string) string { return s.Route() + "/" + id }

// Noun is the capitalized human name of one record, e.g. "Item group".
func (s *Schema) Noun() string {
	n := strings.ReplaceAll(s.Singular, "-", " ")
	if n == "" {
		return n
	}
	return strings.ToUpper(n[:1]) + n[1:]
}

// Field looks up a field by name.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FormFields returns the fields shown in the given mode.
func (s *Schema) FormFields(mode Mode) []Field {
	out := make([]Field, 0, len(s.Fields))
	for _, f := range s.Fields {
		if mode == Edit && f.CreateOnly {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Defaults returns the initial values of a create form.
func (s *Schema) Defaults() models.Record {
	rec := models.Record{}
	for _, f := range s.Fields {
		if f.Default != nil {
			rec[f.Name] = f.Default
		}
	}
	return rec
}

// References returns the fields that point at other resources.
func (s *Schema) References() []Field {
	var out []Field
	for _, f := range s.Fields {
		if f.Kind == Reference {
			out = append(out, f)
		}
	}
	return out
}

// Label returns the display label of a record of this resource.
func (s *Schema) Label(rec models.Record) string {
	if v := rec.Text(s.LabelField); v != "" {
		return v
	}
	return rec.ID()
}

func atLeast(v float64) *float64 { return &v }
